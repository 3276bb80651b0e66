package skeleton

import (
	"github.com/Faultbox/m2skin/internal/engine/keyframe"
	"github.com/Faultbox/m2skin/pkg/math"
)

// JointMode selects who drives the bone transforms.
type JointMode uint8

// Joint modes.
const (
	// JointDriven evaluates tracks only.
	JointDriven JointMode = iota
	// JointControl lets a JointSource replace or blend local transforms.
	JointControl
	// JointRead pushes the evaluated globals to a JointSink.
	JointRead
)

func (m JointMode) String() string {
	switch m {
	case JointDriven:
		return "driven"
	case JointControl:
		return "control"
	case JointRead:
		return "read"
	}
	return "unknown"
}

// JointSource supplies external local transforms in JointControl mode.
// A weight of 1 replaces the track result, a weight in (0,1) blends with
// it, ok=false leaves the bone driven.
type JointSource interface {
	JointOverride(bone int) (local Transform, weight float32, ok bool)
}

// GlobalJointSource is a JointSource that can also supply world-space
// transforms. A global override is turned into a local one against the
// parent's evaluated global, then weighted like a local override. When
// both are offered for a bone the global one is used.
type GlobalJointSource interface {
	JointSource
	GlobalJointOverride(bone int) (global math.Mat4, weight float32, ok bool)
}

// JointSink receives every global transform in JointRead mode.
type JointSink interface {
	SetJointTransform(bone int, global math.Mat4)
}

// Transition blends a saved pose into the evaluated one.
type Transition struct {
	From   []Transform
	Weight float32
}

// Options configures one Evaluate call.
type Options struct {
	Mode       JointMode
	Source     JointSource
	Sink       JointSink
	Transition *Transition
}

type trackHints struct {
	t, r, s int
}

// Pose is the per-instance evaluated state of a skeleton.
type Pose struct {
	Local       []Transform
	LocalMatrix []math.Mat4
	Global      []math.Mat4

	hints   []trackHints
	version uint64
}

// NewPose allocates a pose at the rest transform.
func (s *Skeleton) NewPose() *Pose {
	n := len(s.bones)
	p := &Pose{
		Local:       make([]Transform, n),
		LocalMatrix: make([]math.Mat4, n),
		Global:      make([]math.Mat4, n),
		hints:       make([]trackHints, n),
	}
	for i := range p.Local {
		p.Local[i] = IdentityTransform()
		p.LocalMatrix[i] = math.Identity()
		p.Global[i] = math.Identity()
	}
	return p
}

// Version increments on every evaluation.
func (p *Pose) Version() uint64 { return p.version }

// Snapshot copies the local transforms.
func (p *Pose) Snapshot() []Transform {
	out := make([]Transform, len(p.Local))
	copy(out, p.Local)
	return out
}

// Evaluate computes the pose at clock. Every call recomputes all bones.
func (s *Skeleton) Evaluate(clock keyframe.Clock, pose *Pose, opts Options) {
	zero := math.Vec3{}
	one := math.V3(1, 1, 1)
	identity := math.QuatIdentity()

	for _, i := range s.order {
		b := &s.bones[i]
		h := &pose.hints[i]

		local := Transform{
			Translation: b.Translation.Sample(clock, &h.t, zero),
			Rotation:    b.Rotation.Sample(clock, &h.r, identity),
			Scale:       b.Scale.Sample(clock, &h.s, one),
		}

		if opts.Mode == JointControl && opts.Source != nil {
			if ov, w, ok := s.override(opts.Source, i, pose); ok {
				switch {
				case w >= 1:
					local = ov
				case w > 0:
					local = local.Blend(ov, w)
				}
			}
		}

		if tr := opts.Transition; tr != nil && i < len(tr.From) {
			local = tr.From[i].TransitionTo(local, tr.Weight)
		}

		m := local.Matrix(b.Pivot)
		pose.Local[i] = local
		pose.LocalMatrix[i] = m
		if b.Parent == NoParent {
			pose.Global[i] = m
		} else {
			pose.Global[i] = pose.Global[b.Parent].Mul(m)
		}
	}

	if opts.Mode == JointRead && opts.Sink != nil {
		for _, i := range s.order {
			opts.Sink.SetJointTransform(i, pose.Global[i])
		}
	}
	pose.version++
}

// override asks src for bone i, preferring a global override. Parents are
// evaluated first, so pose.Global of the parent is current.
func (s *Skeleton) override(src JointSource, i int, pose *Pose) (Transform, float32, bool) {
	if gs, ok := src.(GlobalJointSource); ok {
		if g, w, ok := gs.GlobalJointOverride(i); ok {
			local := g
			if p := s.bones[i].Parent; p != NoParent {
				local = pose.Global[p].Inverse().Mul(g)
			}
			return TransformFromMatrix(local, s.bones[i].Pivot), w, true
		}
	}
	return src.JointOverride(i)
}
