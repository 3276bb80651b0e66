package m2

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/m2skin/internal/engine/keyframe"
	"github.com/Faultbox/m2skin/internal/engine/playback"
	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/internal/engine/skin"
	"github.com/Faultbox/m2skin/pkg/math"
)

// Instance is one rendered copy of a mesh. It owns all mutable playback
// state; the mesh itself is only read. An Instance is not safe for
// concurrent use, but distinct instances of one mesh are.
type Instance struct {
	mesh    Mesh
	skinned *SkinnedMesh

	ctrl *playback.Controller
	pose *skeleton.Pose
	buf  *skin.Buffer

	geosets   GeosetSet
	skinID    int
	sorting   bool
	animation int

	jointMode skeleton.JointMode
	source    skeleton.JointSource
	sink      skeleton.JointSink
	snapshot  []skeleton.Transform

	// global is free-running time in frames for global sequences.
	global float32
	// posedFrame and posedGlobal record the inputs of the last Animate.
	posedFrame, posedGlobal float32
	onEnd  func(*Instance)
	log    *zap.Logger

	points []math.Vec3
}

// Option configures a new Instance.
type Option func(*Instance)

// WithLogger sets the debug logger. nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Instance) {
		if l != nil {
			i.log = l
		}
	}
}

// WithAllGeosets makes geosets visible unless hidden explicitly.
func WithAllGeosets() Option {
	return func(i *Instance) { i.geosets = NewGeosetSet(true) }
}

// WithSubmeshSorting enables or disables depth sorting.
func WithSubmeshSorting(on bool) Option {
	return func(i *Instance) { i.sorting = on }
}

// NewInstance creates per-instance state for m. Playback starts looping
// over the whole timeline with sorting enabled.
func NewInstance(m Mesh, opts ...Option) *Instance {
	inst := &Instance{
		mesh:      m,
		geosets:   NewGeosetSet(false),
		sorting:   true,
		animation: -1,
		log:       zap.NewNop(),
	}

	frames := 0
	switch mm := m.(type) {
	case *SkinnedMesh:
		inst.skinned = mm
		frames = mm.FrameCount()
		inst.pose = mm.Skeleton().NewPose()
		inst.buf = skin.NewBuffer(mm.Vertices())
	case *StaticMesh:
	}

	inst.ctrl = playback.New(frames)
	inst.ctrl.OnEnd(inst.animationEnded)
	inst.ctrl.OnTransition(inst.saveTransition)

	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Mesh returns the shared asset.
func (i *Instance) Mesh() Mesh { return i.mesh }

// Controller exposes the playback state.
func (i *Instance) Controller() *playback.Controller { return i.ctrl }

// Frame returns the current frame.
func (i *Instance) Frame() float32 { return i.ctrl.Frame() }

// SetFrameLoop sets the playback window; see playback.Controller.
func (i *Instance) SetFrameLoop(start, end int) { i.ctrl.SetFrameLoop(start, end) }

// SetAnimationSpeed sets the signed rate in frames per second.
func (i *Instance) SetAnimationSpeed(fps float32) { i.ctrl.SetAnimationSpeed(fps) }

// SetCurrentFrame jumps inside the window.
func (i *Instance) SetCurrentFrame(frame float32) { i.ctrl.SetCurrentFrame(frame) }

// SetLoopMode toggles looping.
func (i *Instance) SetLoopMode(loop bool) { i.ctrl.SetLoopMode(loop) }

// SetTransitionTime sets the blend duration for frame jumps.
func (i *Instance) SetTransitionTime(d time.Duration) { i.ctrl.SetTransitionTime(d) }

// SetAnimationEndCallback registers fn to run once whenever a
// non-looping window reaches its end.
func (i *Instance) SetAnimationEndCallback(fn func(*Instance)) { i.onEnd = fn }

// Animation returns the id last started with SetAnimation, or -1.
func (i *Instance) Animation() int { return i.animation }

// SetAnimation plays the first sequence registered for id. It returns
// false for static meshes and unknown ids.
func (i *Instance) SetAnimation(id int) bool {
	if i.skinned == nil {
		return false
	}
	start, end, ok := i.skinned.Animations().FrameLoop(id)
	if !ok {
		i.log.Debug("unknown animation", zap.Int("id", id))
		return false
	}
	i.animation = id
	i.ctrl.SetFrameLoop(start, end)
	i.log.Debug("animation started",
		zap.Int("id", id),
		zap.Int("start", start),
		zap.Int("end", end))
	return true
}

func (i *Instance) animationEnded() {
	i.log.Debug("animation ended", zap.Int("id", i.animation), zap.Float32("frame", i.ctrl.Frame()))
	if i.onEnd != nil {
		i.onEnd(i)
	}
}

// saveTransition captures the pose being left. A pose that was never
// evaluated, or evaluated for another frame, is brought up to date first.
func (i *Instance) saveTransition() {
	if i.pose == nil {
		return
	}
	if i.stale() {
		i.Animate(i.ctrl.Frame())
	}
	i.snapshot = i.pose.Snapshot()
}

func (i *Instance) stale() bool {
	return i.pose.Version() == 0 || i.posedFrame != i.ctrl.Frame() || i.posedGlobal != i.global
}

// SetJointMode selects how bones are driven. Control mode needs a source
// and read mode a sink; see SetJointSource and SetJointSink.
func (i *Instance) SetJointMode(mode skeleton.JointMode) { i.jointMode = mode }

// JointMode returns the current joint mode.
func (i *Instance) JointMode() skeleton.JointMode { return i.jointMode }

// SetJointSource sets the override provider for JointControl.
func (i *Instance) SetJointSource(src skeleton.JointSource) { i.source = src }

// SetJointSink sets the receiver for JointRead.
func (i *Instance) SetJointSink(sink skeleton.JointSink) { i.sink = sink }

// JointIndex finds a bone by name ignoring case.
func (i *Instance) JointIndex(name string) (int, bool) {
	if i.skinned == nil {
		return 0, false
	}
	return i.skinned.Skeleton().JointIndex(name)
}

// Pose returns the evaluated pose, nil for static meshes.
func (i *Instance) Pose() *skeleton.Pose { return i.pose }

// Animate evaluates the skeleton at frame and returns the global bone
// transforms. Static meshes return nil. The slice is reused by the next
// call.
func (i *Instance) Animate(frame float32) []math.Mat4 {
	if i.skinned == nil {
		return nil
	}
	opts := skeleton.Options{Mode: i.jointMode, Source: i.source, Sink: i.sink}
	if w, active := i.ctrl.Blend(); active && i.snapshot != nil {
		opts.Transition = &skeleton.Transition{From: i.snapshot, Weight: w}
	} else {
		i.snapshot = nil
	}
	clock := keyframe.Clock{
		Frame:     frame,
		Global:    i.global,
		Sequences: i.skinned.GlobalSequences(),
	}
	i.skinned.Skeleton().Evaluate(clock, i.pose, opts)
	i.posedFrame, i.posedGlobal = frame, i.global
	return i.pose.Global
}

// Skin returns the deformed vertices for the last evaluated pose. It
// deforms at most once per pose, so repeated calls return the same
// buffer unchanged. Static meshes return their vertices.
func (i *Instance) Skin() []skin.Vertex {
	if i.skinned == nil {
		return i.mesh.(*StaticMesh).Vertices()
	}
	if i.pose.Version() == 0 {
		i.Animate(i.ctrl.Frame())
	}
	if i.buf.Update(i.pose.Global, i.pose.Version(), i.skinned.Vertices()) {
		i.log.Debug("skinned", zap.Uint64("pose", i.pose.Version()))
	}
	return i.buf.Vertices
}

// Update runs one frame: advance playback, evaluate the pose, skin.
func (i *Instance) Update(elapsed time.Duration) {
	i.ctrl.Advance(elapsed)
	if i.skinned == nil {
		return
	}
	i.global += float32(elapsed.Seconds()) * playback.DefaultRate
	i.Animate(i.ctrl.Frame())
	i.Skin()
}

// BoundingBox returns the bounds of the current skinned vertices, or the
// bind-pose bounds before the first skin and for static meshes.
func (i *Instance) BoundingBox() (lo, hi math.Vec3) {
	if i.buf == nil {
		return i.mesh.BoundingBox()
	}
	return i.buf.Min, i.buf.Max
}

// SetGeosetVisible shows or hides a geoset.
func (i *Instance) SetGeosetVisible(id int, visible bool) { i.geosets.Set(id, visible) }

// IsGeosetVisible reports whether a geoset is drawn.
func (i *Instance) IsGeosetVisible(id int) bool { return i.geosets.Visible(id) }

// SetSkin selects the active view.
func (i *Instance) SetSkin(id int) error {
	if _, err := i.view(id); err != nil {
		return err
	}
	i.skinID = id
	return nil
}

// SkinID returns the active view.
func (i *Instance) SkinID() int { return i.skinID }

// SetSubmeshSorting toggles depth sorting in SortedDrawOrder.
func (i *Instance) SetSubmeshSorting(on bool) { i.sorting = on }

func (i *Instance) view(id int) (*Skin, error) {
	switch m := i.mesh.(type) {
	case *SkinnedMesh:
		return m.Skin(id)
	case *StaticMesh:
		return m.Skin(id)
	}
	return nil, fmt.Errorf("mesh kind %v: %w", i.mesh.Kind(), ErrNoSkin)
}

// Visible returns the submeshes of the active view whose geoset is
// enabled, in view order.
func (i *Instance) Visible() []int {
	sk, err := i.view(i.skinID)
	if err != nil {
		return nil
	}
	out := make([]int, 0, len(sk.Submeshes))
	for _, s := range sk.Submeshes {
		if i.geosets.Visible(i.mesh.Submesh(s).Geoset) {
			out = append(out, s)
		}
	}
	return out
}
