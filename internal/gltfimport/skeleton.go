package gltfimport

import (
	"fmt"
	stdmath "math"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/m2skin/internal/engine/keyframe"
	"github.com/Faultbox/m2skin/internal/engine/m2"
	"github.com/Faultbox/m2skin/internal/engine/playback"
	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/pkg/math"
	"github.com/Faultbox/m2skin/pkg/names"
)

// Probability given to imported sequences; glTF has no variation weights.
const fullProbability = 0x7fff

// nodePose is a node's local transform.
type nodePose struct {
	t math.Vec3
	r math.Quat
	s math.Vec3
}

func (p nodePose) matrix() math.Mat4 {
	return math.TRS(p.t, p.r, p.s, math.Vec3{})
}

func vec3[F float32 | float64](a [3]F) math.Vec3 {
	return math.V3(float32(a[0]), float32(a[1]), float32(a[2]))
}

func quat[F float32 | float64](a [4]F) math.Quat {
	return math.Quat{X: float32(a[0]), Y: float32(a[1]), Z: float32(a[2]), W: float32(a[3])}
}

func mat4[F float32 | float64](a [16]F) math.Mat4 {
	var m math.Mat4
	for i := range a {
		m[i] = float32(a[i])
	}
	return m
}

// restPose returns every node's local transform. Zero rotations and
// scales from hand-built documents are read as identity.
func (im *importer) restPose() []nodePose {
	poses := make([]nodePose, len(im.doc.Nodes))
	for i, n := range im.doc.Nodes {
		p := nodePose{
			t: vec3(n.Translation),
			r: quat(n.Rotation).Normalize(),
			s: vec3(n.Scale),
		}
		if p.s == (math.Vec3{}) {
			p.s = math.V3(1, 1, 1)
		}
		if m := mat4(n.Matrix); m != (math.Mat4{}) && m != math.Identity() {
			p.t, p.r, p.s = m.Decompose()
		}
		poses[i] = p
	}
	return poses
}

// hierarchy returns each node's parent (-1 for roots) and an order in
// which parents precede children.
func (im *importer) hierarchy() (parents, order []int) {
	parents = make([]int, len(im.doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range im.doc.Nodes {
		for _, c := range n.Children {
			parents[int(c)] = i
		}
	}
	visited := make([]bool, len(parents))
	var walk func(int)
	walk = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		order = append(order, n)
		for _, c := range im.doc.Nodes[n].Children {
			walk(int(c))
		}
	}
	for i, p := range parents {
		if p < 0 {
			walk(i)
		}
	}
	return parents, order
}

func (im *importer) inverseBinds(sk *gltf.Skin) ([]math.Mat4, error) {
	out := make([]math.Mat4, len(sk.Joints))
	for i := range out {
		out[i] = math.Identity()
	}
	if sk.InverseBindMatrices == nil {
		return out, nil
	}
	raw, err := modeler.ReadAccessor(im.doc, im.doc.Accessors[int(*sk.InverseBindMatrices)], nil)
	if err != nil {
		return nil, err
	}
	mats, ok := raw.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("inverse bind matrices %T: %w", raw, ErrAccessor)
	}
	for i := range out {
		if i >= len(mats) {
			break
		}
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out[i][c*4+r] = mats[i][c][r]
			}
		}
	}
	return out, nil
}

// readSkeleton builds one bone per joint. A bone's parent is its nearest
// ancestor node that is also a joint. Pivots sit at the joints' bind
// positions.
func (im *importer) readSkeleton(sk *gltf.Skin) error {
	invBind, err := im.inverseBinds(sk)
	if err != nil {
		return err
	}
	parents, order := im.hierarchy()
	for i, n := range sk.Joints {
		im.joints[int(n)] = i
	}

	bones := make([]skeleton.Bone, len(sk.Joints))
	for i, n := range sk.Joints {
		node := int(n)
		parent := skeleton.NoParent
		for a := parents[node]; a >= 0; a = parents[a] {
			if j, ok := im.joints[a]; ok {
				parent = j
				break
			}
		}
		name := im.doc.Nodes[node].Name
		if name == "" {
			name = fmt.Sprintf("joint%d", i)
		}
		pivot := invBind[i].Inverse().Translation().Scale(im.scale)
		bones[i] = skeleton.NewBone(name, parent, pivot)
	}

	b := &baker{
		im:      im,
		bones:   bones,
		nodes:   sk.Joints,
		invBind: invBind,
		parents: parents,
		order:   order,
	}
	if err := b.run(); err != nil {
		return err
	}
	im.data.Bones = bones
	return nil
}

// baker samples node animation into per-bone tracks on one timeline.
type baker struct {
	im      *importer
	bones   []skeleton.Bone
	nodes   []uint32
	invBind []math.Mat4
	parents []int
	order   []int

	world   []math.Mat4
	globals []math.Mat4
}

func (b *baker) run() error {
	im := b.im
	rest := im.restPose()
	b.world = make([]math.Mat4, len(im.doc.Nodes))
	b.globals = make([]math.Mat4, len(b.bones))

	if len(im.doc.Animations) == 0 {
		b.emit(0, rest)
		b.finish()
		return nil
	}

	poses := make([]nodePose, len(rest))
	next := 0
	for ai, anim := range im.doc.Animations {
		channels, err := im.readChannels(anim)
		if err != nil {
			return fmt.Errorf("animation %d %q: %w", ai, anim.Name, err)
		}
		var duration float32
		for _, c := range channels {
			duration = max(duration, c.times[len(c.times)-1])
		}
		frames := int(stdmath.Round(float64(duration * playback.DefaultRate)))
		start := next
		for f := 0; f <= frames; f++ {
			copy(poses, rest)
			at := float32(f) / playback.DefaultRate
			for _, c := range channels {
				c.apply(poses, at)
			}
			b.emit(start+f, poses)
		}
		next = start + frames + 1

		im.data.Animations = append(im.data.Animations, im.sequence(ai, anim.Name, start, start+frames))
	}
	b.finish()
	return nil
}

// sequence names a baked animation. Names that match a known animation
// keep its id; others are numbered by position.
func (im *importer) sequence(index int, name string, start, end int) m2.Animation {
	id, ok := names.AnimationID(name)
	if !ok {
		id = index
	}
	sub := 0
	for _, a := range im.data.Animations {
		if a.ID == id {
			sub++
		}
	}
	im.log.Debug("baked animation",
		zap.String("name", name),
		zap.Int("id", id),
		zap.Int("start", start),
		zap.Int("end", end))
	return m2.Animation{
		ID:          id,
		SubID:       sub,
		Start:       start,
		End:         end,
		Probability: fullProbability,
		Name:        name,
	}
}

// emit appends one key per bone for frame, expressing each joint's
// skinning matrix relative to its parent bone and about its pivot.
func (b *baker) emit(frame int, poses []nodePose) {
	for _, n := range b.order {
		m := poses[n].matrix()
		if p := b.parents[n]; p >= 0 {
			m = b.world[p].Mul(m)
		}
		b.world[n] = m
	}
	for i, n := range b.nodes {
		g := b.world[int(n)].Mul(b.invBind[i])
		g[12] *= b.im.scale
		g[13] *= b.im.scale
		g[14] *= b.im.scale
		b.globals[i] = g
	}

	t := float32(frame)
	for i := range b.bones {
		bone := &b.bones[i]
		local := b.globals[i]
		if bone.Parent >= 0 {
			local = b.globals[bone.Parent].Inverse().Mul(local)
		}
		tf := skeleton.TransformFromMatrix(local, bone.Pivot)

		bone.Translation.Keys = append(bone.Translation.Keys, keyframe.Key[math.Vec3]{Time: t, Value: tf.Translation})
		bone.Rotation.Keys = append(bone.Rotation.Keys, keyframe.Key[math.Quat]{Time: t, Value: tf.Rotation})
		bone.Scale.Keys = append(bone.Scale.Keys, keyframe.Key[math.Vec3]{Time: t, Value: tf.Scale})
	}
}

const bakeEpsilon = 1e-6

// finish drops keys that lie between two equal neighbours; linear
// interpolation across them is unchanged.
func (b *baker) finish() {
	eqVec := func(a, c math.Vec3) bool { return a.ApproxEqual(c, bakeEpsilon) }
	eqQuat := func(a, c math.Quat) bool { return a.ApproxEqual(c, bakeEpsilon) }
	for i := range b.bones {
		bone := &b.bones[i]
		bone.Translation.Keys = compact(bone.Translation.Keys, eqVec)
		bone.Rotation.Keys = compact(bone.Rotation.Keys, eqQuat)
		bone.Scale.Keys = compact(bone.Scale.Keys, eqVec)
	}
}

func compact[T keyframe.Value](keys []keyframe.Key[T], eq func(a, b T) bool) []keyframe.Key[T] {
	if len(keys) < 3 {
		if len(keys) == 2 && eq(keys[0].Value, keys[1].Value) {
			return keys[:1]
		}
		return keys
	}
	out := keys[:1]
	for i := 1; i < len(keys)-1; i++ {
		if eq(out[len(out)-1].Value, keys[i].Value) && eq(keys[i].Value, keys[i+1].Value) {
			continue
		}
		out = append(out, keys[i])
	}
	out = append(out, keys[len(keys)-1])
	if len(out) == 2 && eq(out[0].Value, out[1].Value) {
		out = out[:1]
	}
	return out
}

// channel is one sampled node property.
type channel struct {
	node  int
	path  gltf.TRSProperty
	cubic bool
	step  bool
	times []float32
	vecs  []math.Vec3
	rots  []math.Quat
}

func (im *importer) readChannels(anim *gltf.Animation) ([]*channel, error) {
	var out []*channel
	for _, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
			continue
		}
		smp := anim.Samplers[int(ch.Sampler)]
		in, err := modeler.ReadAccessor(im.doc, im.doc.Accessors[int(smp.Input)], nil)
		if err != nil {
			return nil, err
		}
		times, ok := in.([]float32)
		if !ok || len(times) == 0 {
			return nil, fmt.Errorf("sampler input %T: %w", in, ErrAccessor)
		}
		c := &channel{
			node:  int(*ch.Target.Node),
			path:  ch.Target.Path,
			cubic: smp.Interpolation == gltf.InterpolationCubicSpline,
			step:  smp.Interpolation == gltf.InterpolationStep,
			times: times,
		}
		raw, err := modeler.ReadAccessor(im.doc, im.doc.Accessors[int(smp.Output)], nil)
		if err != nil {
			return nil, err
		}
		switch v := raw.(type) {
		case [][3]float32:
			for _, a := range v {
				c.vecs = append(c.vecs, math.Vec3FromArray(a))
			}
		case [][4]float32:
			for _, a := range v {
				c.rots = append(c.rots, math.QuatFromArray(a).Normalize())
			}
		default:
			return nil, fmt.Errorf("sampler output %T: %w", raw, ErrAccessor)
		}
		want := len(times)
		if c.cubic {
			want *= 3
		}
		if len(c.vecs)+len(c.rots) < want {
			return nil, fmt.Errorf("sampler output has %d values for %d keys: %w",
				len(c.vecs)+len(c.rots), len(times), ErrAccessor)
		}
		out = append(out, c)
	}
	return out, nil
}

// value returns the index of key i's value; cubic samplers store
// in-tangent, value, out-tangent triples.
func (c *channel) value(i int) int {
	if c.cubic {
		return 3*i + 1
	}
	return i
}

// apply writes the channel's value at time t into poses. Cubic splines
// are sampled linearly between their key values.
func (c *channel) apply(poses []nodePose, t float32) {
	n := len(c.times)
	i := sort.Search(n, func(k int) bool { return c.times[k] > t }) - 1
	var k0, k1 int
	var w float32
	switch {
	case i < 0:
		k0, k1 = 0, 0
	case i >= n-1:
		k0, k1 = n-1, n-1
	default:
		k0, k1 = i, i+1
		if dt := c.times[k1] - c.times[k0]; !c.step && dt > 0 {
			w = (t - c.times[k0]) / dt
		}
	}
	p := &poses[c.node]
	switch c.path {
	case gltf.TRSRotation:
		if len(c.rots) > 0 {
			p.r = c.rots[c.value(k0)].Slerp(c.rots[c.value(k1)], w)
		}
	case gltf.TRSTranslation:
		if len(c.vecs) > 0 {
			p.t = c.vecs[c.value(k0)].Lerp(c.vecs[c.value(k1)], w)
		}
	case gltf.TRSScale:
		if len(c.vecs) > 0 {
			p.s = c.vecs[c.value(k0)].Lerp(c.vecs[c.value(k1)], w)
		}
	}
}
