// Package sample builds a small procedural character used when no asset
// path is configured. It exercises every feature of the mesh pipeline:
// a bone hierarchy with Hermite and linear tracks, a global sequence, a
// decal, an additive overlay, a hidden geoset and two skins.
package sample

import (
	stdmath "math"

	"github.com/Faultbox/m2skin/internal/engine/keyframe"
	"github.com/Faultbox/m2skin/internal/engine/m2"
	"github.com/Faultbox/m2skin/internal/engine/rendersort"
	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/internal/engine/skin"
	"github.com/Faultbox/m2skin/pkg/math"
	"github.com/Faultbox/m2skin/pkg/names"
)

// Bones.
const (
	BoneRoot = iota
	BoneHead
	BoneLeftArm
	BoneRightArm
	BoneHalo
)

// Submeshes.
const (
	SubmeshTorso = iota
	SubmeshHead
	SubmeshLeftArm
	SubmeshRightArm
	SubmeshEmblem
	SubmeshHalo
	SubmeshHat
)

// GeosetHat is hidden unless enabled.
const GeosetHat = 101

// Sequence windows on the shared timeline.
const (
	StandStart, StandEnd = 0, 49
	WalkStart, WalkEnd   = 50, 99
	RunStart, RunEnd     = 100, 139
)

// HaloPeriod is the length of the halo's global sequence in frames.
const HaloPeriod = 50

// Data returns a fresh dataset for the sample character.
func Data() m2.Data {
	d := m2.Data{
		Name:            "sample",
		Bones:           bones(),
		GlobalSequences: []float32{HaloPeriod},
		Animations: []m2.Animation{
			{ID: names.AnimStand, Start: StandStart, End: StandEnd, Probability: 0x7fff, Name: "Stand"},
			{ID: names.AnimWalk, Start: WalkStart, End: WalkEnd, Probability: 0x7fff, Speed: 2.5, Name: "Walk"},
			{ID: names.AnimRun, Start: RunStart, End: RunEnd, Probability: 0x7fff, Speed: 7, Name: "Run"},
		},
	}

	opaque := m2.TextureLayer{Blend: m2.BlendOpaque}
	box(&d, math.V3(0, 1, 0), math.V3(0.4, 0.5, 0.2), BoneRoot, 0, opaque)
	box(&d, math.V3(0, 1.75, 0), math.V3(0.2, 0.2, 0.2), BoneHead, 0, opaque)
	box(&d, math.V3(-0.55, 1.1, 0), math.V3(0.1, 0.4, 0.1), BoneLeftArm, 0, opaque)
	box(&d, math.V3(0.55, 1.1, 0), math.V3(0.1, 0.4, 0.1), BoneRightArm, 0, opaque)

	// Emblem sits just in front of the torso's -Z face.
	quad(&d, [4]math.Vec3{
		math.V3(-0.15, 0.95, -0.21),
		math.V3(0.15, 0.95, -0.21),
		math.V3(0.15, 1.25, -0.21),
		math.V3(-0.15, 1.25, -0.21),
	}, math.V3(0, 0, -1), BoneRoot, 0, m2.TextureLayer{Shader: rendersort.ShaderDecal, Blend: m2.BlendAlpha})

	quad(&d, [4]math.Vec3{
		math.V3(-0.3, 2.1, -0.3),
		math.V3(0.3, 2.1, -0.3),
		math.V3(0.3, 2.1, 0.3),
		math.V3(-0.3, 2.1, 0.3),
	}, math.V3(0, 1, 0), BoneHalo, 0, m2.TextureLayer{Shader: 1, Blend: m2.BlendAdd})

	box(&d, math.V3(0, 2.0, 0), math.V3(0.22, 0.08, 0.22), BoneHead, GeosetHat, opaque)

	d.Skins = []m2.Skin{
		{Name: "full", Submeshes: []int{
			SubmeshTorso, SubmeshHead, SubmeshLeftArm, SubmeshRightArm,
			SubmeshEmblem, SubmeshHalo, SubmeshHat,
		}},
		{Name: "lod", Submeshes: []int{SubmeshTorso, SubmeshHead, SubmeshLeftArm, SubmeshRightArm}},
	}
	return d
}

// Mesh builds the sample as a shared skinned mesh.
func Mesh() (*m2.SkinnedMesh, error) {
	return m2.NewSkinnedMesh(Data())
}

func bones() []skeleton.Bone {
	root := skeleton.NewBone("Root", skeleton.NoParent, math.V3(0, 0.5, 0))
	root.Translation = keyframe.NewTrack(keyframe.Hermite,
		vkey(StandStart, 0, 0, 0),
		vkey(25, 0, 0.05, 0),
		vkey(StandEnd, 0, 0, 0),
		vkey(WalkStart, 0, 0, 0),
		vkey(62, 0, 0.1, 0),
		vkey(75, 0, 0, 0),
		vkey(87, 0, 0.1, 0),
		vkey(WalkEnd, 0, 0, 0),
		vkey(RunStart, 0, 0, 0),
		vkey(110, 0, 0.2, 0),
		vkey(120, 0, 0, 0),
		vkey(130, 0, 0.2, 0),
		vkey(RunEnd, 0, 0, 0),
	)

	head := skeleton.NewBone("Head", BoneRoot, math.V3(0, 1.5, 0))
	head.KeyBoneID = 6
	head.Rotation = keyframe.NewTrack(keyframe.Linear,
		qkey(StandStart, math.V3(0, 1, 0), 0),
		qkey(25, math.V3(0, 1, 0), 0.3),
		qkey(StandEnd, math.V3(0, 1, 0), 0),
	)

	left := skeleton.NewBone("LeftArm", BoneRoot, math.V3(-0.55, 1.5, 0))
	right := skeleton.NewBone("RightArm", BoneRoot, math.V3(0.55, 1.5, 0))
	left.Rotation = swing(1)
	right.Rotation = swing(-1)

	halo := skeleton.NewBone("Halo", BoneHead, math.V3(0, 2.1, 0))
	var spin []keyframe.Key[math.Quat]
	for i := 0; i <= 5; i++ {
		angle := float32(i) * 2 * stdmath.Pi / 5
		spin = append(spin, qkey(float32(i*HaloPeriod/5), math.V3(0, 1, 0), angle))
	}
	halo.Rotation = keyframe.NewTrack(keyframe.Linear, spin...)
	halo.Rotation.GlobalSequence = 0

	return []skeleton.Bone{root, head, left, right, halo}
}

// swing rotates an arm about X, mirrored by dir, during walk and run.
func swing(dir float32) keyframe.Track[math.Quat] {
	x := math.V3(1, 0, 0)
	return keyframe.NewTrack(keyframe.Linear,
		qkey(WalkStart, x, 0.6*dir),
		qkey(75, x, -0.6*dir),
		qkey(WalkEnd, x, 0.6*dir),
		qkey(RunStart, x, 1.1*dir),
		qkey(120, x, -1.1*dir),
		qkey(RunEnd, x, 1.1*dir),
	)
}

func vkey(t, x, y, z float32) keyframe.Key[math.Vec3] {
	return keyframe.Key[math.Vec3]{Time: t, Value: math.V3(x, y, z)}
}

func qkey(t float32, axis math.Vec3, angle float32) keyframe.Key[math.Quat] {
	return keyframe.Key[math.Quat]{Time: t, Value: math.QuatFromAxisAngle(axis, angle)}
}

// box appends an axis-aligned box with one quad per face.
func box(d *m2.Data, center, half math.Vec3, bone uint16, geoset int, layer m2.TextureLayer) {
	start, indexStart := len(d.Vertices), len(d.Indices)
	faces := [6]struct{ n, u, v math.Vec3 }{
		{math.V3(0, 0, -1), math.V3(1, 0, 0), math.V3(0, 1, 0)},
		{math.V3(0, 0, 1), math.V3(-1, 0, 0), math.V3(0, 1, 0)},
		{math.V3(-1, 0, 0), math.V3(0, 0, -1), math.V3(0, 1, 0)},
		{math.V3(1, 0, 0), math.V3(0, 0, 1), math.V3(0, 1, 0)},
		{math.V3(0, 1, 0), math.V3(1, 0, 0), math.V3(0, 0, 1)},
		{math.V3(0, -1, 0), math.V3(1, 0, 0), math.V3(0, 0, -1)},
	}
	scale := func(v math.Vec3) math.Vec3 { return math.V3(v.X*half.X, v.Y*half.Y, v.Z*half.Z) }
	for _, f := range faces {
		c := center.Add(scale(f.n))
		u, v := scale(f.u), scale(f.v)
		corners := [4]math.Vec3{
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		}
		appendQuad(d, corners, f.n, bone)
	}
	d.Submeshes = append(d.Submeshes, m2.Submesh{
		ID:          len(d.Submeshes),
		Geoset:      geoset,
		VertexStart: start,
		VertexCount: len(d.Vertices) - start,
		IndexStart:  indexStart,
		IndexCount:  len(d.Indices) - indexStart,
		Layers:      []m2.TextureLayer{layer},
	})
}

// quad appends a single-face submesh.
func quad(d *m2.Data, corners [4]math.Vec3, normal math.Vec3, bone uint16, geoset int, layer m2.TextureLayer) {
	start, indexStart := len(d.Vertices), len(d.Indices)
	appendQuad(d, corners, normal, bone)
	d.Submeshes = append(d.Submeshes, m2.Submesh{
		ID:          len(d.Submeshes),
		Geoset:      geoset,
		VertexStart: start,
		VertexCount: 4,
		IndexStart:  indexStart,
		IndexCount:  6,
		Layers:      []m2.TextureLayer{layer},
	})
}

func appendQuad(d *m2.Data, corners [4]math.Vec3, normal math.Vec3, bone uint16) {
	base := len(d.Vertices)
	uvs := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for i, p := range corners {
		d.Vertices = append(d.Vertices, skin.Vertex{
			Position: p,
			Normal:   normal,
			TexCoord: uvs[i],
			Bones:    [4]uint16{bone},
			Weights:  [4]float32{1},
		})
	}
	for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
		d.Indices = append(d.Indices, uint16(base+i))
	}
}
