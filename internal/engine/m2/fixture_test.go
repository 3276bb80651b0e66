package m2

import (
	"testing"

	"github.com/Faultbox/m2skin/internal/engine/keyframe"
	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/internal/engine/skin"
	"github.com/Faultbox/m2skin/pkg/math"
)

const tolerance = 1e-4

// quad appends a unit quad facing -Z at depth z, bound to bone.
func quad(d *Data, z float32, bone uint16, geoset, shader int) {
	base := len(d.Vertices)
	for _, xy := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		d.Vertices = append(d.Vertices, skin.Vertex{
			Position: math.V3(xy[0], xy[1], z),
			Normal:   math.V3(0, 0, -1),
			Bones:    [4]uint16{bone},
			Weights:  [4]float32{1},
		})
	}
	start := len(d.Indices)
	for _, i := range []int{0, 1, 2, 0, 2, 3} {
		d.Indices = append(d.Indices, uint16(base+i))
	}
	d.Submeshes = append(d.Submeshes, Submesh{
		ID:          len(d.Submeshes),
		Geoset:      geoset,
		VertexStart: base,
		VertexCount: 4,
		IndexStart:  start,
		IndexCount:  6,
		Layers:      []TextureLayer{{Shader: shader, Blend: blendFor(shader)}},
	})
}

func blendFor(shader int) BlendMode {
	if shader == 0 {
		return BlendOpaque
	}
	return BlendAdd
}

// fixtureData: a static root and an arm that slides toward the camera
// over frames 0..100. Submeshes: 0 root at z=30, 1 arm at z=20,
// 2 overlay at z=10, 3 hidden geoset 101 at z=0.
func fixtureData() Data {
	root := skeleton.NewBone("Root", skeleton.NoParent, math.Vec3{})
	arm := skeleton.NewBone("Arm", 0, math.V3(0, 0, 20))
	arm.Translation = keyframe.NewTrack(keyframe.Linear,
		keyframe.Key[math.Vec3]{Time: 0, Value: math.Vec3{}},
		keyframe.Key[math.Vec3]{Time: 100, Value: math.V3(0, 0, -15)},
	)

	d := Data{
		Name:  "fixture",
		Bones: []skeleton.Bone{root, arm},
		Animations: []Animation{
			{ID: 0, Start: 0, End: 100, Probability: 32767},
			{ID: 4, Start: 101, End: 200, Probability: 20000},
			{ID: 4, SubID: 1, Start: 201, End: 300, Probability: 12767},
		},
	}
	quad(&d, 30, 0, 0, 0)
	quad(&d, 20, 1, 0, 0)
	quad(&d, 10, 0, 0, 1)
	quad(&d, 0, 0, 101, 0)
	d.Skins = []Skin{
		{Name: "full", Submeshes: []int{0, 1, 2, 3}},
		{Name: "lod", Submeshes: []int{0}},
	}
	return d
}

func fixture(t *testing.T) *SkinnedMesh {
	t.Helper()
	m, err := NewSkinnedMesh(fixtureData())
	if err != nil {
		t.Fatalf("NewSkinnedMesh: %v", err)
	}
	return m
}

// camera looks down +Z from z=-10.
var (
	camPos = math.V3(0, 0, -10)
	camFwd = math.V3(0, 0, 1)
)
