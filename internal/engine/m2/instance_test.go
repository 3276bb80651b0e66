package m2

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/pkg/math"
)

func TestSetAnimation(t *testing.T) {
	inst := NewInstance(fixture(t))
	if !inst.SetAnimation(4) {
		t.Fatal("SetAnimation(4) should succeed")
	}
	start, end := inst.Controller().FrameLoop()
	if start != 101 || end != 200 || inst.Frame() != 101 {
		t.Errorf("window [%d, %d] frame %v, want [101, 200] frame 101", start, end, inst.Frame())
	}
	if inst.Animation() != 4 {
		t.Errorf("Animation: got %d, want 4", inst.Animation())
	}

	if inst.SetAnimation(99) {
		t.Error("SetAnimation(99) should fail")
	}
	if start, end := inst.Controller().FrameLoop(); start != 101 || end != 200 {
		t.Error("failed SetAnimation must not change the window")
	}
}

func TestSkinAtRestMatchesBindPose(t *testing.T) {
	m := fixture(t)
	inst := NewInstance(m)
	inst.Animate(0)
	got := inst.Skin()
	for i, v := range m.Vertices() {
		if !got[i].Position.ApproxEqual(v.Position, tolerance) {
			t.Errorf("vertex %d: got %v, want %v", i, got[i].Position, v.Position)
		}
	}
}

func TestSkinIsIdempotent(t *testing.T) {
	inst := NewInstance(fixture(t))
	inst.Animate(60)
	first := inst.Skin()
	snapshot := append(first[:0:0], first...)
	second := inst.Skin()
	if &first[0] != &second[0] {
		t.Error("Skin should return the same buffer")
	}
	if !reflect.DeepEqual(snapshot, second) {
		t.Error("Skin without Animate changed the vertices")
	}
}

func TestUpdateDeformsArm(t *testing.T) {
	m := fixture(t)
	inst := NewInstance(m)
	inst.SetAnimation(0)
	inst.Update(2 * time.Second) // 50 frames

	verts := inst.Skin()
	arm := m.Submesh(1)
	if z := verts[arm.VertexStart].Position.Z; abs(z-12.5) > tolerance {
		t.Errorf("arm depth at frame 50: got %v, want 12.5", z)
	}
	root := m.Submesh(0)
	if z := verts[root.VertexStart].Position.Z; z != 30 {
		t.Errorf("root depth: got %v, want 30", z)
	}

	lo, hi := inst.BoundingBox()
	if lo.Z != 0 || hi.Z != 30 {
		t.Errorf("bounds z: got %v..%v, want 0..30", lo.Z, hi.Z)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	m := fixture(t)
	a, b := NewInstance(m), NewInstance(m)
	a.Animate(100)
	b.Animate(0)
	za := a.Skin()[m.Submesh(1).VertexStart].Position.Z
	zb := b.Skin()[m.Submesh(1).VertexStart].Position.Z
	if abs(za-5) > tolerance || abs(zb-20) > tolerance {
		t.Errorf("arm depths: got %v and %v, want 5 and 20", za, zb)
	}
}

func TestConcurrentInstances(t *testing.T) {
	m := fixture(t)
	var wg sync.WaitGroup
	results := make([]float32, 8)
	for n := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			inst := NewInstance(m)
			inst.Animate(float32(n * 10))
			results[n] = inst.Skin()[m.Submesh(1).VertexStart].Position.Z
		}(n)
	}
	wg.Wait()
	for n, z := range results {
		want := 20 - 1.5*float32(n)
		if abs(z-want) > tolerance {
			t.Errorf("instance %d: got %v, want %v", n, z, want)
		}
	}
}

func TestAnimationEndCallback(t *testing.T) {
	inst := NewInstance(fixture(t))
	calls := 0
	inst.SetAnimationEndCallback(func(got *Instance) {
		if got != inst {
			t.Error("callback got another instance")
		}
		calls++
	})
	inst.SetLoopMode(false)
	inst.SetAnimation(0)
	for i := 0; i < 10; i++ {
		inst.Update(time.Second)
	}
	if calls != 1 {
		t.Errorf("end callback fired %d times, want 1", calls)
	}
	if inst.Frame() != 100 {
		t.Errorf("frame: got %v, want 100", inst.Frame())
	}
}

func TestTransitionBlendsFromPreviousPose(t *testing.T) {
	inst := NewInstance(fixture(t))
	inst.SetAnimation(4)
	inst.Update(0)
	if z := inst.Pose().Local[1].Translation.Z; z != -15 {
		t.Fatalf("arm at walk start: got %v, want -15", z)
	}

	inst.SetTransitionTime(100 * time.Millisecond)
	inst.SetAnimation(0)
	inst.Update(50 * time.Millisecond) // weight 0.5, frame 1.25
	want := float32(-15+(-0.1875)) / 2
	if z := inst.Pose().Local[1].Translation.Z; abs(z-want) > tolerance {
		t.Errorf("halfway: got %v, want %v", z, want)
	}

	inst.Update(60 * time.Millisecond) // done, frame 2.75
	if z := inst.Pose().Local[1].Translation.Z; abs(z-(-0.4125)) > tolerance {
		t.Errorf("after transition: got %v, want -0.4125", z)
	}
}

func TestTransitionEvaluatesStalePose(t *testing.T) {
	tests := []struct {
		name  string
		setup func(inst *Instance)
		next  int
		want  float32
	}{
		{
			// Never animated: the snapshot comes from walk start (-15),
			// blended halfway toward stand at frame 1.25 (-0.1875).
			name:  "before first update",
			setup: func(inst *Instance) { inst.SetAnimation(4) },
			next:  0,
			want:  (-15 + -0.1875) / 2,
		},
		{
			// Jumped to frame 50 (-7.5) without evaluating, then switched
			// to walk, which holds -15.
			name: "after frame jump",
			setup: func(inst *Instance) {
				inst.SetAnimation(0)
				inst.Update(0)
				inst.SetCurrentFrame(50)
			},
			next: 4,
			want: (-7.5 + -15) / 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := NewInstance(fixture(t))
			tt.setup(inst)
			inst.SetTransitionTime(100 * time.Millisecond)
			inst.SetAnimation(tt.next)
			inst.Update(50 * time.Millisecond)
			if z := inst.Pose().Local[1].Translation.Z; abs(z-tt.want) > tolerance {
				t.Errorf("halfway: got %v, want %v", z, tt.want)
			}
		})
	}
}

func TestSortedDrawOrder(t *testing.T) {
	inst := NewInstance(fixture(t))
	inst.Animate(0)
	if got, want := inst.SortedDrawOrder(camPos, camFwd), []uint16{0, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("frame 0: got %v, want %v", got, want)
	}

	// The arm passes the overlay once the pose changes.
	inst.Animate(100)
	if got, want := inst.SortedDrawOrder(camPos, camFwd), []uint16{0, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("frame 100: got %v, want %v", got, want)
	}

	// Repeated calls with the same inputs agree.
	first := inst.SortedDrawOrder(camPos, camFwd)
	for i := 0; i < 3; i++ {
		if got := inst.SortedDrawOrder(camPos, camFwd); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d: got %v, want %v", i, got, first)
		}
	}

	// Turning around reverses the opaque order.
	back := inst.SortedDrawOrder(math.V3(0, 0, 50), math.V3(0, 0, -1))
	if back[0] != 2 && back[0] != 1 {
		t.Errorf("from behind: got %v, want the near side first", back)
	}
}

func TestSortingDisabledKeepsViewOrder(t *testing.T) {
	inst := NewInstance(fixture(t), WithSubmeshSorting(false), WithAllGeosets())
	got := inst.SortedDrawOrder(camPos, camFwd)
	if want := []uint16{0, 1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGeosetAndSkinSelection(t *testing.T) {
	inst := NewInstance(fixture(t))
	if inst.IsGeosetVisible(101) {
		t.Error("geoset 101 should start hidden")
	}
	inst.SetGeosetVisible(101, true)
	inst.Animate(0)
	if got := inst.SortedDrawOrder(camPos, camFwd); len(got) != 4 {
		t.Errorf("with geoset 101: got %v, want 4 submeshes", got)
	}

	if err := inst.SetSkin(1); err != nil {
		t.Fatalf("SetSkin(1): %v", err)
	}
	if got := inst.SortedDrawOrder(camPos, camFwd); !reflect.DeepEqual(got, []uint16{0}) {
		t.Errorf("lod skin: got %v, want [0]", got)
	}
	if err := inst.SetSkin(5); !errors.Is(err, ErrNoSkin) {
		t.Errorf("SetSkin(5): got %v, want ErrNoSkin", err)
	}
	if inst.SkinID() != 1 {
		t.Error("failed SetSkin must keep the active skin")
	}
}

func TestDrawList(t *testing.T) {
	inst := NewInstance(fixture(t))
	inst.Animate(100)
	dl := inst.DrawList(camPos, camFwd)
	if !reflect.DeepEqual(dl.Solid, []uint16{0, 1}) || !reflect.DeepEqual(dl.Transparent, []uint16{2}) {
		t.Errorf("draw list: solid %v transparent %v", dl.Solid, dl.Transparent)
	}
	if dl.Len() != 3 {
		t.Errorf("Len: got %d, want 3", dl.Len())
	}
}

type recordingSink struct{ got map[int]math.Mat4 }

func (r *recordingSink) SetJointTransform(bone int, global math.Mat4) { r.got[bone] = global }

func TestJointModes(t *testing.T) {
	inst := NewInstance(fixture(t))
	if i, ok := inst.JointIndex("ARM"); !ok || i != 1 {
		t.Fatalf("JointIndex(ARM): got %d, %v", i, ok)
	}

	sink := &recordingSink{got: make(map[int]math.Mat4)}
	inst.SetJointSink(sink)
	inst.SetJointMode(skeleton.JointRead)
	inst.Animate(100)
	if len(sink.got) != 2 {
		t.Errorf("sink received %d bones, want 2", len(sink.got))
	}
	if inst.JointMode() != skeleton.JointRead {
		t.Errorf("JointMode: got %v", inst.JointMode())
	}
}

func TestStaticInstance(t *testing.T) {
	d := fixtureData()
	d.Bones = nil
	m, err := NewStaticMesh(d)
	if err != nil {
		t.Fatalf("NewStaticMesh: %v", err)
	}
	inst := NewInstance(m, WithAllGeosets())
	if inst.Animate(10) != nil {
		t.Error("static Animate should return nil")
	}
	if inst.SetAnimation(0) {
		t.Error("static SetAnimation should fail")
	}
	inst.Update(time.Second)
	if got := inst.Skin(); len(got) != len(m.Vertices()) {
		t.Errorf("Skin: got %d vertices, want %d", len(got), len(m.Vertices()))
	}
	if got := inst.SortedDrawOrder(camPos, camFwd); len(got) != 4 || got[0] != 0 {
		t.Errorf("static order: got %v, want 4 submeshes with the root first", got)
	}
	if _, ok := inst.JointIndex("Root"); ok {
		t.Error("static mesh has no joints")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
