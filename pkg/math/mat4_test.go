package math

import (
	"math"
	"testing"
)

const eps = 1e-5

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M: got %v, want %v", result, m)
	}
}

func TestTranslateAndTransformPoint(t *testing.T) {
	m := Translate(V3(10, 20, 30))
	if got := m.Translation(); got != V3(10, 20, 30) {
		t.Errorf("Translation: got %v, want (10, 20, 30)", got)
	}
	if got := m.TransformPoint(V3(1, 2, 3)); got != V3(11, 22, 33) {
		t.Errorf("TransformPoint: got %v, want (11, 22, 33)", got)
	}
	if got := m.TransformDirection(V3(1, 2, 3)); got != V3(1, 2, 3) {
		t.Errorf("TransformDirection should ignore translation, got %v", got)
	}
}

func TestScale(t *testing.T) {
	m := Scale(V3(2, 3, 4))
	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTRSMatchesComposition(t *testing.T) {
	tr := V3(1, -2, 3)
	r := QuatFromAxisAngle(V3(0, 1, 0), 0.7)
	s := V3(2, 1, 0.5)
	pivot := V3(0.5, 1, -1)

	want := Translate(tr).
		Mul(Translate(pivot)).
		Mul(r.ToMat4()).
		Mul(Scale(s)).
		Mul(Translate(pivot.Neg()))
	got := TRS(tr, r, s, pivot)
	if !got.ApproxEqual(want, eps) {
		t.Errorf("TRS: got %v, want %v", got, want)
	}
}

func TestTRSPivotIsFixedPoint(t *testing.T) {
	pivot := V3(3, 4, 5)
	m := TRS(Vec3{}, QuatFromAxisAngle(V3(0, 0, 1), 1.2), V3(1, 1, 1), pivot)
	if got := m.TransformPoint(pivot); !got.ApproxEqual(pivot, 1e-4) {
		t.Errorf("pivot should not move under rotation: got %v, want %v", got, pivot)
	}
}

func TestInverse(t *testing.T) {
	m := TRS(V3(4, 5, 6), QuatFromAxisAngle(V3(1, 0, 0), 0.3), V3(2, 2, 2), Vec3{})
	got := m.Mul(m.Inverse())
	if !got.ApproxEqual(Identity(), 1e-4) {
		t.Errorf("M * M^-1 should be identity, got %v", got)
	}

	var singular Mat4
	if singular.Inverse() != Identity() {
		t.Error("singular inverse should fall back to identity")
	}
}

func TestAddMulScalar(t *testing.T) {
	a := Translate(V3(2, 0, 0)).MulScalar(0.25)
	b := Translate(V3(0, 4, 0)).MulScalar(0.75)
	got := a.Add(b).TransformPoint(Vec3{})
	if !got.ApproxEqual(V3(0.5, 3, 0), eps) {
		t.Errorf("weighted matrix blend: got %v, want (0.5, 3, 0)", got)
	}
}

func TestPerspectiveProject(t *testing.T) {
	proj := Perspective(float32(math.Pi/2), 1, 0.1, 100)
	view := LookAt(V3(0, 0, 5), Vec3{}, V3(0, 1, 0))
	vp := proj.Mul(view)

	p, ok := vp.Project(Vec3{})
	if !ok {
		t.Fatal("origin should be in front of the camera")
	}
	if math.Abs(float64(p.X)) > eps || math.Abs(float64(p.Y)) > eps {
		t.Errorf("origin should project to screen center, got %v", p)
	}

	if _, ok := vp.Project(V3(0, 0, 10)); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name string
		t    Vec3
		r    Quat
		s    Vec3
	}{
		{"identity", Vec3{}, QuatIdentity(), Vec3{1, 1, 1}},
		{"translate", Vec3{1, -2, 3}, QuatIdentity(), Vec3{1, 1, 1}},
		{"yaw", Vec3{0, 4, 0}, QuatFromAxisAngle(Vec3{0, 1, 0}, 2.5), Vec3{2, 2, 2}},
		{"roll half turn", Vec3{}, QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi), Vec3{1, 3, 1}},
		{"pitch", Vec3{5, 0, 0}, QuatFromAxisAngle(Vec3{1, 0, 0}, -1), Vec3{0.5, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := TRS(tt.t, tt.r, tt.s, Vec3{})
			gt, gr, gs := m.Decompose()
			if !gt.ApproxEqual(tt.t, 1e-4) {
				t.Errorf("translation: got %v, want %v", gt, tt.t)
			}
			if !gr.ApproxEqual(tt.r, 1e-4) {
				t.Errorf("rotation: got %v, want %v", gr, tt.r)
			}
			if !gs.ApproxEqual(tt.s, 1e-4) {
				t.Errorf("scale: got %v, want %v", gs, tt.s)
			}
			if back := TRS(gt, gr, gs, Vec3{}); !back.ApproxEqual(m, 1e-4) {
				t.Errorf("round trip: got %v, want %v", back, m)
			}
		})
	}
}
