package math

import (
	"testing"
)

func TestVec3Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", a.Add(b), V3(5, 7, 9)},
		{"sub", b.Sub(a), V3(3, 3, 3)},
		{"scale", a.Scale(2), V3(2, 4, 6)},
		{"cross", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"lerp", a.Lerp(b, 0.5), V3(2.5, 3.5, 4.5)},
		{"min", V3(1, 9, 3).Min(V3(2, 0, 3)), V3(1, 0, 3)},
		{"max", V3(1, 9, 3).Max(V3(2, 0, 3)), V3(2, 9, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %v, want 32", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 4, 0).Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Normalize length: got %v, want 1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should stay zero")
	}
}

func TestHermiteEndpoints(t *testing.T) {
	p0, p1 := V3(0, 0, 0), V3(10, 0, 0)
	m := V3(5, 5, 0)
	if got := Hermite(p0, m, m, p1, 0); got != p0 {
		t.Errorf("Hermite(0): got %v, want %v", got, p0)
	}
	if got := Hermite(p0, m, m, p1, 1); !got.ApproxEqual(p1, 1e-5) {
		t.Errorf("Hermite(1): got %v, want %v", got, p1)
	}
}

func TestBezierLinearControlPoints(t *testing.T) {
	p0, p1 := V3(0, 0, 0), V3(3, 0, 0)
	got := Bezier(p0, V3(1, 0, 0), V3(2, 0, 0), p1, 0.5)
	if !got.ApproxEqual(V3(1.5, 0, 0), 1e-5) {
		t.Errorf("Bezier with collinear controls: got %v, want (1.5, 0, 0)", got)
	}
}

func TestRectEncloses(t *testing.T) {
	outer := EmptyRect().Extend(Vec2{0, 0}).Extend(Vec2{10, 10})
	inner := EmptyRect().Extend(Vec2{2, 2}).Extend(Vec2{5, 8})
	if !outer.Encloses(inner) {
		t.Error("outer should enclose inner")
	}
	if inner.Encloses(outer) {
		t.Error("inner should not enclose outer")
	}
	if outer.Encloses(EmptyRect()) {
		t.Error("empty rect is never enclosed")
	}
}
