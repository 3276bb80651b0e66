package keyframe

import (
	stdmath "math"
	"testing"

	"github.com/Faultbox/m2skin/pkg/math"
)

func vecTrack(mode Mode) Track[math.Vec3] {
	return NewTrack(mode,
		Key[math.Vec3]{Time: 0, Value: math.V3(0, 0, 0)},
		Key[math.Vec3]{Time: 10, Value: math.V3(10, 0, 0)},
		Key[math.Vec3]{Time: 30, Value: math.V3(10, 20, 0)},
		Key[math.Vec3]{Time: 40, Value: math.V3(-5, 0, 1)},
	)
}

func TestEvaluateExactSamples(t *testing.T) {
	for _, mode := range []Mode{None, Linear, Hermite, Bezier} {
		t.Run(mode.String(), func(t *testing.T) {
			tr := vecTrack(mode)
			for i, k := range tr.Keys {
				got := tr.Evaluate(k.Time, nil, math.Vec3{})
				if got != k.Value {
					t.Errorf("key %d: got %v, want %v", i, got, k.Value)
				}
			}
		})
	}
}

func TestEvaluateClamps(t *testing.T) {
	tr := vecTrack(Linear)
	tests := []struct {
		name string
		time float32
		want math.Vec3
	}{
		{"before first", -100, math.V3(0, 0, 0)},
		{"just before first", -0.001, math.V3(0, 0, 0)},
		{"after last", 41, math.V3(-5, 0, 1)},
		{"far after last", 1e6, math.V3(-5, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Evaluate(tt.time, nil, math.Vec3{}); got != tt.want {
				t.Errorf("Evaluate(%v): got %v, want %v", tt.time, got, tt.want)
			}
		})
	}
}

func TestEvaluateLinear(t *testing.T) {
	tr := vecTrack(Linear)
	got := tr.Evaluate(20, nil, math.Vec3{})
	if !got.ApproxEqual(math.V3(10, 10, 0), 1e-5) {
		t.Errorf("Evaluate(20): got %v, want (10, 10, 0)", got)
	}
}

func TestEvaluateStep(t *testing.T) {
	tr := vecTrack(None)
	if got := tr.Evaluate(29.9, nil, math.Vec3{}); got != math.V3(10, 0, 0) {
		t.Errorf("step track should hold previous key, got %v", got)
	}
}

func TestEvaluateDegenerate(t *testing.T) {
	def := math.V3(1, 1, 1)

	empty := NewTrack[math.Vec3](Linear)
	if got := empty.Evaluate(5, nil, def); got != def {
		t.Errorf("empty track: got %v, want default %v", got, def)
	}

	single := NewTrack(Linear, Key[math.Vec3]{Time: 7, Value: math.V3(3, 2, 1)})
	for _, time := range []float32{-1, 7, 100} {
		if got := single.Evaluate(time, nil, def); got != math.V3(3, 2, 1) {
			t.Errorf("single key at %v: got %v", time, got)
		}
	}
}

func TestEvaluateQuaternionSlerp(t *testing.T) {
	axis := math.V3(0, 1, 0)
	tr := NewTrack(Linear,
		Key[math.Quat]{Time: 0, Value: math.QuatIdentity()},
		Key[math.Quat]{Time: 100, Value: math.QuatFromAxisAngle(axis, stdmath.Pi/2)},
	)
	got := tr.Evaluate(50, nil, math.QuatIdentity())
	want := math.QuatFromAxisAngle(axis, stdmath.Pi/4)
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("slerp midpoint: got %v, want %v", got, want)
	}

	// Spline modes fall back to slerp for rotations.
	tr.Mode = Hermite
	if got := tr.Evaluate(50, nil, math.QuatIdentity()); !got.ApproxEqual(want, 1e-5) {
		t.Errorf("hermite rotation: got %v, want %v", got, want)
	}
}

func TestEvaluateScalarHermite(t *testing.T) {
	tr := NewTrack(Hermite,
		Key[float32]{Time: 0, Value: 0},
		Key[float32]{Time: 1, Value: 1},
	)
	// Zero tangents give smoothstep.
	if got := tr.Evaluate(0.5, nil, 0); abs(got-0.5) > 1e-6 {
		t.Errorf("hermite midpoint: got %v, want 0.5", got)
	}
	if got := tr.Evaluate(0.25, nil, 0); abs(got-0.15625) > 1e-6 {
		t.Errorf("hermite quarter: got %v, want 0.15625", got)
	}
}

func TestHintMatchesBinarySearch(t *testing.T) {
	keys := make([]Key[float32], 50)
	for i := range keys {
		keys[i] = Key[float32]{Time: float32(i * 3), Value: float32(i * i)}
	}
	tr := NewTrack(Linear, keys...)

	hint := 0
	times := []float32{0, 1, 2.5, 3, 40, 41, 5, 149, 147, 0.5, 200, -3, 75}
	for _, time := range times {
		want := tr.Evaluate(time, nil, 0)
		got := tr.Evaluate(time, &hint, 0)
		if got != want {
			t.Errorf("time %v: hinted %v, unhinted %v", time, got, want)
		}
	}

	// A stale hint must not break lookup.
	hint = 1000
	if got, want := tr.Evaluate(10, &hint, 0), tr.Evaluate(10, nil, 0); got != want {
		t.Errorf("stale hint: got %v, want %v", got, want)
	}
}

func TestGlobalSequence(t *testing.T) {
	tr := NewTrack(Linear,
		Key[float32]{Time: 0, Value: 0},
		Key[float32]{Time: 100, Value: 1},
	)
	tr.GlobalSequence = 0

	c := Clock{Frame: 0, Global: 250, Sequences: []float32{200}}
	if got := tr.Sample(c, nil, 0); abs(got-0.5) > 1e-6 {
		t.Errorf("global sequence: got %v, want 0.5", got)
	}

	// Unknown sequence index falls back to the animation frame.
	tr.GlobalSequence = 3
	c.Frame = 25
	if got := tr.Sample(c, nil, 0); abs(got-0.25) > 1e-6 {
		t.Errorf("fallback to frame: got %v, want 0.25", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
