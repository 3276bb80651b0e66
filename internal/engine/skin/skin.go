// Package skin deforms bind-pose vertices by weighted bone transforms.
package skin

import (
	"github.com/Faultbox/m2skin/pkg/math"
)

// MaxInfluences is the number of bone slots per vertex.
const MaxInfluences = 4

// Vertex is a bind-pose vertex with up to four bone influences.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
	Bones    [MaxInfluences]uint16
	Weights  [MaxInfluences]float32
}

// Influenced reports whether any bone weight is positive.
func (v *Vertex) Influenced() bool {
	for _, w := range v.Weights {
		if w > 0 {
			return true
		}
	}
	return false
}

// NormalizeWeights rescales each vertex's weights to sum to one. Negative
// weights are dropped. Vertices without positive weight are left alone.
// Run once at load time.
func NormalizeWeights(vs []Vertex) {
	for i := range vs {
		w := &vs[i].Weights
		var sum float32
		for j := range w {
			if w[j] < 0 {
				w[j] = 0
			}
			sum += w[j]
		}
		if sum == 0 || sum == 1 {
			continue
		}
		for j := range w {
			w[j] /= sum
		}
	}
}

// Apply writes bind deformed by globals into out, which must be at least
// as long as bind. Positions use the full transform, normals the upper
// 3x3 and are renormalised. Unweighted vertices keep their bind pose.
// A bone index outside globals panics.
func Apply(globals []math.Mat4, bind, out []Vertex) {
	out = out[:len(bind)]
	for i := range bind {
		v := &bind[i]
		o := &out[i]
		*o = *v
		if !v.Influenced() {
			continue
		}

		var pos, nrm math.Vec3
		for j, w := range v.Weights {
			if w <= 0 {
				continue
			}
			g := &globals[v.Bones[j]]
			pos = pos.Add(g.TransformPoint(v.Position).Scale(w))
			nrm = nrm.Add(g.TransformDirection(v.Normal).Scale(w))
		}
		o.Position = pos
		o.Normal = nrm.Normalize()
	}
}

// Bounds returns the axis-aligned box of the vertex positions. An empty
// slice yields a zero box.
func Bounds(vs []Vertex) (lo, hi math.Vec3) {
	if len(vs) == 0 {
		return lo, hi
	}
	lo, hi = vs[0].Position, vs[0].Position
	for i := 1; i < len(vs); i++ {
		lo = lo.Min(vs[i].Position)
		hi = hi.Max(vs[i].Position)
	}
	return lo, hi
}
