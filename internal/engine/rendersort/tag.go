// Package rendersort orders submeshes for back-to-front compositing.
package rendersort

import (
	stdmath "math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/m2skin/pkg/math"
)

// Shader classes carried by a submesh's first texture layer.
const (
	ShaderOpaque = 0
	ShaderDecal  = 2
)

// Camera is the viewpoint used for one sort.
type Camera struct {
	Position math.Vec3
	Forward  math.Vec3
}

// Tag is the per-frame sort key of one submesh.
type Tag struct {
	Submesh     int
	Near, Far   float32
	ContainsCam bool
	Shader      int
	// Extent is the submesh's footprint on the camera plane, used to pick
	// a decal's receiver.
	Extent math.Rect
}

// Overlay reports whether the tag always sorts by its near edge.
func (t *Tag) Overlay() bool { return t.Shader > ShaderOpaque }

// Decal reports whether the tag is placed relative to a receiver.
func (t *Tag) Decal() bool { return t.Shader == ShaderDecal }

func vec(v math.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// basis returns the unit view axes. A zero forward vector yields zero
// axes, which makes every depth zero.
func (c Camera) basis() (fwd, right, up r3.Vec) {
	f := vec(c.Forward)
	n := r3.Norm(f)
	if n == 0 || stdmath.IsNaN(n) {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}
	}
	fwd = r3.Scale(1/n, f)

	worldUp := r3.Vec{Y: 1}
	if stdmath.Abs(r3.Dot(fwd, worldUp)) > 0.999 {
		worldUp = r3.Vec{Z: 1}
	}
	right = r3.Unit(r3.Cross(fwd, worldUp))
	up = r3.Cross(right, fwd)
	return fwd, right, up
}

// Measure builds the tag of one submesh from its extremity points in the
// skinned vertex buffer. Near and Far are the extreme view depths
// dot(p-cam, forward). ContainsCam is set when the camera is inside the
// points' bounding box or the points straddle the camera plane. With no
// points, or all points equal, ContainsCam is false and Near == Far.
func Measure(submesh, shader int, points []math.Vec3, cam Camera) Tag {
	tag := Tag{Submesh: submesh, Shader: shader, Extent: math.EmptyRect()}
	if len(points) == 0 {
		return tag
	}

	eye := vec(cam.Position)
	fwd, right, up := cam.basis()

	near, far := stdmath.Inf(1), stdmath.Inf(-1)
	box := r3.Box{Min: vec(points[0]), Max: vec(points[0])}
	for _, p := range points {
		v := vec(p)
		rel := r3.Sub(v, eye)
		d := r3.Dot(rel, fwd)
		near = stdmath.Min(near, d)
		far = stdmath.Max(far, d)

		box.Min = r3.Vec{X: stdmath.Min(box.Min.X, v.X), Y: stdmath.Min(box.Min.Y, v.Y), Z: stdmath.Min(box.Min.Z, v.Z)}
		box.Max = r3.Vec{X: stdmath.Max(box.Max.X, v.X), Y: stdmath.Max(box.Max.Y, v.Y), Z: stdmath.Max(box.Max.Z, v.Z)}

		tag.Extent = tag.Extent.Extend(math.Vec2{
			X: float32(r3.Dot(rel, right)),
			Y: float32(r3.Dot(rel, up)),
		})
	}
	tag.Near, tag.Far = float32(near), float32(far)

	if box.Min == box.Max {
		return tag
	}
	tag.ContainsCam = box.Contains(eye) || (near < 0 && far > 0)
	return tag
}
