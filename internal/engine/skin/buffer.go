package skin

import "github.com/Faultbox/m2skin/pkg/math"

// Buffer is one instance's skinned output. It re-skins only when the
// pose version changes, so every render pass in a frame shares a result.
type Buffer struct {
	Vertices []Vertex
	Min, Max math.Vec3

	version uint64
	valid   bool
}

// NewBuffer returns a buffer holding a copy of the bind pose.
func NewBuffer(bind []Vertex) *Buffer {
	b := &Buffer{Vertices: make([]Vertex, len(bind))}
	copy(b.Vertices, bind)
	b.Min, b.Max = Bounds(b.Vertices)
	return b
}

// Update skins bind with globals unless the buffer already holds the
// result for version. It reports whether skinning ran.
func (b *Buffer) Update(globals []math.Mat4, version uint64, bind []Vertex) bool {
	if b.valid && b.version == version {
		return false
	}
	Apply(globals, bind, b.Vertices)
	b.Min, b.Max = Bounds(b.Vertices)
	b.version = version
	b.valid = true
	return true
}

// Current reports whether the buffer holds the result for version.
func (b *Buffer) Current(version uint64) bool {
	return b.valid && b.version == version
}

// Invalidate forces the next Update to skin.
func (b *Buffer) Invalidate() {
	b.valid = false
}
