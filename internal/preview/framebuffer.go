// Package preview rasterises an animated instance in software and writes
// the result as an image. It draws the instance's draw list in order: an
// opaque depth-tested pass followed by blended transparent submeshes.
package preview

import (
	stdmath "math"
)

// FrameBuffer holds the render target as flat slices.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	Depth  []float32 // NDC depth per pixel, +Inf when empty
}

// NewFrameBuffer allocates a cleared buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
		Depth:  make([]float32, w*h),
	}
	fb.Clear([4]uint8{})
	return fb
}

// Clear fills the color buffer and resets depth.
func (fb *FrameBuffer) Clear(c [4]uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		copy(fb.Color[i:i+4], c[:])
	}
	inf := float32(stdmath.Inf(1))
	for i := range fb.Depth {
		fb.Depth[i] = inf
	}
}

// At returns the pixel at (x, y).
func (fb *FrameBuffer) At(x, y int) [4]uint8 {
	i := (y*fb.Width + x) * 4
	return [4]uint8{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}
