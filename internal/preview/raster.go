package preview

import "github.com/Faultbox/m2skin/internal/engine/m2"

// screenVertex is a projected vertex; ok is false behind the eye.
type screenVertex struct {
	x, y, z float32
	ok      bool
}

// fill selects how covered pixels combine with the buffer.
type fill struct {
	color [4]uint8
	blend m2.BlendMode
	// writeDepth is false for the transparent pass.
	writeDepth bool
}

// triangle rasterises one triangle with barycentric coverage and a
// depth test. Hot path: no allocation.
func (fb *FrameBuffer) triangle(a, b, c screenVertex, f fill) {
	if !a.ok || !b.ok || !c.ok {
		return
	}
	minX := clampInt(int(min(a.x, b.x, c.x)), 0, fb.Width-1)
	maxX := clampInt(int(max(a.x, b.x, c.x))+1, 0, fb.Width-1)
	minY := clampInt(int(min(a.y, b.y, c.y)), 0, fb.Height-1)
	maxY := clampInt(int(max(a.y, b.y, c.y))+1, 0, fb.Height-1)

	det := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	inv := 1 / det
	dy12, dx21 := b.y-c.y, c.x-b.x
	dy20, dx02 := c.y-a.y, a.x-c.x

	for py := minY; py <= maxY; py++ {
		fy := float32(py) + 0.5 - c.y
		row := py * fb.Width
		for px := minX; px <= maxX; px++ {
			fx := float32(px) + 0.5 - c.x
			w0 := (dy12*fx + dx21*fy) * inv
			w1 := (dy20*fx + dx02*fy) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			i := row + px
			if z >= fb.Depth[i] {
				continue
			}
			if f.writeDepth {
				fb.Depth[i] = z
			}
			fb.shade(i*4, f)
		}
	}
}

func (fb *FrameBuffer) shade(o int, f fill) {
	dst := fb.Color[o : o+4 : o+4]
	switch f.blend {
	case m2.BlendOpaque, m2.BlendAlphaKey:
		copy(dst, f.color[:])
	case m2.BlendAdd, m2.BlendNoAlphaAdd:
		for k := 0; k < 3; k++ {
			dst[k] = uint8(min(int(dst[k])+int(f.color[k])*int(f.color[3])/255, 255))
		}
		dst[3] = max(dst[3], f.color[3])
	case m2.BlendMod, m2.BlendMod2x:
		scale := 1
		if f.blend == m2.BlendMod2x {
			scale = 2
		}
		for k := 0; k < 3; k++ {
			dst[k] = uint8(min(int(dst[k])*int(f.color[k])*scale/255, 255))
		}
	default:
		a := int(f.color[3])
		for k := 0; k < 3; k++ {
			dst[k] = uint8((int(f.color[k])*a + int(dst[k])*(255-a)) / 255)
		}
		dst[3] = uint8(a + int(dst[3])*(255-a)/255)
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
