package preview

import (
	"image"
	stdmath "math"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/m2skin/internal/engine/m2"
	"github.com/Faultbox/m2skin/internal/engine/skin"
	"github.com/Faultbox/m2skin/pkg/math"
)

// Options configures a Renderer.
type Options struct {
	Width, Height int
	// Supersample renders at this multiple of the output size and
	// downsamples; values below 1 mean 1.
	Supersample int
	Eye, Target math.Vec3
	// FovY is the vertical field of view in radians.
	FovY       float32
	Background [4]uint8
	Logger     *zap.Logger
}

// DefaultOptions returns a 256x256 view from the -Z side.
func DefaultOptions() Options {
	return Options{
		Width:       256,
		Height:      256,
		Supersample: 2,
		Eye:         math.V3(0, 1, -4),
		Target:      math.V3(0, 1, 0),
		FovY:        float32(stdmath.Pi / 3),
		Background:  [4]uint8{24, 24, 32, 255},
	}
}

// Renderer draws instances into a reusable frame buffer. A Renderer is
// not safe for concurrent use.
type Renderer struct {
	opts    Options
	fb      *FrameBuffer
	viewPrj math.Mat4
	light   math.Vec3
	log     *zap.Logger

	screen []screenVertex
}

// New creates a renderer for opts.
func New(opts Options) *Renderer {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.FovY <= 0 {
		opts.FovY = DefaultOptions().FovY
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w, h := opts.Width*opts.Supersample, opts.Height*opts.Supersample
	view := math.LookAt(opts.Eye, opts.Target, upFor(opts.Target.Sub(opts.Eye)))
	proj := math.Perspective(opts.FovY, float32(opts.Width)/float32(opts.Height), 0.1, 1000)
	return &Renderer{
		opts:    opts,
		fb:      NewFrameBuffer(w, h),
		viewPrj: proj.Mul(view),
		light:   math.V3(0.3, 0.8, -0.5).Normalize(),
		log:     log,
	}
}

// upFor picks world up, switching axes when looking straight along Y.
func upFor(forward math.Vec3) math.Vec3 {
	f := forward.Normalize()
	if f.Y > 0.99 || f.Y < -0.99 {
		return math.V3(0, 0, 1)
	}
	return math.V3(0, 1, 0)
}

// Forward returns the unit view direction.
func (r *Renderer) Forward() math.Vec3 {
	return r.opts.Target.Sub(r.opts.Eye).Normalize()
}

// FrameBuffer exposes the full-resolution target of the last Render.
func (r *Renderer) FrameBuffer() *FrameBuffer { return r.fb }

type indexed interface {
	Indices() []uint16
}

// Render draws the instance's current skinned pose and returns the
// downsampled image.
func (r *Renderer) Render(inst *m2.Instance) *image.NRGBA {
	r.fb.Clear(r.opts.Background)

	mesh, ok := inst.Mesh().(indexed)
	if !ok {
		return r.image()
	}
	verts := inst.Skin()
	r.project(verts)

	dl := inst.DrawList(r.opts.Eye, r.Forward())
	for _, s := range dl.Solid {
		r.submesh(inst.Mesh().Submesh(int(s)), mesh.Indices(), verts, true)
	}
	for _, s := range dl.Transparent {
		r.submesh(inst.Mesh().Submesh(int(s)), mesh.Indices(), verts, false)
	}
	r.log.Debug("rendered",
		zap.Int("solid", len(dl.Solid)),
		zap.Int("transparent", len(dl.Transparent)))
	return r.image()
}

func (r *Renderer) project(verts []skin.Vertex) {
	r.screen = r.screen[:0]
	w, h := float32(r.fb.Width), float32(r.fb.Height)
	for i := range verts {
		p, ok := r.viewPrj.Project(verts[i].Position)
		r.screen = append(r.screen, screenVertex{
			x:  (p.X*0.5 + 0.5) * w,
			y:  (0.5 - p.Y*0.5) * h,
			z:  p.Z,
			ok: ok,
		})
	}
}

func (r *Renderer) submesh(sm *m2.Submesh, indices []uint16, verts []skin.Vertex, solid bool) {
	base := baseColor(sm.ID)
	blend := m2.BlendOpaque
	if len(sm.Layers) > 0 {
		blend = sm.Layers[0].Blend
	}
	if !solid && blend == m2.BlendOpaque {
		blend = m2.BlendAlpha
	}
	for t := sm.IndexStart; t+2 < sm.IndexStart+sm.IndexCount; t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0, p1, p2 := verts[i0].Position, verts[i1].Position, verts[i2].Position
		n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		light := 0.35 + 0.65*abs32(n.Dot(r.light))

		c := base
		for k := 0; k < 3; k++ {
			c[k] = uint8(float32(c[k]) * light)
		}
		if !solid {
			c[3] = 160
		}
		r.fb.triangle(r.screen[i0], r.screen[i1], r.screen[i2], fill{
			color:      c,
			blend:      blend,
			writeDepth: solid,
		})
	}
}

// baseColor spreads submesh ids over a fixed palette.
func baseColor(id int) [4]uint8 {
	palette := [...][4]uint8{
		{200, 170, 140, 255},
		{90, 140, 210, 255},
		{210, 90, 90, 255},
		{110, 190, 110, 255},
		{220, 200, 80, 255},
		{170, 110, 200, 255},
	}
	return palette[id%len(palette)]
}

// image downsamples the buffer with premultiplied CatmullRom filtering.
func (r *Renderer) image() *image.NRGBA {
	full := image.NewRGBA(image.Rect(0, 0, r.fb.Width, r.fb.Height))
	for i := 0; i < len(r.fb.Color); i += 4 {
		a := uint32(r.fb.Color[i+3])
		full.Pix[i] = uint8(uint32(r.fb.Color[i]) * a / 255)
		full.Pix[i+1] = uint8(uint32(r.fb.Color[i+1]) * a / 255)
		full.Pix[i+2] = uint8(uint32(r.fb.Color[i+2]) * a / 255)
		full.Pix[i+3] = uint8(a)
	}

	dst := full
	if r.opts.Supersample > 1 {
		dst = image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), full, full.Bounds(), draw.Src, nil)
	}

	out := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := uint32(dst.Pix[i+3])
		if a > 0 {
			out.Pix[i] = uint8(min(uint32(dst.Pix[i])*255/a, 255))
			out.Pix[i+1] = uint8(min(uint32(dst.Pix[i+1])*255/a, 255))
			out.Pix[i+2] = uint8(min(uint32(dst.Pix[i+2])*255/a, 255))
		}
		out.Pix[i+3] = uint8(a)
	}
	return out
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
