// Package viewer runs the m2view playback loop: it loads a mesh, animates
// one main instance plus an optional crowd at a fixed step, and renders a
// preview of the main instance.
package viewer

import (
	"context"
	"fmt"
	stdmath "math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/m2skin/internal/config"
	"github.com/Faultbox/m2skin/internal/engine/m2"
	"github.com/Faultbox/m2skin/internal/gltfimport"
	"github.com/Faultbox/m2skin/internal/logger"
	"github.com/Faultbox/m2skin/internal/preview"
	"github.com/Faultbox/m2skin/internal/sample"
	"github.com/Faultbox/m2skin/pkg/math"
	"github.com/Faultbox/m2skin/pkg/names"
)

// Stats summarises a run.
type Stats struct {
	Frames    int
	Instances int
	// Ends counts animation-end callbacks across all instances.
	Ends      int64
	LastOrder []uint16
	Output    string
	Elapsed   time.Duration
}

// Viewer is one playback session.
type Viewer struct {
	cfg *config.Config
	log *zap.Logger

	mesh  m2.Mesh
	main  *m2.Instance
	crowd []*m2.Instance

	eye, forward math.Vec3
	renderer     *preview.Renderer

	ends  atomic.Int64
	stats Stats
}

// New loads the configured asset and prepares the instances.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:     cfg,
		log:     logger.Named("viewer"),
		eye:     math.Vec3FromArray(cfg.Camera.Position),
		forward: math.Vec3FromArray(cfg.Camera.Target).Sub(math.Vec3FromArray(cfg.Camera.Position)).Normalize(),
	}

	mesh, err := v.load()
	if err != nil {
		return nil, err
	}
	v.mesh = mesh

	v.main = v.newInstance(0)
	for i := 0; i < cfg.Crowd.Instances; i++ {
		v.crowd = append(v.crowd, v.newInstance(i+1))
	}

	if cfg.Preview.Output != "" {
		opts := preview.DefaultOptions()
		opts.Width, opts.Height = cfg.Preview.Size, cfg.Preview.Size
		opts.Supersample = cfg.Preview.Supersample
		opts.Eye = v.eye
		opts.Target = math.Vec3FromArray(cfg.Camera.Target)
		opts.FovY = cfg.Camera.FOV * stdmath.Pi / 180
		opts.Logger = logger.Named("preview")
		v.renderer = preview.New(opts)
	}

	v.log.Info("viewer ready",
		zap.String("mesh", v.mesh.Kind().String()),
		zap.Int("submeshes", v.mesh.SubmeshCount()),
		zap.Bool("animated", v.mesh.IsAnimated()),
		zap.Int("crowd", len(v.crowd)))
	return v, nil
}

func (v *Viewer) load() (m2.Mesh, error) {
	if v.cfg.Asset.Path == "" {
		v.log.Info("no asset configured, using the built-in sample")
		return sample.Mesh()
	}
	mesh, err := gltfimport.Open(v.cfg.Asset.Path,
		gltfimport.WithLogger(logger.Named("gltf")),
		gltfimport.WithScale(v.cfg.Asset.Scale))
	if err != nil {
		return nil, fmt.Errorf("loading asset: %w", err)
	}
	return mesh, nil
}

// newInstance applies the playback settings. Crowd members start at
// staggered frames so they do not move in lockstep.
func (v *Viewer) newInstance(n int) *m2.Instance {
	pc := v.cfg.Playback
	opts := []m2.Option{
		m2.WithSubmeshSorting(pc.SortSubmeshes),
		m2.WithLogger(logger.Named("instance").With(zap.Int("instance", n))),
	}
	if pc.AllGeosets {
		opts = append(opts, m2.WithAllGeosets())
	}
	inst := m2.NewInstance(v.mesh, opts...)
	if err := inst.SetSkin(pc.Skin); err != nil {
		v.log.Warn("keeping default skin", zap.Int("instance", n), zap.Error(err))
	}
	inst.SetAnimationSpeed(pc.Speed)
	inst.SetLoopMode(pc.Loop)
	inst.SetTransitionTime(pc.Transition)
	inst.SetAnimationEndCallback(func(*m2.Instance) { v.ends.Add(1) })

	if id, ok := names.AnimationID(v.cfg.Asset.Animation); ok && inst.SetAnimation(id) {
		if n > 0 {
			start, end := inst.Controller().FrameLoop()
			if span := end - start; span > 0 {
				inst.SetCurrentFrame(float32(start + (n*7)%span))
			}
		}
	} else if n == 0 && v.mesh.IsAnimated() {
		v.log.Warn("animation not found, playing the whole timeline",
			zap.String("animation", v.cfg.Asset.Animation))
	}
	return inst
}

// Main returns the rendered instance.
func (v *Viewer) Main() *m2.Instance { return v.main }

// Crowd returns the extra instances.
func (v *Viewer) Crowd() []*m2.Instance { return v.crowd }

// Run plays the configured number of frames and writes the preview.
func (v *Viewer) Run(ctx context.Context) (Stats, error) {
	begin := time.Now()
	step := v.cfg.Preview.Step

	for f := 0; f < v.cfg.Preview.Frames; f++ {
		if err := ctx.Err(); err != nil {
			return v.stats, err
		}
		if err := v.update(ctx, step); err != nil {
			return v.stats, fmt.Errorf("frame %d: %w", f, err)
		}
		v.stats.Frames++
	}

	if v.renderer != nil {
		img := v.renderer.Render(v.main)
		if err := preview.Save(v.cfg.Preview.Output, img); err != nil {
			return v.stats, fmt.Errorf("writing preview: %w", err)
		}
		v.stats.Output = v.cfg.Preview.Output
		v.log.Info("preview written", zap.String("path", v.cfg.Preview.Output))
	}

	v.stats.Instances = 1 + len(v.crowd)
	v.stats.Ends = v.ends.Load()
	v.stats.Elapsed = time.Since(begin)
	v.log.Info("playback finished",
		zap.Int("frames", v.stats.Frames),
		zap.Int("instances", v.stats.Instances),
		zap.Int64("ends", v.stats.Ends),
		zap.Duration("elapsed", v.stats.Elapsed))
	return v.stats, nil
}

// update advances every instance by one step. Crowd instances share the
// mesh read-only and are updated in parallel.
func (v *Viewer) update(ctx context.Context, step time.Duration) error {
	v.main.Update(step)
	order := v.main.SortedDrawOrder(v.eye, v.forward)
	v.stats.LastOrder = order
	if ce := v.log.Check(zap.DebugLevel, "frame"); ce != nil {
		ce.Write(
			zap.Float32("frame", v.main.Frame()),
			zap.Uint16s("order", order))
	}

	if len(v.crowd) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Crowd.Workers)
	for _, inst := range v.crowd {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inst.Update(step)
			inst.SortedDrawOrder(v.eye, v.forward)
			return nil
		})
	}
	return g.Wait()
}
