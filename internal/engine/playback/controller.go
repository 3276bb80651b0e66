// Package playback advances an animation frame over a frame-loop window.
package playback

import (
	stdmath "math"
	"time"
)

// DefaultRate is the playback rate in frames per second.
const DefaultRate = 25

// Controller tracks the current frame of one instance. The zero value is
// not usable; call New.
type Controller struct {
	frame      float32
	start, end int
	// frameCount bounds the window; <= 0 means unbounded.
	frameCount int
	rate       float32
	loop       bool
	endFired   bool

	transition time.Duration
	blending   bool
	weight     float32

	onEnd        func()
	onTransition func()
}

// New returns a looping controller over [0, frameCount-1] at DefaultRate.
func New(frameCount int) *Controller {
	c := &Controller{
		frameCount: frameCount,
		rate:       DefaultRate,
		loop:       true,
	}
	c.start, c.end = 0, c.maxFrame()
	if frameCount <= 0 {
		c.end = 0
	}
	c.frame = float32(c.start)
	return c
}

func (c *Controller) maxFrame() int {
	if c.frameCount <= 0 {
		return stdmath.MaxInt32
	}
	return c.frameCount - 1
}

// OnEnd registers fn to run once each time a non-looping window reaches
// its boundary.
func (c *Controller) OnEnd(fn func()) { c.onEnd = fn }

// OnTransition registers fn to run when a blend transition starts, before
// the frame changes take effect. The owner saves its pose there.
func (c *Controller) OnTransition(fn func()) { c.onTransition = fn }

// Frame returns the current frame.
func (c *Controller) Frame() float32 { return c.frame }

// FrameLoop returns the current window.
func (c *Controller) FrameLoop() (start, end int) { return c.start, c.end }

// Rate returns the signed playback rate in frames per second.
func (c *Controller) Rate() float32 { return c.rate }

// Looping reports whether the window wraps.
func (c *Controller) Looping() bool { return c.loop }

// Static reports whether the window holds a single frame.
func (c *Controller) Static() bool { return c.start == c.end }

// SetFrameCount changes the bound used by SetFrameLoop.
func (c *Controller) SetFrameCount(n int) { c.frameCount = n }

// SetFrameLoop sets the window. Inverted bounds are swapped, both bounds
// are clamped to the frame count, and the current frame moves to the
// start (or the end when playing backwards).
func (c *Controller) SetFrameLoop(start, end int) {
	if end < start {
		start, end = end, start
	}
	hi := c.maxFrame()
	c.start = clampInt(start, 0, hi)
	c.end = clampInt(end, c.start, hi)
	c.endFired = false
	if c.rate < 0 {
		c.SetCurrentFrame(float32(c.end))
	} else {
		c.SetCurrentFrame(float32(c.start))
	}
}

// SetCurrentFrame jumps to frame, clamped into the window, and starts a
// transition when one is configured. Landing on the boundary that was
// already reported does not re-arm the end callback.
func (c *Controller) SetCurrentFrame(frame float32) {
	c.beginTransition()
	c.frame = clamp(frame, float32(c.start), float32(c.end))
	if !c.atBoundary() {
		c.endFired = false
	}
}

// atBoundary reports whether the frame sits on the edge a non-looping
// window stops at for the current direction.
func (c *Controller) atBoundary() bool {
	if c.rate < 0 {
		return c.frame <= float32(c.start)
	}
	return c.frame >= float32(c.end)
}

// SetAnimationSpeed sets the signed rate in frames per second.
func (c *Controller) SetAnimationSpeed(fps float32) {
	if (fps < 0) != (c.rate < 0) {
		c.endFired = false
	}
	c.rate = fps
}

// SetLoopMode toggles looping.
func (c *Controller) SetLoopMode(loop bool) {
	if loop == c.loop {
		return
	}
	c.loop = loop
	c.endFired = false
}

// SetTransitionTime sets the blend duration used when the frame jumps.
// Zero disables transitions.
func (c *Controller) SetTransitionTime(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.transition = d
	if d == 0 {
		c.blending = false
		c.weight = 0
	}
}

// TransitionTime returns the configured blend duration.
func (c *Controller) TransitionTime() time.Duration { return c.transition }

// Blend returns the transition weight and whether a transition is running.
// Weight rises from 0 toward 1.
func (c *Controller) Blend() (weight float32, active bool) {
	return c.weight, c.blending
}

// beginTransition restarts the blend. The owner snapshots its pose while
// the previous weight is still in effect.
func (c *Controller) beginTransition() {
	if c.transition > 0 && c.onTransition != nil {
		c.onTransition()
	}
	c.weight = 0
	c.blending = c.transition > 0
}

// Advance moves the frame by elapsed wall time. It reports whether the
// end of a non-looping window was reached during this step.
func (c *Controller) Advance(elapsed time.Duration) bool {
	ms := float32(elapsed.Seconds() * 1000)

	if c.blending {
		c.weight += ms / float32(c.transition.Seconds()*1000)
		if c.weight >= 1 {
			c.blending = false
			c.weight = 0
		}
	}

	if c.start == c.end {
		c.frame = float32(c.start)
		return false
	}

	start, end := float32(c.start), float32(c.end)
	c.frame += ms * c.rate / 1000

	if c.loop {
		if c.frame < start || c.frame >= end {
			c.frame = start + posMod(c.frame-start, end-start)
		}
		return false
	}

	var ended bool
	switch {
	case c.rate > 0 && c.frame >= end:
		c.frame = end
		ended = true
	case c.rate < 0 && c.frame <= start:
		c.frame = start
		ended = true
	default:
		c.frame = clamp(c.frame, start, end)
		if c.frame > start && c.frame < end {
			c.endFired = false
		}
	}
	if !ended || c.endFired {
		return false
	}
	c.endFired = true
	if c.onEnd != nil {
		c.onEnd()
	}
	return true
}

func posMod(x, period float32) float32 {
	m := float32(stdmath.Mod(float64(x), float64(period)))
	if m < 0 {
		m += period
	}
	// Rounding can land exactly on period for tiny negative x.
	if m >= period {
		m = 0
	}
	return m
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
