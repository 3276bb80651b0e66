package keyframe

// Clock carries the time inputs of one evaluation pass.
type Clock struct {
	// Frame is the animation frame shared by every ordinary track.
	Frame float32
	// Global is the free-running time in frames since the instance started.
	Global float32
	// Sequences holds the length of each global sequence.
	Sequences []float32
}

// At returns a clock for frame with no global sequences.
func At(frame float32) Clock {
	return Clock{Frame: frame}
}

// TimeFor returns the time a track bound to seq should be evaluated at.
// Tracks bound to a global sequence loop over its length independently
// of the current animation.
func (c Clock) TimeFor(seq int) float32 {
	if seq < 0 || seq >= len(c.Sequences) {
		return c.Frame
	}
	length := c.Sequences[seq]
	if length <= 0 {
		return 0
	}
	t := c.Global - length*float32(int64(c.Global/length))
	if t < 0 {
		t += length
	}
	return t
}
