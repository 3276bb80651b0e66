// Package keyframe evaluates time-indexed animation tracks.
package keyframe

import (
	"sort"

	"github.com/Faultbox/m2skin/pkg/math"
)

// Mode selects how values between two keys are blended.
type Mode uint8

// Interpolation modes.
const (
	None    Mode = iota // step: hold the earlier key
	Linear              // lerp, slerp for rotations
	Hermite             // cubic with per-key tangents
	Bezier              // cubic with per-key control points
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	case Bezier:
		return "bezier"
	}
	return "unknown"
}

// NoGlobalSequence marks a track that follows the animation frame.
const NoGlobalSequence = -1

// Value is the set of types a track can carry.
type Value interface {
	math.Vec3 | math.Quat | float32
}

// Key is one sample. InTan and OutTan are only read by Hermite and
// Bezier tracks.
type Key[T Value] struct {
	Time   float32
	Value  T
	InTan  T
	OutTan T
}

// Track is a sequence of keys sorted by non-decreasing time.
type Track[T Value] struct {
	Keys []Key[T]
	Mode Mode
	// GlobalSequence indexes Clock.Sequences, or NoGlobalSequence.
	GlobalSequence int
}

// NewTrack returns a track that follows the animation frame.
func NewTrack[T Value](mode Mode, keys ...Key[T]) Track[T] {
	return Track[T]{Keys: keys, Mode: mode, GlobalSequence: NoGlobalSequence}
}

// Len returns the number of keys.
func (tr *Track[T]) Len() int {
	return len(tr.Keys)
}

// Animated reports whether the track can change over time.
func (tr *Track[T]) Animated() bool {
	return len(tr.Keys) > 1
}

// Sample evaluates the track at the time the clock assigns to it.
func (tr *Track[T]) Sample(c Clock, hint *int, def T) T {
	return tr.Evaluate(c.TimeFor(tr.GlobalSequence), hint, def)
}

// Evaluate returns the track value at time. hint may be nil; when set it
// holds the index of the key found by the previous call and is updated.
// Times outside the key range clamp to the first or last key. A track
// with no keys returns def.
func (tr *Track[T]) Evaluate(time float32, hint *int, def T) T {
	keys := tr.Keys
	n := len(keys)
	switch {
	case n == 0:
		return def
	case n == 1 || time <= keys[0].Time:
		setHint(hint, 0)
		return keys[0].Value
	case time >= keys[n-1].Time:
		setHint(hint, n-1)
		return keys[n-1].Value
	}

	i := locate(keys, time, hint)
	setHint(hint, i)

	k0, k1 := &keys[i], &keys[i+1]
	if k0.Time == time || tr.Mode == None {
		return k0.Value
	}
	t := (time - k0.Time) / (k1.Time - k0.Time)
	return blend(tr.Mode, k0, k1, t)
}

// locate returns i such that keys[i].Time <= time < keys[i+1].Time.
// Callers guarantee keys[0].Time < time < keys[len-1].Time.
func locate[T Value](keys []Key[T], time float32, hint *int) int {
	if hint != nil {
		h := *hint
		// Playback usually stays in the same segment or moves to the next.
		for _, i := range [2]int{h, h + 1} {
			if i >= 0 && i+1 < len(keys) && keys[i].Time <= time && time < keys[i+1].Time {
				return i
			}
		}
	}
	return sort.Search(len(keys), func(j int) bool { return keys[j].Time > time }) - 1
}

func setHint(hint *int, i int) {
	if hint != nil {
		*hint = i
	}
}

func blend[T Value](mode Mode, k0, k1 *Key[T], t float32) T {
	switch a := any(k0.Value).(type) {
	case math.Quat:
		// Rotations use slerp for every blended mode.
		b := any(k1.Value).(math.Quat)
		return any(a.Slerp(b, t)).(T)
	case math.Vec3:
		b := any(k1.Value).(math.Vec3)
		out := any(k0.OutTan).(math.Vec3)
		in := any(k1.InTan).(math.Vec3)
		switch mode {
		case Hermite:
			return any(math.Hermite(a, out, in, b, t)).(T)
		case Bezier:
			return any(math.Bezier(a, out, in, b, t)).(T)
		}
		return any(a.Lerp(b, t)).(T)
	case float32:
		b := any(k1.Value).(float32)
		out := any(k0.OutTan).(float32)
		in := any(k1.InTan).(float32)
		switch mode {
		case Hermite:
			return any(math.Hermite(math.V3(a, 0, 0), math.V3(out, 0, 0), math.V3(in, 0, 0), math.V3(b, 0, 0), t).X).(T)
		case Bezier:
			return any(math.Bezier(math.V3(a, 0, 0), math.V3(out, 0, 0), math.V3(in, 0, 0), math.V3(b, 0, 0), t).X).(T)
		}
		return any(math.Lerp(a, b, t)).(T)
	}
	return k0.Value
}
