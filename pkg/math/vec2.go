package math

import "math"

// Vec2 is a 2D vector (texture coordinates, screen-plane extents).
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Min returns the component-wise minimum.
func (v Vec2) Min(other Vec2) Vec2 {
	return Vec2{min(v.X, other.X), min(v.Y, other.Y)}
}

// Max returns the component-wise maximum.
func (v Vec2) Max(other Vec2) Vec2 {
	return Vec2{max(v.X, other.X), max(v.Y, other.Y)}
}

// Rect is an axis-aligned rectangle in a 2D plane.
type Rect struct {
	Min, Max Vec2
}

// EmptyRect returns an inverted rectangle that grows to fit the first point.
func EmptyRect() Rect {
	inf := float32(math.Inf(1))
	return Rect{Min: Vec2{inf, inf}, Max: Vec2{-inf, -inf}}
}

// Extend grows the rectangle to include p.
func (r Rect) Extend(p Vec2) Rect {
	return Rect{Min: r.Min.Min(p), Max: r.Max.Max(p)}
}

// Empty reports whether no point has been added.
func (r Rect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Encloses reports whether other lies entirely inside r (edges inclusive).
func (r Rect) Encloses(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return other.Min.X >= r.Min.X && other.Max.X <= r.Max.X &&
		other.Min.Y >= r.Min.Y && other.Max.Y <= r.Max.Y
}
