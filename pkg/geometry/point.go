// Package geometry provides the point, rectangle, path and transform types
// shared by the diagram model, the router and the renderers.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Epsilon is the tolerance used when comparing canvas coordinates.
const Epsilon = 1e-6

// Point represents a 2D point in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Len returns the length of p treated as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Len()
}

// Eq reports whether both coordinates are within Epsilon.
func (p Point) Eq(other Point) bool {
	return scalar.EqualWithinAbs(p.X, other.X, Epsilon) &&
		scalar.EqualWithinAbs(p.Y, other.Y, Epsilon)
}

// Mid returns the point halfway between a and b.
func Mid(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Near reports whether a and b are equal within Epsilon.
func Near(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, Epsilon)
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}
