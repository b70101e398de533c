package geometry

import "math"

const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	ZoomStep = 0.1
)

// Viewport maps canvas space to screen space: screen = canvas*Scale + Pan.
type Viewport struct {
	Pan   Point
	Scale float64
}

// NewViewport returns an unpanned viewport at 100% zoom.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

// Transform returns the canvas-to-screen transform.
func (v Viewport) Transform() AffineTransform {
	return Translation(v.Pan.X, v.Pan.Y).Compose(Scaling(v.Scale))
}

// ToScreen converts a canvas point to screen pixels.
func (v Viewport) ToScreen(p Point) Point {
	return v.Transform().Apply(p)
}

// ToCanvas converts a screen pixel position to canvas space.
func (v Viewport) ToCanvas(p Point) Point {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// PanBy shifts the view by a raw screen delta. The delta is not scaled.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

// ZoomAt changes the scale by delta, clamped to [MinZoom, MaxZoom], keeping the
// canvas point under the screen position anchor visually stationary.
func (v *Viewport) ZoomAt(anchor Point, delta float64) {
	canvasPt := v.ToCanvas(anchor)
	scale := math.Min(math.Max(MinZoom, v.Scale+delta), MaxZoom)
	// Snap away float drift from repeated 0.1 steps.
	scale = math.Round(scale*1000) / 1000
	v.Pan = Point{
		X: anchor.X - canvasPt.X*scale,
		Y: anchor.Y - canvasPt.Y*scale,
	}
	v.Scale = scale
}

// Zoom returns the scale as a whole percentage.
func (v Viewport) Zoom() int {
	return int(math.Round(v.Scale * 100))
}
