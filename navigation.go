package main

import "flowlane/pkg/geometry"

// handlePan scrolls the view. Each press moves panStep cells, or twice that
// with shift+arrow. Capital L adds a lane, so shift+hjkl does not pan.
func (m *model) handlePan(key string) {
	c := m.config.Canvas
	dx := float64(panStep*m.getMoveSpeed(key)) * c.Width
	dy := float64(panStep*m.getMoveSpeed(key)) * c.Height
	switch key {
	case "h", "left", "shift+left":
		m.doc.view.PanBy(dx, 0)
	case "l", "right", "shift+right":
		m.doc.view.PanBy(-dx, 0)
	case "k", "up", "shift+up":
		m.doc.view.PanBy(0, dy)
	case "j", "down", "shift+down":
		m.doc.view.PanBy(0, -dy)
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// handleZoom steps the zoom anchored at the middle of the canvas.
func (m *model) handleZoom(notches int) {
	m.doc.machine.Wheel(m.centerScreen(), notches)
}

// resetView returns to 100% with the diagram's top-left corner in view.
func (m *model) resetView() {
	*m.doc.view = geometry.NewViewport()
}
