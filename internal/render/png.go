package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

// PNGOptions configures PNG export.
type PNGOptions struct {
	Scale    float64 `yaml:"scale"`
	Padding  float64 `yaml:"padding"`
	FontSize float64 `yaml:"font_size"`
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Scale: 2, Padding: 50, FontSize: 12}
}

var (
	colorInk      = color.RGBA{51, 51, 51, 255}
	colorShape    = color.RGBA{255, 255, 255, 255}
	colorHeader   = color.RGBA{240, 240, 240, 255}
	colorStart    = color.RGBA{232, 245, 233, 255}
	colorEnd      = color.RGBA{255, 235, 238, 255}
	colorGateway  = color.RGBA{255, 248, 225, 255}
	colorLabelInk = color.RGBA{102, 102, 102, 255}
)

const (
	arrowSize    = 8.0
	taskRadius   = 8.0
	labelSpacing = 1.3
	// maxPNGSide bounds each image side, in pixels.
	maxPNGSide   = 16384
)

// painter draws shapes in canvas units through the context matrix. Line
// widths and dashes are stroked in device pixels, so they are scaled by hand.
// Text is drawn in device space with a face sized for the output scale.
type painter struct {
	dc    *gg.Context
	scale float64
}

func (p *painter) lineWidth(w float64) {
	p.dc.SetLineWidth(w * p.scale)
}

// inDevice runs draw with the identity matrix at the device position of (x, y).
func (p *painter) inDevice(x, y float64, draw func(dx, dy float64)) {
	tx, ty := p.dc.TransformPoint(x, y)
	p.dc.Push()
	p.dc.Identity()
	draw(tx, ty)
	p.dc.Pop()
}

// PNG draws the whole diagram onto a transparent image and encodes it to w.
func PNG(w io.Writer, s *diagram.Store, opt PNGOptions) error {
	dc, err := drawPNG(s, opt)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG writes the PNG export to path.
func SavePNG(path string, s *diagram.Store, opt PNGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := PNG(f, s, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawPNG(s *diagram.Store, opt PNGOptions) (*gg.Context, error) {
	b, ok := Bounds(s)
	if !ok {
		return nil, ErrEmpty
	}
	def := DefaultPNGOptions()
	if opt.Scale <= 0 {
		opt.Scale = def.Scale
	}
	if opt.Padding < 0 {
		opt.Padding = def.Padding
	}
	if opt.FontSize <= 0 {
		opt.FontSize = def.FontSize
	}

	w := math.Ceil((b.Width + 2*opt.Padding) * opt.Scale)
	h := math.Ceil((b.Height + 2*opt.Padding) * opt.Scale)
	if w > maxPNGSide || h > maxPNGSide {
		return nil, fmt.Errorf("%w: %.0fx%.0f pixels", ErrTooLarge, w, h)
	}
	width, height := int(w), int(h)
	dc := gg.NewContext(width, height)

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    opt.FontSize * opt.Scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	dc.Scale(opt.Scale, opt.Scale)
	dc.Translate(opt.Padding-b.X, opt.Padding-b.Y)
	p := &painter{dc: dc, scale: opt.Scale}

	for _, pool := range s.Pools() {
		p.pool(pool)
	}
	for _, c := range s.Connections() {
		if r, ok := s.Route(c.ID); ok {
			p.connection(r, c.Style)
		}
	}
	for _, n := range s.Nodes() {
		p.node(n)
	}
	return dc, nil
}

func (p *painter) pool(pool *diagram.Pool) {
	dc := p.dc
	b := pool.Bounds()
	headerX := b.X + diagram.PoolHeaderWidth
	laneX := headerX + diagram.LaneHeaderWidth

	dc.DrawRectangle(b.X, b.Y, diagram.PoolHeaderWidth, b.Height)
	dc.SetColor(colorHeader)
	dc.Fill()
	for i := range pool.Lanes {
		band := pool.LaneBand(i)
		dc.DrawRectangle(headerX, band.Y, diagram.LaneHeaderWidth, band.Height)
	}
	dc.Fill()

	dc.SetColor(colorInk)
	p.lineWidth(1.5)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	dc.Stroke()
	p.lineWidth(1)
	dc.DrawLine(headerX, b.Y, headerX, b.Bottom())
	dc.DrawLine(laneX, b.Y, laneX, b.Bottom())
	dc.Stroke()
	for i := 1; i < len(pool.Lanes); i++ {
		y := pool.LaneTop(i)
		dc.DrawLine(headerX, y, b.Right(), y)
	}
	dc.Stroke()

	p.rotated(pool.Name, b.X+diagram.PoolHeaderWidth/2, b.Y+b.Height/2)
	for i, l := range pool.Lanes {
		band := pool.LaneBand(i)
		p.rotated(l.Name, headerX+diagram.LaneHeaderWidth/2, band.Y+band.Height/2)
	}
}

// rotated draws text reading bottom to top, centered on (x, y).
func (p *painter) rotated(text string, x, y float64) {
	if text == "" {
		return
	}
	p.inDevice(x, y, func(dx, dy float64) {
		p.dc.RotateAbout(-math.Pi/2, dx, dy)
		p.dc.SetColor(colorInk)
		p.dc.DrawStringAnchored(text, dx, dy, 0.5, 0.35)
	})
}

func (p *painter) connection(r diagram.Route, style diagram.Style) {
	dc := p.dc
	dc.NewSubPath()
	for _, seg := range r.Path {
		switch seg.Kind {
		case geometry.MoveTo:
			dc.MoveTo(seg.To.X, seg.To.Y)
		case geometry.LineTo:
			dc.LineTo(seg.To.X, seg.To.Y)
		case geometry.QuadTo:
			dc.QuadraticTo(seg.Ctrl.X, seg.Ctrl.Y, seg.To.X, seg.To.Y)
		}
	}
	dc.SetColor(colorInk)
	p.lineWidth(1.5)
	if style == diagram.StyleDashed {
		dc.SetDash(6*p.scale, 4*p.scale)
	}
	dc.Stroke()
	dc.SetDash()

	if n := len(r.Points); n >= 2 {
		p.arrow(r.Points[n-2], r.Points[n-1])
	}
	if r.Label != nil {
		p.inDevice(r.Label.Position.X, r.Label.Position.Y, func(dx, dy float64) {
			dc.SetColor(colorLabelInk)
			dc.DrawStringAnchored(r.Label.Text, dx, dy, 0.5, 0.5)
		})
	}
}

// arrow fills a triangle whose tip sits on to, pointing away from from.
func (p *painter) arrow(from, to geometry.Point) {
	d := to.Sub(from)
	length := d.Len()
	if length < 0.1 {
		return
	}
	dx, dy := d.X/length, d.Y/length
	half := arrowSize / 2
	dc := p.dc
	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-arrowSize*dx+half*dy, to.Y-arrowSize*dy-half*dx)
	dc.LineTo(to.X-arrowSize*dx-half*dy, to.Y-arrowSize*dy+half*dx)
	dc.ClosePath()
	dc.SetColor(colorInk)
	dc.Fill()
}

func (p *painter) node(n *diagram.Node) {
	dc := p.dc
	b := n.Bounds()
	c := b.Center()
	p.lineWidth(1.5)

	switch n.Type.Category() {
	case diagram.CategoryEvent:
		rx, ry := b.Width/2, b.Height/2
		fill := color.Color(colorShape)
		switch n.Type {
		case diagram.StartEvent:
			fill = colorStart
		case diagram.EndEvent:
			fill = colorEnd
			p.lineWidth(3)
		}
		dc.DrawEllipse(c.X, c.Y, rx, ry)
		p.fillStroke(fill)
		if n.Type == diagram.IntermediateEvent {
			p.lineWidth(1)
			dc.DrawEllipse(c.X, c.Y, rx-3, ry-3)
			dc.Stroke()
		}
		p.caption(n.Label, c.X, b.Bottom()+4, b.Width*2)

	case diagram.CategoryGateway:
		dc.MoveTo(c.X, b.Y)
		dc.LineTo(b.Right(), c.Y)
		dc.LineTo(c.X, b.Bottom())
		dc.LineTo(b.X, c.Y)
		dc.ClosePath()
		p.fillStroke(colorGateway)
		q := math.Min(b.Width, b.Height) / 6
		p.lineWidth(3)
		if n.Type == diagram.ParallelGateway {
			dc.DrawLine(c.X-q, c.Y, c.X+q, c.Y)
			dc.DrawLine(c.X, c.Y-q, c.X, c.Y+q)
		} else {
			dc.DrawLine(c.X-q, c.Y-q, c.X+q, c.Y+q)
			dc.DrawLine(c.X-q, c.Y+q, c.X+q, c.Y-q)
		}
		dc.Stroke()
		p.caption(n.Label, c.X, b.Bottom()+4, b.Width*2)

	case diagram.CategoryData:
		fold := math.Min(b.Width, b.Height) / 4
		dc.MoveTo(b.X, b.Y)
		dc.LineTo(b.Right()-fold, b.Y)
		dc.LineTo(b.Right(), b.Y+fold)
		dc.LineTo(b.Right(), b.Bottom())
		dc.LineTo(b.X, b.Bottom())
		dc.ClosePath()
		p.fillStroke(colorShape)
		dc.MoveTo(b.Right()-fold, b.Y)
		dc.LineTo(b.Right()-fold, b.Y+fold)
		dc.LineTo(b.Right(), b.Y+fold)
		dc.Stroke()
		p.caption(n.Label, c.X, b.Bottom()+4, b.Width*2)

	case diagram.CategorySystem:
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		p.fillStroke(colorShape)
		p.lineWidth(1)
		dc.DrawLine(b.X+6, b.Y, b.X+6, b.Bottom())
		dc.DrawLine(b.Right()-6, b.Y, b.Right()-6, b.Bottom())
		dc.Stroke()
		p.wrapped(n.Label, c, b.Width-16)

	default:
		dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, taskRadius)
		p.fillStroke(colorShape)
		p.wrapped(n.Label, c, b.Width-10)
	}
}

func (p *painter) fillStroke(fill color.Color) {
	p.dc.SetColor(fill)
	p.dc.FillPreserve()
	p.dc.SetColor(colorInk)
	p.dc.Stroke()
}

// wrapped centers text inside a shape, breaking lines at width.
func (p *painter) wrapped(text string, c geometry.Point, width float64) {
	if text == "" {
		return
	}
	p.inDevice(c.X, c.Y, func(dx, dy float64) {
		p.dc.SetColor(colorInk)
		p.dc.DrawStringWrapped(text, dx, dy, 0.5, 0.5, width*p.scale, labelSpacing, gg.AlignCenter)
	})
}

// caption hangs text below a shape.
func (p *painter) caption(text string, x, top, width float64) {
	if text == "" {
		return
	}
	p.inDevice(x, top, func(dx, dy float64) {
		p.dc.SetColor(colorInk)
		p.dc.DrawStringWrapped(text, dx, dy, 0.5, 0, width*p.scale, labelSpacing, gg.AlignCenter)
	})
}
