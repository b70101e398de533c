package geometry

import (
	"math"
	"strconv"
	"strings"
)

// CornerRadius is the nominal radius used when rounding connector corners.
const CornerRadius = 5.0

// SegmentKind identifies a path drawing command.
type SegmentKind int

const (
	MoveTo SegmentKind = iota
	LineTo
	QuadTo
)

// Segment is one drawing command. Ctrl is only meaningful for QuadTo.
type Segment struct {
	Kind SegmentKind
	Ctrl Point
	To   Point
}

// Path is a sequence of drawing commands starting with a MoveTo.
type Path []Segment

// RoundedPath turns a polyline into a path whose interior corners are rounded.
// Each corner is inset along both adjacent segments by min(radius, len1/2, len2/2)
// and joined with a quadratic curve controlled by the corner itself. A corner
// whose effective radius drops below one unit stays sharp.
func RoundedPath(points []Point, radius float64) Path {
	if len(points) == 0 {
		return nil
	}
	path := Path{{Kind: MoveTo, To: points[0]}}
	for i := 1; i < len(points)-1; i++ {
		prev, cur, next := points[i-1], points[i], points[i+1]
		d1 := cur.Sub(prev)
		d2 := next.Sub(cur)
		len1, len2 := d1.Len(), d2.Len()
		r := math.Min(radius, math.Min(len1/2, len2/2))
		if r < 1 {
			path = append(path, Segment{Kind: LineTo, To: cur})
			continue
		}
		start := cur.Sub(d1.Scale(r / len1))
		end := cur.Add(d2.Scale(r / len2))
		path = append(path,
			Segment{Kind: LineTo, To: start},
			Segment{Kind: QuadTo, Ctrl: cur, To: end},
		)
	}
	if len(points) > 1 {
		path = append(path, Segment{Kind: LineTo, To: points[len(points)-1]})
	}
	return path
}

// SVG renders the path as an SVG path data string.
func (p Path) SVG() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch seg.Kind {
		case MoveTo:
			b.WriteString("M " + fmtPoint(seg.To))
		case LineTo:
			b.WriteString("L " + fmtPoint(seg.To))
		case QuadTo:
			b.WriteString("Q " + fmtPoint(seg.Ctrl) + " " + fmtPoint(seg.To))
		}
	}
	return b.String()
}

func fmtPoint(p Point) string {
	return strconv.FormatFloat(p.X, 'f', -1, 64) + " " + strconv.FormatFloat(p.Y, 'f', -1, 64)
}

// Simplify drops consecutive duplicate points and interior points that lie on
// the straight line between their neighbours.
func Simplify(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Eq(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 3 {
		return out
	}
	kept := []Point{out[0]}
	for i := 1; i < len(out)-1; i++ {
		a, b, c := kept[len(kept)-1], out[i], out[i+1]
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if Near(cross, 0) && between(a, b, c) {
			continue
		}
		kept = append(kept, b)
	}
	return append(kept, out[len(out)-1])
}

// between reports whether b lies within the box spanned by a and c.
func between(a, b, c Point) bool {
	return b.X >= math.Min(a.X, c.X)-Epsilon && b.X <= math.Max(a.X, c.X)+Epsilon &&
		b.Y >= math.Min(a.Y, c.Y)-Epsilon && b.Y <= math.Max(a.Y, c.Y)+Epsilon
}
