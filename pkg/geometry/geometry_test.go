package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectContainsIncludesEdges(t *testing.T) {
	r := NewRect(Pt(10, 20), Sz(100, 50))
	assert.True(t, r.Contains(Pt(10, 20)))
	assert.True(t, r.Contains(Pt(110, 70)))
	assert.True(t, r.Contains(r.Center()))
	assert.False(t, r.Contains(Pt(110.5, 40)))
	assert.False(t, r.Contains(Pt(50, 19)))
}

func TestRoundedPathCorners(t *testing.T) {
	points := []Point{Pt(0, 0), Pt(100, 0), Pt(100, 100)}
	path := RoundedPath(points, CornerRadius)

	require.Len(t, path, 4)
	assert.Equal(t, MoveTo, path[0].Kind)
	assert.Equal(t, Segment{Kind: LineTo, To: Pt(95, 0)}, path[1])
	assert.Equal(t, Segment{Kind: QuadTo, Ctrl: Pt(100, 0), To: Pt(100, 5)}, path[2])
	assert.Equal(t, Segment{Kind: LineTo, To: Pt(100, 100)}, path[3])
	assert.Equal(t, "M 0 0 L 95 0 Q 100 0 100 5 L 100 100", path.SVG())
}

func TestRoundedPathShortSegments(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   Path
	}{
		{
			name:   "radius limited by half segment",
			points: []Point{Pt(0, 0), Pt(6, 0), Pt(6, 50)},
			want: Path{
				{Kind: MoveTo, To: Pt(0, 0)},
				{Kind: LineTo, To: Pt(3, 0)},
				{Kind: QuadTo, Ctrl: Pt(6, 0), To: Pt(6, 3)},
				{Kind: LineTo, To: Pt(6, 50)},
			},
		},
		{
			name:   "sub-unit radius stays sharp",
			points: []Point{Pt(0, 0), Pt(1, 0), Pt(1, 40)},
			want: Path{
				{Kind: MoveTo, To: Pt(0, 0)},
				{Kind: LineTo, To: Pt(1, 0)},
				{Kind: LineTo, To: Pt(1, 40)},
			},
		},
		{
			name:   "zero length segment stays sharp",
			points: []Point{Pt(0, 0), Pt(0, 0), Pt(20, 0)},
			want: Path{
				{Kind: MoveTo, To: Pt(0, 0)},
				{Kind: LineTo, To: Pt(0, 0)},
				{Kind: LineTo, To: Pt(20, 0)},
			},
		},
		{
			name:   "straight line",
			points: []Point{Pt(0, 0), Pt(20, 0)},
			want: Path{
				{Kind: MoveTo, To: Pt(0, 0)},
				{Kind: LineTo, To: Pt(20, 0)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundedPath(tt.points, CornerRadius))
		})
	}
}

func TestSimplify(t *testing.T) {
	got := Simplify([]Point{Pt(180, 130), Pt(290, 130), Pt(290, 130), Pt(400, 130)})
	assert.Equal(t, []Point{Pt(180, 130), Pt(400, 130)}, got)

	// A backtracking bend is not collinear-between and must survive.
	got = Simplify([]Point{Pt(0, 0), Pt(50, 0), Pt(20, 0)})
	assert.Equal(t, []Point{Pt(0, 0), Pt(50, 0), Pt(20, 0)}, got)

	z := []Point{Pt(0, 0), Pt(50, 0), Pt(50, 40), Pt(100, 40)}
	assert.Equal(t, z, Simplify(z))
}

func TestDistanceToSegment(t *testing.T) {
	assert.InDelta(t, 5.0, DistanceToSegment(Pt(50, 5), Pt(0, 0), Pt(100, 0)), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Pt(-3, 4), Pt(0, 0), Pt(100, 0)), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Pt(3, 4), Pt(0, 0), Pt(0, 0)), 1e-9)
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Pan: Pt(30, -12), Scale: 2.5}
	p := Pt(123.5, -40)
	back := v.ToCanvas(v.ToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.Equal(t, Pt(30+123.5*2.5, -12-100), v.ToScreen(p))
}

func TestZoomKeepsAnchorStationary(t *testing.T) {
	v := Viewport{Pan: Pt(40, 25), Scale: 1.3}
	anchor := Pt(317, 211)
	before := v.ToCanvas(anchor)

	for i := 0; i < 7; i++ {
		v.ZoomAt(anchor, ZoomStep)
		after := v.ToScreen(before)
		assert.InDelta(t, anchor.X, after.X, 1e-6)
		assert.InDelta(t, anchor.Y, after.Y, 1e-6)
	}
	for i := 0; i < 30; i++ {
		v.ZoomAt(anchor, -ZoomStep)
	}
	assert.InDelta(t, MinZoom, v.Scale, 1e-9)
	after := v.ToScreen(before)
	assert.InDelta(t, anchor.X, after.X, 1e-6)
	assert.InDelta(t, anchor.Y, after.Y, 1e-6)
}

func TestZoomClampsToMax(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 100; i++ {
		v.ZoomAt(Pt(0, 0), ZoomStep)
	}
	assert.Equal(t, MaxZoom, v.Scale)
	assert.Equal(t, 500, v.Zoom())
}

func TestAffineInverse(t *testing.T) {
	tr := Translation(5, 7).Compose(Scaling(3))
	inv, ok := tr.Inverse()
	require.True(t, ok)
	p := inv.Apply(tr.Apply(Pt(2, -9)))
	assert.InDelta(t, 2.0, p.X, 1e-9)
	assert.InDelta(t, -9.0, p.Y, 1e-9)

	_, ok = Scaling(0).Inverse()
	assert.False(t, ok)
}

func TestTolerantEquality(t *testing.T) {
	assert.True(t, Pt(1, 2).Eq(Pt(1+Epsilon/2, 2-Epsilon/2)))
	assert.False(t, Pt(1, 2).Eq(Pt(1+2*Epsilon, 2)))
	assert.True(t, Near(0.1+0.2, 0.3))
	assert.False(t, Near(0.3, 0.31))
}
