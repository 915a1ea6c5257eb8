// Package testutil provides shared test utilities and fixtures.
//
// Geometry fixtures are described in metres around a fixed Paris origin and
// converted to (lon, lat) line strings, so tests can state shapes the way the
// classifier thresholds are stated.
package testutil

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/geo"
)

// Origin is the reference point for all fixtures (Hôtel de Ville).
var Origin = orb.Point{2.3522, 48.8566}

// Frame returns the metric projection around Origin.
func Frame() geo.LocalFrame {
	return geo.NewLocalFrame(Origin)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Line converts metric offsets from Origin into a line string.
func Line(pts ...r2.Point) orb.LineString {
	f := Frame()
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = f.Unproject(p)
	}
	return ls
}

// Segment is a two-vertex line between two metric offsets.
func Segment(x1, y1, x2, y2 float64) orb.LineString {
	return Line(r2.Point{X: x1, Y: y1}, r2.Point{X: x2, Y: y2})
}

// Axes returns unit vectors along and across a compass heading.
func Axes(headingDeg float64) (along, across r2.Point) {
	h := headingDeg * math.Pi / 180
	along = r2.Point{X: math.Sin(h), Y: math.Cos(h)}
	return along, along.Ortho()
}

// Ellipse is a closed ring with the given total vertex count (the closing
// vertex repeats the first). semiX runs east, semiY north.
func Ellipse(center r2.Point, semiX, semiY float64, vertices int) orb.LineString {
	n := vertices - 1
	pts := make([]r2.Point, 0, vertices)
	for k := 0; k < n; k++ {
		a := 2 * math.Pi * float64(k) / float64(n)
		pts = append(pts, r2.Point{X: center.X + semiX*math.Cos(a), Y: center.Y + semiY*math.Sin(a)})
	}
	pts = append(pts, pts[0])
	return Line(pts...)
}

// corners returns the rectangle corners in ring order, starting with the
// first long side.
func corners(center r2.Point, length, width, headingDeg float64) [4]r2.Point {
	u, v := Axes(headingDeg)
	hu, hv := u.Mul(length/2), v.Mul(width/2)
	return [4]r2.Point{
		center.Sub(hu).Sub(hv),
		center.Add(hu).Sub(hv),
		center.Add(hu).Add(hv),
		center.Sub(hu).Add(hv),
	}
}

// Rectangle draws a closed rectangular outline as a single polyline. Five
// vertices give the four corners plus closure; seven add a midpoint on each
// long side, matching the two bench drawings found in the dataset.
func Rectangle(center r2.Point, length, width, headingDeg float64, vertices int) orb.LineString {
	c := corners(center, length, width, headingDeg)
	switch vertices {
	case 7:
		m01 := c[0].Add(c[1]).Mul(0.5)
		m23 := c[2].Add(c[3]).Mul(0.5)
		return Line(c[0], m01, c[1], c[2], m23, c[3], c[0])
	default:
		return Line(c[0], c[1], c[2], c[3], c[0])
	}
}

// RectangleSides returns the four sides of a rectangle as separate
// two-vertex segments: long, short, long, short.
func RectangleSides(center r2.Point, length, width, headingDeg float64) []orb.LineString {
	c := corners(center, length, width, headingDeg)
	return []orb.LineString{
		Line(c[0], c[1]),
		Line(c[1], c[2]),
		Line(c[2], c[3]),
		Line(c[3], c[0]),
	}
}

// Backrest returns a straight line parallel to one long side of the
// rectangle, offset inward by offset metres. side selects the long side
// (0 or 1). vertices ≥ 2 spreads evenly spaced points along the line.
func Backrest(center r2.Point, length, width, headingDeg, offset float64, side, vertices int) orb.LineString {
	u, v := Axes(headingDeg)
	sign := -1.0
	if side == 1 {
		sign = 1
	}
	base := center.Add(v.Mul(sign * (width/2 - offset)))
	start := base.Sub(u.Mul(length / 2))

	if vertices < 2 {
		vertices = 2
	}
	pts := make([]r2.Point, vertices)
	for i := range pts {
		pts[i] = start.Add(u.Mul(length * float64(i) / float64(vertices-1)))
	}
	return Line(pts...)
}

// Component builds a furniture component and fails the test on error.
func Component(t testing.TB, id int64, partition int, ls orb.LineString) *furniture.Component {
	t.Helper()
	c, err := furniture.NewComponent(id, partition, ls)
	if err != nil {
		t.Fatalf("NewComponent(%d): %v", id, err)
	}
	return c
}

// Components builds consecutive components starting at firstID.
func Components(t testing.TB, firstID int64, partition int, lines ...orb.LineString) []*furniture.Component {
	t.Helper()
	out := make([]*furniture.Component, len(lines))
	for i, ls := range lines {
		out[i] = Component(t, firstID+int64(i), partition, ls)
	}
	return out
}

// Offset is a metric point relative to Origin.
func Offset(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}
