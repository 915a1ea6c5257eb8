package geo

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// envelopeEpsilon is the minimum extent, in metres, below which a hull is
// treated as collinear.
const envelopeEpsilon = 1e-9

// Envelope is the minimum-area oriented rectangle enclosing a polyline.
//
//   - Center: centre of the rectangle (lon, lat)
//   - Length: extent along the long axis (metres)
//   - Width: extent across the long axis (metres)
//   - HeadingDeg: undirected orientation of the long axis, [0, 180)
type Envelope struct {
	Center     orb.Point
	Length     float64
	Width      float64
	HeadingDeg float64
}

// OrientedEnvelope computes the minimum-area enclosing rectangle of ls.
//
// Algorithm:
//  1. Project vertices to a local metric frame
//  2. Build the convex hull (monotone chain)
//  3. For every hull edge direction, project the hull onto the edge and its
//     normal and keep the direction with the smallest area
//  4. Length is the larger extent, Width the smaller
//
// A minimum-area rectangle always has one side collinear with a hull edge, so
// trying hull edges is exhaustive.
func OrientedEnvelope(ls orb.LineString) Envelope {
	if len(ls) == 0 {
		return Envelope{}
	}
	frame := NewLocalFrame(ls[0])
	hull := convexHull(frame.ProjectLine(ls))

	if len(hull) == 1 {
		return Envelope{Center: ls[0]}
	}

	bestArea := math.MaxFloat64
	var best struct {
		axis                   r2.Point
		minU, maxU, minV, maxV float64
	}

	for i := range hull {
		edge := hull[(i+1)%len(hull)].Sub(hull[i])
		if edge.Norm() < envelopeEpsilon {
			continue
		}
		u := edge.Normalize()
		v := u.Ortho()

		minU, maxU := math.MaxFloat64, -math.MaxFloat64
		minV, maxV := math.MaxFloat64, -math.MaxFloat64
		for _, p := range hull {
			pu, pv := p.Dot(u), p.Dot(v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			best.axis = u
			best.minU, best.maxU, best.minV, best.maxV = minU, maxU, minV, maxV
		}
	}

	u := best.axis
	v := u.Ortho()
	extentU := best.maxU - best.minU
	extentV := best.maxV - best.minV
	mid := u.Mul((best.minU + best.maxU) / 2).Add(v.Mul((best.minV + best.maxV) / 2))

	env := Envelope{Center: frame.Unproject(mid)}
	if extentU >= extentV {
		env.Length, env.Width = extentU, extentV
		env.HeadingDeg = Orientation(PlanarBearing(u))
	} else {
		env.Length, env.Width = extentV, extentU
		env.HeadingDeg = Orientation(PlanarBearing(v))
	}
	return env
}

// convexHull returns the hull in counter-clockwise order without repeating
// the first point. Collinear input yields the two extreme points.
func convexHull(pts []r2.Point) []r2.Point {
	sorted := make([]r2.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// drop exact duplicates so closed rings do not produce zero-length edges
	uniq := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	cross := func(o, a, b r2.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	hull := make([]r2.Point, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
