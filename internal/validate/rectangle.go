// Package validate holds the geometric gates used by the classifier: the
// four-sided frame test and the backrest offset test. Both are hard boolean
// checks; degenerate geometry fails rather than erroring.
package validate

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/config"
	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/geo"
)

// Side is a component reduced to its first-to-last segment.
type Side struct {
	Component   *furniture.Component
	Start, End  orb.Point
	Bearing     float64
	Orientation float64
	Length      float64
}

// SideOf reduces c to its chord. ok is false when the chord has zero length.
func SideOf(c *furniture.Component) (Side, bool) {
	start, end := c.Endpoints()
	bearing, ok := geo.ChordBearing(c.Vertices)
	if !ok {
		return Side{}, false
	}
	length := geo.ChordLengthMeters(c.Vertices)
	if length == 0 {
		return Side{}, false
	}
	return Side{
		Component:   c,
		Start:       start,
		End:         end,
		Bearing:     bearing,
		Orientation: geo.Orientation(bearing),
		Length:      length,
	}, true
}

// Frame is an accepted rectangle: two long sides and two short sides.
type Frame struct {
	Long  [2]Side
	Short [2]Side
}

// Members returns the four frame components.
func (f Frame) Members() []*furniture.Component {
	return []*furniture.Component{f.Long[0].Component, f.Long[1].Component, f.Short[0].Component, f.Short[1].Component}
}

// LongSides returns the long sides as a slice.
func (f Frame) LongSides() []Side {
	return []Side{f.Long[0], f.Long[1]}
}

// RectangleParams are the frame tolerances.
type RectangleParams struct {
	ParallelToleranceDeg   float64
	OrthogonalToleranceDeg float64
	LengthToleranceRatio   float64
}

// RectangleParamsFromConfig resolves frame tolerances.
func RectangleParamsFromConfig(cfg *config.TuningConfig) RectangleParams {
	return RectangleParams{
		ParallelToleranceDeg:   cfg.GetRectParallelToleranceDeg(),
		OrthogonalToleranceDeg: cfg.GetRectOrthogonalToleranceDeg(),
		LengthToleranceRatio:   cfg.GetRectLengthToleranceRatio(),
	}
}

// Parallel reports whether two undirected orientations agree within tol.
// The boundary is inclusive.
func Parallel(a, b, tolDeg float64) bool {
	return geo.OrientationDifference(a, b) <= tolDeg
}

// SimilarLength reports whether two lengths differ by at most ratio of the
// longer one.
func SimilarLength(a, b, ratio float64) bool {
	longer := math.Max(a, b)
	if longer == 0 {
		return false
	}
	return math.Abs(a-b)/longer <= ratio
}

// Rectangle decides whether exactly four components are the sides of one
// rectangular frame.
//
// Sides are sorted by undirected orientation and paired by adjacency. Since
// orientation wraps at 180°, both the (0,1)/(2,3) and the (1,2)/(3,0)
// pairings are tried. This is the sorted-adjacency heuristic, not an exact
// rectangle test: it does not compare diagonals, so a near-square or very
// elongated quadrilateral can be mis-paired.
func Rectangle(comps []*furniture.Component, p RectangleParams) (Frame, bool) {
	if len(comps) != 4 {
		return Frame{}, false
	}
	sides := make([]Side, 0, 4)
	for _, c := range comps {
		s, ok := SideOf(c)
		if !ok {
			return Frame{}, false
		}
		sides = append(sides, s)
	}
	// Component id breaks ties so input order never matters.
	sort.Slice(sides, func(i, j int) bool {
		if sides[i].Orientation != sides[j].Orientation {
			return sides[i].Orientation < sides[j].Orientation
		}
		return sides[i].Component.ID < sides[j].Component.ID
	})

	pairings := [2][4]int{{0, 1, 2, 3}, {1, 2, 3, 0}}
	for _, pr := range pairings {
		a := [2]Side{sides[pr[0]], sides[pr[1]]}
		b := [2]Side{sides[pr[2]], sides[pr[3]]}
		if f, ok := checkPairs(a, b, p); ok {
			return f, true
		}
	}
	return Frame{}, false
}

func checkPairs(a, b [2]Side, p RectangleParams) (Frame, bool) {
	for _, pair := range [][2]Side{a, b} {
		if !Parallel(pair[0].Orientation, pair[1].Orientation, p.ParallelToleranceDeg) {
			return Frame{}, false
		}
		if !SimilarLength(pair[0].Length, pair[1].Length, p.LengthToleranceRatio) {
			return Frame{}, false
		}
	}

	meanA := geo.MeanOrientation(a[0].Orientation, a[1].Orientation)
	meanB := geo.MeanOrientation(b[0].Orientation, b[1].Orientation)
	if 90-geo.OrientationDifference(meanA, meanB) > p.OrthogonalToleranceDeg {
		return Frame{}, false
	}

	if a[0].Length+a[1].Length >= b[0].Length+b[1].Length {
		return Frame{Long: a, Short: b}, true
	}
	return Frame{Long: b, Short: a}, true
}
