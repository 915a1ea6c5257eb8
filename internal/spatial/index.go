// Package spatial provides a grid index over component vertices for
// tolerance-radius neighbour queries within one partition.
package spatial

import (
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/geo"
)

const (
	// DefaultCellSizeMeters is the grid pitch. Queries scan as many cells as
	// the tolerance needs, so this only trades memory against scan width.
	DefaultCellSizeMeters = 1.0
	// EstimatedVerticesPerCell is used for initial map capacity estimation.
	EstimatedVerticesPerCell = 4
	// boxPadding widens the degree pre-filter past the tolerance.
	boxPadding = 1.01
)

// IndexParams selects which components are indexed.
type IndexParams struct {
	CellSizeMeters float64
	// MinLengthMeters and MaxLengthMeters bound the component total length;
	// 0 disables the bound.
	MinLengthMeters float64
	MaxLengthMeters float64
}

// Vertex is one indexed row.
type Vertex struct {
	ComponentID int64
	Lat, Lon    float64
	Index       int
}

// VertexIndex is a regular grid over vertex coordinates in degrees. Cell
// sizes are converted to degrees at the reference latitude (the first
// indexed vertex), which is exact enough within one Paris partition but
// must not be used across a wide latitude range.
type VertexIndex struct {
	cellLat, cellLon float64
	grid             map[int64][]int
	vertices         []Vertex
	byComponent      map[int64][]int
}

// NewVertexIndex indexes every vertex of the components whose total length
// lies inside the configured band.
func NewVertexIndex(components []*furniture.Component, params IndexParams) *VertexIndex {
	cellMeters := params.CellSizeMeters
	if cellMeters <= 0 {
		cellMeters = DefaultCellSizeMeters
	}

	idx := &VertexIndex{
		byComponent: make(map[int64][]int),
	}

	for _, c := range components {
		l := c.Features.TotalLengthMeters
		if params.MinLengthMeters > 0 && l < params.MinLengthMeters {
			continue
		}
		if params.MaxLengthMeters > 0 && l > params.MaxLengthMeters {
			continue
		}
		for i, p := range c.Vertices {
			idx.byComponent[c.ID] = append(idx.byComponent[c.ID], len(idx.vertices))
			idx.vertices = append(idx.vertices, Vertex{ComponentID: c.ID, Lat: p.Lat(), Lon: p.Lon(), Index: i})
		}
	}

	refLat := 0.0
	if len(idx.vertices) > 0 {
		refLat = idx.vertices[0].Lat
	}
	idx.cellLat = cellMeters * geo.DegreesLatitudePerMeter()
	idx.cellLon = cellMeters * geo.DegreesLongitudePerMeter(refLat)

	idx.grid = make(map[int64][]int, len(idx.vertices)/EstimatedVerticesPerCell+1)
	for i, v := range idx.vertices {
		id := cellID(idx.cellCoord(v.Lon, idx.cellLon), idx.cellCoord(v.Lat, idx.cellLat))
		idx.grid[id] = append(idx.grid[id], i)
	}
	return idx
}

// Len reports the number of indexed vertices.
func (idx *VertexIndex) Len() int { return len(idx.vertices) }

// Contains reports whether the component was indexed.
func (idx *VertexIndex) Contains(componentID int64) bool {
	_, ok := idx.byComponent[componentID]
	return ok
}

func (idx *VertexIndex) cellCoord(deg, size float64) int64 {
	return int64(math.Floor(deg / size))
}

// cellID computes a unique cell identifier using Szudzik's pairing function.
// Negative coordinates are zigzag-encoded first.
func cellID(cellX, cellY int64) int64 {
	var a, b int64
	if cellX >= 0 {
		a = 2 * cellX
	} else {
		a = -2*cellX - 1
	}
	if cellY >= 0 {
		b = 2 * cellY
	} else {
		b = -2*cellY - 1
	}

	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// FindComponentsNearPoint returns the distinct ids of indexed components
// with at least one vertex within toleranceMeters of p, sorted ascending.
// excludeID is omitted from the result. The result is never nil.
func (idx *VertexIndex) FindComponentsNearPoint(p orb.Point, toleranceMeters float64, excludeID int64) []int64 {
	found := make(map[int64]struct{})
	idx.collectNear(p, toleranceMeters, excludeID, found)
	return sortedIDs(found)
}

// FindComponentsNear returns every indexed component with a vertex within
// toleranceMeters of any vertex of the given component, excluding itself.
// Components that were not indexed have no neighbours.
func (idx *VertexIndex) FindComponentsNear(componentID int64, toleranceMeters float64) []int64 {
	found := make(map[int64]struct{})
	for _, vi := range idx.byComponent[componentID] {
		v := idx.vertices[vi]
		idx.collectNear(orb.Point{v.Lon, v.Lat}, toleranceMeters, componentID, found)
	}
	return sortedIDs(found)
}

func (idx *VertexIndex) collectNear(p orb.Point, tol float64, excludeID int64, found map[int64]struct{}) {
	if len(idx.vertices) == 0 || tol < 0 {
		return
	}

	// Degree box computed at the query latitude. The survey degree length
	// is longer than a haversine degree, so the box is padded and the exact
	// distance check below decides membership.
	dLat := tol * geo.DegreesLatitudePerMeter() * boxPadding
	dLon := tol * geo.DegreesLongitudePerMeter(p.Lat()) * boxPadding

	minX, maxX := idx.cellCoord(p.Lon()-dLon, idx.cellLon), idx.cellCoord(p.Lon()+dLon, idx.cellLon)
	minY, maxY := idx.cellCoord(p.Lat()-dLat, idx.cellLat), idx.cellCoord(p.Lat()+dLat, idx.cellLat)

	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for _, vi := range idx.grid[cellID(cx, cy)] {
				v := idx.vertices[vi]
				if v.ComponentID == excludeID {
					continue
				}
				if _, ok := found[v.ComponentID]; ok {
					continue
				}
				if math.Abs(v.Lat-p.Lat()) > dLat || math.Abs(v.Lon-p.Lon()) > dLon {
					continue
				}
				if geo.DistanceMeters(p.Lat(), p.Lon(), v.Lat, v.Lon) <= tol {
					found[v.ComponentID] = struct{}{}
				}
			}
		}
	}
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
