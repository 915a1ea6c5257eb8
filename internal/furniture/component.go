// Package furniture defines the data model shared by every detection stage:
// the immutable polyline component read from the municipal dataset and the
// detected object produced by the classifier.
package furniture

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/geo"
)

// ErrMalformed is returned for records that cannot become a component.
var ErrMalformed = errors.New("malformed component")

// Partition bounds (Paris arrondissements).
const (
	MinPartition = 1
	MaxPartition = 20
)

// Features are scalar descriptors computed once when a component is built.
type Features struct {
	TotalLengthMeters float64
	VertexCount       int
	BBoxWidthMeters   float64
	BBoxHeightMeters  float64
	// AspectRatio is min(w,h)/max(w,h): 1 for a square box, 0 for a
	// zero-extent box.
	AspectRatio       float64
	CumulativeTurnDeg float64
	Centroid          orb.Point
	Envelope          geo.Envelope
}

// Component is one polyline record from the street-furniture dataset.
// Components are never mutated after NewComponent returns.
type Component struct {
	ID        int64
	Vertices  orb.LineString
	Partition int
	Features  Features
}

// NewComponent validates the vertices and computes features.
func NewComponent(id int64, partition int, vertices orb.LineString) (*Component, error) {
	if len(vertices) < 2 {
		return nil, fmt.Errorf("%w: component %d has %d vertices", ErrMalformed, id, len(vertices))
	}
	if partition < MinPartition || partition > MaxPartition {
		return nil, fmt.Errorf("%w: component %d has partition %d", ErrMalformed, id, partition)
	}
	for i, p := range vertices {
		if !validCoordinate(p) {
			return nil, fmt.Errorf("%w: component %d vertex %d is %v", ErrMalformed, id, i, p)
		}
	}

	ls := make(orb.LineString, len(vertices))
	copy(ls, vertices)

	w, h := geo.BoundsMeters(ls)
	return &Component{
		ID:        id,
		Vertices:  ls,
		Partition: partition,
		Features: Features{
			TotalLengthMeters: geo.PathLengthMeters(ls),
			VertexCount:       len(ls),
			BBoxWidthMeters:   w,
			BBoxHeightMeters:  h,
			AspectRatio:       aspectRatio(w, h),
			CumulativeTurnDeg: geo.CumulativeTurnDegrees(ls),
			Centroid:          geo.Centroid(ls),
			Envelope:          geo.OrientedEnvelope(ls),
		},
	}, nil
}

// Endpoints returns the first and last vertex.
func (c *Component) Endpoints() (orb.Point, orb.Point) {
	return c.Vertices[0], c.Vertices[len(c.Vertices)-1]
}

func validCoordinate(p orb.Point) bool {
	lon, lat := p.Lon(), p.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

func aspectRatio(w, h float64) float64 {
	hi, lo := math.Max(w, h), math.Min(w, h)
	if hi == 0 {
		return 0
	}
	return lo / hi
}

// PartitionOf returns the shared partition of comps, or false when the slice
// is empty or mixes partitions.
func PartitionOf(comps []*Component) (int, bool) {
	if len(comps) == 0 {
		return 0, false
	}
	p := comps[0].Partition
	for _, c := range comps[1:] {
		if c.Partition != p {
			return 0, false
		}
	}
	return p, true
}
