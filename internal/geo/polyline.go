package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// PathLengthMeters sums the great-circle lengths of consecutive segments.
func PathLengthMeters(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += DistanceMeters(ls[i-1].Lat(), ls[i-1].Lon(), ls[i].Lat(), ls[i].Lon())
	}
	return total
}

// ChordLengthMeters is the first-to-last vertex distance.
func ChordLengthMeters(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	a, b := ls[0], ls[len(ls)-1]
	return DistanceMeters(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// ChordBearing is the bearing from the first to the last vertex. ok is false
// for a degenerate chord.
func ChordBearing(ls orb.LineString) (bearing float64, ok bool) {
	if len(ls) < 2 || ls[0] == ls[len(ls)-1] {
		return 0, false
	}
	a, b := ls[0], ls[len(ls)-1]
	return BearingDegrees(a.Lat(), a.Lon(), b.Lat(), b.Lon()), true
}

// Straightness is chord length divided by path length, 1 for a straight line.
func Straightness(ls orb.LineString) (float64, bool) {
	path := PathLengthMeters(ls)
	if path == 0 {
		return 0, false
	}
	return ChordLengthMeters(ls) / path, true
}

// Centroid returns the mean of the vertices.
func Centroid(ls orb.LineString) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	var lon, lat float64
	for _, p := range ls {
		lon += p.Lon()
		lat += p.Lat()
	}
	n := float64(len(ls))
	return orb.Point{lon / n, lat / n}
}

// BoundsMeters returns the width (east-west) and height (north-south) of the
// axis-aligned bounding box in metres.
func BoundsMeters(ls orb.LineString) (width, height float64) {
	if len(ls) == 0 {
		return 0, 0
	}
	b := ls.Bound()
	midLat := (b.Min.Lat() + b.Max.Lat()) / 2
	width = (b.Max.Lon() - b.Min.Lon()) * MetersPerDegree * math.Cos(toRadians(midLat))
	height = (b.Max.Lat() - b.Min.Lat()) * MetersPerDegree
	return width, height
}

// CumulativeTurnDegrees sums the absolute direction change between
// consecutive segments. Zero-length segments are skipped.
func CumulativeTurnDegrees(ls orb.LineString) float64 {
	if len(ls) < 3 {
		return 0
	}
	frame := NewLocalFrame(ls[0])
	pts := frame.ProjectLine(ls)

	var total float64
	var prev r2.Point
	havePrev := false
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Sub(pts[i-1])
		if seg.Norm() == 0 {
			continue
		}
		if havePrev {
			if a, ok := AngleBetweenVectors(prev, seg); ok {
				total += a
			}
		}
		prev = seg
		havePrev = true
	}
	return total
}

// PointLineDistance returns the perpendicular distance from p to the infinite
// line through a and b. ok is false when a and b coincide.
func PointLineDistance(p, a, b r2.Point) (float64, bool) {
	dir := b.Sub(a)
	n := dir.Norm()
	if n == 0 {
		return 0, false
	}
	return math.Abs(dir.Cross(p.Sub(a))) / n, true
}
