// Package geo holds the geometry primitives used by every detection stage:
// great-circle distance, bearings, angle comparisons, metre/degree
// conversions and a local metric projection. It is the only place these
// formulas are implemented.
package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

const (
	// EarthRadiusMeters is the mean radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0
	// MetersPerDegreeLatitude is the survey value behind the degree
	// conversions below. Metric projections use MetersPerDegree instead.
	MetersPerDegreeLatitude = 111320.0
	// MetersPerDegree is one degree of arc on the haversine sphere. Using it
	// for projections keeps planar lengths equal to DistanceMeters.
	MetersPerDegree = EarthRadiusMeters * math.Pi / 180
)

func toRadians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

func toDegrees(rad float64) float64 {
	return (s1.Angle(rad) * s1.Radian).Degrees()
}

// DistanceMeters returns the haversine distance between two points.
// The expression is written so that swapping the arguments yields a
// bit-identical result.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	sinDLat := math.Sin((phi2 - phi1) / 2)
	sinDLon := math.Sin((toRadians(lon2) - toRadians(lon1)) / 2)
	cosProduct := math.Cos(phi1) * math.Cos(phi2)

	a := sinDLat*sinDLat + cosProduct*(sinDLon*sinDLon)
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

// BearingDegrees returns the initial compass bearing from the first point to
// the second, in [0, 360). Identical points return 0.
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dLambda := toRadians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return NormalizeDegrees(toDegrees(math.Atan2(y, x)))
}

// NormalizeDegrees maps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// DegreesLatitudePerMeter is constant everywhere on the sphere model.
func DegreesLatitudePerMeter() float64 {
	return 1 / MetersPerDegreeLatitude
}

// DegreesLongitudePerMeter grows toward the poles as meridians converge.
func DegreesLongitudePerMeter(atLatitude float64) float64 {
	return 1 / (MetersPerDegreeLatitude * math.Cos(toRadians(atLatitude)))
}

// AngleBetweenVectors returns the angle in degrees between two direction
// vectors, in [0, 180]. ok is false when either vector has zero length.
func AngleBetweenVectors(v1, v2 r2.Point) (deg float64, ok bool) {
	if v1.Norm() == 0 || v2.Norm() == 0 {
		return 0, false
	}
	return toDegrees(math.Atan2(math.Abs(v1.Cross(v2)), v1.Dot(v2))), true
}

// AngularDifference returns the smallest difference between two directed
// angles modulo 360, in [0, 180].
func AngularDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// OrientationDifference compares undirected orientations: a segment and its
// reverse are the same line. Result is in [0, 90]. All parallelism checks go
// through this function.
func OrientationDifference(a, b float64) float64 {
	d := AngularDifference(a, b)
	if d > 90 {
		d = 180 - d
	}
	return d
}

// Orientation folds a bearing into [0, 180).
func Orientation(bearing float64) float64 {
	o := math.Mod(bearing, 180)
	if o < 0 {
		o += 180
	}
	if o >= 180 {
		o = 0
	}
	return o
}

// MeanOrientation averages two undirected orientations, taking the short way
// around the 0/180 seam.
func MeanOrientation(a, b float64) float64 {
	a, b = Orientation(a), Orientation(b)
	if math.Abs(a-b) > 90 {
		if a < b {
			a += 180
		} else {
			b += 180
		}
	}
	return Orientation((a + b) / 2)
}
