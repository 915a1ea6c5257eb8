package validate

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/ousposer/ousposer/internal/config"
	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/geo"
)

// BackrestParams bound the relation between a backrest and its frame side.
type BackrestParams struct {
	OffsetMinMeters      float64
	OffsetMaxMeters      float64
	AngleToleranceDeg    float64
	StraightnessMin      float64
	LengthToleranceRatio float64
}

// BackrestParamsFromConfig resolves the backrest tolerances used for
// multi-component frames.
func BackrestParamsFromConfig(cfg *config.TuningConfig) BackrestParams {
	return BackrestParams{
		OffsetMinMeters:      cfg.GetBackrestOffsetMinMeters(),
		OffsetMaxMeters:      cfg.GetBackrestOffsetMaxMeters(),
		AngleToleranceDeg:    cfg.GetBackrestAngleToleranceDeg(),
		StraightnessMin:      cfg.GetBackrestStraightnessMin(),
		LengthToleranceRatio: cfg.GetBackrestLengthToleranceRatio(),
	}
}

// TwoComponentParamsFromConfig is BackrestParamsFromConfig with the tighter
// offset band of frame+backrest pairs.
func TwoComponentParamsFromConfig(cfg *config.TuningConfig) BackrestParams {
	p := BackrestParamsFromConfig(cfg)
	p.OffsetMinMeters = cfg.GetTwoComponentOffsetMinMeters()
	p.OffsetMaxMeters = cfg.GetTwoComponentOffsetMaxMeters()
	return p
}

// BackrestMatch describes how an inner polyline relates to the side it was
// measured against.
type BackrestMatch struct {
	Side         Side
	OffsetMeters float64
	AngleDeg     float64
	Straightness float64
}

// Backrest checks one inner polyline against candidate long sides.
//
// The nearest side (smallest perpendicular offset) is the reference. The
// inner polyline must be straight, parallel to it, offset inside the band
// and of similar length. All bounds are inclusive.
func Backrest(inner *furniture.Component, sides []Side, p BackrestParams) (BackrestMatch, bool) {
	if len(sides) == 0 {
		return BackrestMatch{}, false
	}
	straightness, ok := geo.Straightness(inner.Vertices)
	if !ok || straightness < p.StraightnessMin {
		return BackrestMatch{}, false
	}
	bearing, ok := geo.ChordBearing(inner.Vertices)
	if !ok {
		return BackrestMatch{}, false
	}

	start, end := inner.Endpoints()
	frame := geo.NewLocalFrame(start)
	mid := frame.Project(start).Add(frame.Project(end)).Mul(0.5)

	best := BackrestMatch{OffsetMeters: math.Inf(1)}
	found := false
	for _, s := range sides {
		d, ok := offsetFromSide(frame, mid, s)
		if !ok {
			continue
		}
		if d < best.OffsetMeters {
			best = BackrestMatch{
				Side:         s,
				OffsetMeters: d,
				AngleDeg:     geo.OrientationDifference(bearing, s.Bearing),
				Straightness: straightness,
			}
			found = true
		}
	}
	if !found {
		return BackrestMatch{}, false
	}

	if best.AngleDeg > p.AngleToleranceDeg {
		return best, false
	}
	if best.OffsetMeters < p.OffsetMinMeters || best.OffsetMeters > p.OffsetMaxMeters {
		return best, false
	}
	if !SimilarLength(inner.Features.TotalLengthMeters, best.Side.Length, p.LengthToleranceRatio) {
		return best, false
	}
	return best, true
}

func offsetFromSide(frame geo.LocalFrame, mid r2.Point, s Side) (float64, bool) {
	return geo.PointLineDistance(mid, frame.Project(s.Start), frame.Project(s.End))
}

// Backrests returns the subset of inners that pass against the frame's long
// sides, in input order.
func Backrests(inners []*furniture.Component, f Frame, p BackrestParams) []*furniture.Component {
	var out []*furniture.Component
	for _, c := range inners {
		if _, ok := Backrest(c, f.LongSides(), p); ok {
			out = append(out, c)
		}
	}
	return out
}
