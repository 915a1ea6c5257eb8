package classify

import (
	"fmt"

	"github.com/ousposer/ousposer/internal/cluster"
	"github.com/ousposer/ousposer/internal/config"
	"github.com/ousposer/ousposer/internal/filter"
	"github.com/ousposer/ousposer/internal/spatial"
	"github.com/ousposer/ousposer/internal/validate"
)

// Confidence assigned per rule.
const (
	ConfidenceTrashBinExact = 0.98
	ConfidenceTrashBin      = 0.95
	ConfidenceSingle5Point  = 0.95
	ConfidenceSingle7Point  = 0.98
	ConfidenceFallback      = 0.90
	ConfidenceTwoComponent  = 0.96
	ConfidenceRectangle4    = 0.90
	ConfidenceRectangle5    = 0.85
	ConfidenceRectangle6    = 0.90
)

// TrashBinParams describe the circular bin signature.
type TrashBinParams struct {
	MinVertices     int
	MaxVertices     int
	ExactVertices   int
	MinAspect       float64 // exclusive
	MinLengthMeters float64
	MaxLengthMeters float64
}

// SingleBenchParams are the canonical envelopes of one-polyline benches.
type SingleBenchParams struct {
	Bench5Length, Bench5Width float64
	Bench7Length, Bench7Width float64
	ToleranceRatio            float64

	FallbackEnabled         bool
	FallbackMinVertices     int
	FallbackMinLengthMeters float64
	FallbackMaxLengthMeters float64
}

// Params is the immutable configuration of a Classifier. Build it with
// ParamsFromConfig; the zero value is not usable.
type Params struct {
	Filter      filter.Params
	TrashBin    TrashBinParams
	SingleBench SingleBenchParams

	TwoComponentCluster  cluster.DBSCANParams
	TwoComponentBackrest validate.BackrestParams

	MultiStrategy string
	MultiDBSCAN   cluster.DBSCANParams
	MultiChain    cluster.ChainParams
	Rectangle     validate.RectangleParams
	Backrest      validate.BackrestParams
}

// ParamsFromConfig validates cfg and resolves it into classifier parameters.
func ParamsFromConfig(cfg *config.TuningConfig) (Params, error) {
	if err := cfg.Validate(); err != nil {
		return Params{}, err
	}
	index := spatial.IndexParams{
		MinLengthMeters: cfg.GetIndexMinLengthMeters(),
		MaxLengthMeters: cfg.GetIndexMaxLengthMeters(),
	}
	p := Params{
		Filter: filter.ParamsFromConfig(cfg),
		TrashBin: TrashBinParams{
			MinVertices:     cfg.GetTrashBinMinVertices(),
			MaxVertices:     cfg.GetTrashBinMaxVertices(),
			ExactVertices:   cfg.GetTrashBinExactVertices(),
			MinAspect:       cfg.GetTrashBinMinAspect(),
			MinLengthMeters: cfg.GetTrashBinMinLengthMeters(),
			MaxLengthMeters: cfg.GetTrashBinMaxLengthMeters(),
		},
		SingleBench: SingleBenchParams{
			Bench5Length:            cfg.GetBench5LengthMeters(),
			Bench5Width:             cfg.GetBench5WidthMeters(),
			Bench7Length:            cfg.GetBench7LengthMeters(),
			Bench7Width:             cfg.GetBench7WidthMeters(),
			ToleranceRatio:          cfg.GetSingleBenchToleranceRatio(),
			FallbackEnabled:         cfg.GetFallbackEnabled(),
			FallbackMinVertices:     cfg.GetFallbackMinVertices(),
			FallbackMinLengthMeters: cfg.GetFallbackMinLengthMeters(),
			FallbackMaxLengthMeters: cfg.GetFallbackMaxLengthMeters(),
		},
		TwoComponentCluster: cluster.DBSCANParams{
			Eps:    cfg.GetTwoComponentEpsMeters(),
			MinPts: cfg.GetClusterMinPoints(),
		},
		TwoComponentBackrest: validate.TwoComponentParamsFromConfig(cfg),
		MultiStrategy:        cfg.GetMultiComponentStrategy(),
		MultiDBSCAN: cluster.DBSCANParams{
			Eps:    cfg.GetMultiComponentEpsMeters(),
			MinPts: cfg.GetClusterMinPoints(),
			Index:  index,
		},
		MultiChain: cluster.ChainParams{
			ToleranceMeters: cfg.GetChainToleranceMeters(),
			MaxLength:       cfg.GetChainMaxLength(),
			Index:           index,
		},
		Rectangle: validate.RectangleParamsFromConfig(cfg),
		Backrest:  validate.BackrestParamsFromConfig(cfg),
	}
	return p, p.Validate()
}

// MustDefaultParams resolves the compiled-in defaults. It panics if they are
// invalid, which only a broken build can cause.
func MustDefaultParams() Params {
	p, err := ParamsFromConfig(config.DefaultTuningConfig())
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks the resolved parameters. Errors wrap config.ErrInvalid.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"two-component eps", p.TwoComponentCluster.Eps},
		{"multi-component eps", p.MultiDBSCAN.Eps},
		{"chain tolerance", p.MultiChain.ToleranceMeters},
		{"bench5 length", p.SingleBench.Bench5Length},
		{"bench5 width", p.SingleBench.Bench5Width},
		{"bench7 length", p.SingleBench.Bench7Length},
		{"bench7 width", p.SingleBench.Bench7Width},
		{"backrest angle", p.Backrest.AngleToleranceDeg},
		{"rect parallel", p.Rectangle.ParallelToleranceDeg},
		{"rect orthogonal", p.Rectangle.OrthogonalToleranceDeg},
		{"trash bin max length", p.TrashBin.MaxLengthMeters},
		{"two-component offset", p.TwoComponentBackrest.OffsetMaxMeters},
		{"backrest offset", p.Backrest.OffsetMaxMeters},
		{"backrest straightness", p.Backrest.StraightnessMin},
		{"single bench tolerance", p.SingleBench.ToleranceRatio},
	}
	for _, f := range positive {
		if !(f.value > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", config.ErrInvalid, f.name, f.value)
		}
	}
	if p.TwoComponentCluster.MinPts < 1 || p.MultiDBSCAN.MinPts < 1 {
		return fmt.Errorf("%w: cluster min points must be at least 1", config.ErrInvalid)
	}
	if p.MultiChain.MaxLength < 4 {
		return fmt.Errorf("%w: chain max length %d cannot hold a 4-sided frame", config.ErrInvalid, p.MultiChain.MaxLength)
	}
	if p.TrashBin.MinVertices > p.TrashBin.MaxVertices {
		return fmt.Errorf("%w: trash bin vertex band [%d, %d]", config.ErrInvalid, p.TrashBin.MinVertices, p.TrashBin.MaxVertices)
	}
	if p.TrashBin.MinLengthMeters > p.TrashBin.MaxLengthMeters {
		return fmt.Errorf("%w: trash bin length band [%v, %v]", config.ErrInvalid, p.TrashBin.MinLengthMeters, p.TrashBin.MaxLengthMeters)
	}
	for _, b := range []validate.BackrestParams{p.Backrest, p.TwoComponentBackrest} {
		if b.OffsetMinMeters > b.OffsetMaxMeters {
			return fmt.Errorf("%w: backrest offset band [%v, %v]", config.ErrInvalid, b.OffsetMinMeters, b.OffsetMaxMeters)
		}
		if b.StraightnessMin > 1 {
			return fmt.Errorf("%w: straightness minimum %v above 1", config.ErrInvalid, b.StraightnessMin)
		}
	}
	if p.Filter.TurnMinDeg > p.Filter.TurnMaxDeg {
		return fmt.Errorf("%w: turn band [%v, %v]", config.ErrInvalid, p.Filter.TurnMinDeg, p.Filter.TurnMaxDeg)
	}
	switch p.MultiStrategy {
	case config.StrategyDBSCAN, config.StrategyChain:
	default:
		return fmt.Errorf("%w: unknown multi-component strategy %q", config.ErrInvalid, p.MultiStrategy)
	}
	return nil
}
