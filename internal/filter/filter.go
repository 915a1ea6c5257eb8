// Package filter rejects components that cannot structurally be part of a
// bench or trash bin before any clustering runs. The rules are lenient:
// the classifier cascade still applies tight geometric checks downstream.
package filter

import (
	"fmt"

	"github.com/ousposer/ousposer/internal/config"
	"github.com/ousposer/ousposer/internal/furniture"
)

// Rejection reasons.
const (
	ReasonPlanter   = "planter_signature"
	ReasonTurnAngle = "turn_angle_out_of_band"
)

// Params are the exclusion thresholds.
type Params struct {
	// A component is a planter outline when both bounds are reached.
	PlanterMinAspect   float64
	PlanterMinVertices int
	// Cumulative turn band, applied to components with three or more
	// vertices.
	TurnMinDeg float64
	TurnMaxDeg float64
}

// ParamsFromConfig resolves exclusion thresholds from the tuning config.
func ParamsFromConfig(cfg *config.TuningConfig) Params {
	return Params{
		PlanterMinAspect:   cfg.GetExclusionMinAspect(),
		PlanterMinVertices: cfg.GetExclusionMinVertices(),
		TurnMinDeg:         cfg.GetExclusionTurnMinDeg(),
		TurnMaxDeg:         cfg.GetExclusionTurnMaxDeg(),
	}
}

// Decision is the outcome for one component.
type Decision struct {
	Candidate bool
	Reason    string
}

// Filter applies the exclusion rules.
type Filter struct {
	params Params
}

// New returns a filter using p.
func New(p Params) *Filter {
	return &Filter{params: p}
}

// Evaluate decides whether c remains a furniture candidate.
func (f *Filter) Evaluate(c *furniture.Component) Decision {
	feat := c.Features
	if feat.AspectRatio >= f.params.PlanterMinAspect && feat.VertexCount >= f.params.PlanterMinVertices {
		return Decision{Reason: ReasonPlanter}
	}
	// Two-vertex segments have no turn by construction.
	if feat.VertexCount >= 3 {
		if feat.CumulativeTurnDeg < f.params.TurnMinDeg || feat.CumulativeTurnDeg > f.params.TurnMaxDeg {
			return Decision{Reason: ReasonTurnAngle}
		}
	}
	return Decision{Candidate: true}
}

// Result is the outcome of filtering a slice of components.
type Result struct {
	Kept     []*furniture.Component
	Rejected []*furniture.Component
	// ByReason counts rejections per reason.
	ByReason map[string]int
}

func (r Result) String() string {
	return fmt.Sprintf("kept=%d rejected=%d planter=%d turn=%d",
		len(r.Kept), len(r.Rejected), r.ByReason[ReasonPlanter], r.ByReason[ReasonTurnAngle])
}

// Partition splits comps into kept and rejected, preserving input order.
func (f *Filter) Partition(comps []*furniture.Component) Result {
	res := Result{
		Kept:     make([]*furniture.Component, 0, len(comps)),
		ByReason: make(map[string]int),
	}
	for _, c := range comps {
		d := f.Evaluate(c)
		if d.Candidate {
			res.Kept = append(res.Kept, c)
			continue
		}
		res.Rejected = append(res.Rejected, c)
		res.ByReason[d.Reason]++
	}
	return res
}
