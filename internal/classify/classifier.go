// Package classify turns the components of a partition into detected
// benches and trash bins.
//
// Rules run in strict precedence:
//  1. trash bin signature (claims stay provisional)
//  2. single-component bench by envelope (claimed components leave the pool)
//  3. two-component frame+backrest pair (claimed components leave the pool)
//  4. multi-component rectangle frame with 0-2 backrests
//  5. provisional trash bins whose component a bench claimed are discarded
//
// Components failing every rule are left out of the result.
package classify

import (
	"math"
	"slices"

	"github.com/ousposer/ousposer/internal/cluster"
	"github.com/ousposer/ousposer/internal/config"
	"github.com/ousposer/ousposer/internal/filter"
	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/validate"
)

// Stats counts rule outcomes for one Classify call.
type Stats struct {
	Input               int
	Excluded            int
	TrashBins           int
	DiscardedTrashBins  int
	SingleBenches       int
	TwoComponentBenches int
	MultiBenches        int
	Clusters            int
}

// Benches returns the total bench count.
func (s Stats) Benches() int {
	return s.SingleBenches + s.TwoComponentBenches + s.MultiBenches
}

// Result is the output of one Classify call.
type Result struct {
	Objects []furniture.DetectedObject
	Stats   Stats
}

// Classifier applies the rule cascade. It holds no mutable state and is safe
// for concurrent use.
type Classifier struct {
	params      Params
	filter      *filter.Filter
	pair        cluster.Clusterer
	multi       cluster.Clusterer
	multiMethod string
}

// New builds a classifier. Parameters are validated once here.
func New(p Params) (*Classifier, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		params: p,
		filter: filter.New(p.Filter),
		pair:   cluster.NewDBSCANClusterer(p.TwoComponentCluster),
	}
	if p.MultiStrategy == config.StrategyChain {
		c.multi = cluster.NewChainClusterer(p.MultiChain)
		c.multiMethod = furniture.MethodRectangleChain
	} else {
		c.multi = cluster.NewDBSCANClusterer(p.MultiDBSCAN)
		c.multiMethod = furniture.MethodRectangleDBSCAN
	}
	return c, nil
}

// Params returns the classifier's parameters.
func (c *Classifier) Params() Params {
	return c.params
}

// Classify runs the cascade. Input spanning several partitions is split and
// each partition is classified independently.
func (c *Classifier) Classify(comps []*furniture.Component) Result {
	keys, groups := cluster.ByPartition(comps)
	var res Result
	for _, k := range keys {
		r := c.classifyPartition(groups[k])
		res.Objects = append(res.Objects, r.Objects...)
		res.Stats = addStats(res.Stats, r.Stats)
	}
	furniture.SortObjects(res.Objects)
	return res
}

func addStats(a, b Stats) Stats {
	return Stats{
		Input:               a.Input + b.Input,
		Excluded:            a.Excluded + b.Excluded,
		TrashBins:           a.TrashBins + b.TrashBins,
		DiscardedTrashBins:  a.DiscardedTrashBins + b.DiscardedTrashBins,
		SingleBenches:       a.SingleBenches + b.SingleBenches,
		TwoComponentBenches: a.TwoComponentBenches + b.TwoComponentBenches,
		MultiBenches:        a.MultiBenches + b.MultiBenches,
		Clusters:            a.Clusters + b.Clusters,
	}
}

// pool is the shrinking set of unclaimed candidates of one partition.
type pool struct {
	comps   []*furniture.Component
	claimed map[int64]bool
}

func (p *pool) remaining() []*furniture.Component {
	out := make([]*furniture.Component, 0, len(p.comps))
	for _, c := range p.comps {
		if !p.claimed[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func (p *pool) claim(members ...*furniture.Component) {
	for _, m := range members {
		p.claimed[m.ID] = true
	}
}

func (c *Classifier) classifyPartition(comps []*furniture.Component) Result {
	var stats Stats
	stats.Input = len(comps)

	filtered := c.filter.Partition(comps)
	stats.Excluded = len(filtered.Rejected)

	pl := &pool{comps: filtered.Kept, claimed: make(map[int64]bool)}
	var benches []furniture.DetectedObject

	// 1. Trash bins stay in the pool until bench rules have run.
	var trash []furniture.DetectedObject
	for _, comp := range pl.comps {
		if obj, ok := c.matchTrashBin(comp); ok {
			trash = append(trash, obj)
		}
	}

	// 2. Single-component benches.
	for _, comp := range pl.remaining() {
		if obj, ok := c.matchSingleBench(comp); ok {
			benches = append(benches, obj)
			pl.claim(comp)
			stats.SingleBenches++
		}
	}

	// 3. Two-component frame+backrest pairs.
	pairs := c.pair.Cluster(pl.remaining())
	stats.Clusters += len(pairs)
	for _, cl := range pairs {
		if obj, ok := c.matchTwoComponent(cl); ok {
			benches = append(benches, obj)
			pl.claim(cl.Members...)
			stats.TwoComponentBenches++
		}
	}

	// 4. Multi-component rectangles over two-vertex pieces.
	var segments []*furniture.Component
	for _, comp := range pl.remaining() {
		if comp.Features.VertexCount == 2 {
			segments = append(segments, comp)
		}
	}
	groups := c.multi.Cluster(segments)
	stats.Clusters += len(groups)
	for _, cl := range groups {
		if obj, ok := c.matchMultiComponent(cl); ok {
			benches = append(benches, obj)
			pl.claim(cl.Members...)
			stats.MultiBenches++
		}
	}

	// 5. Bench claims win over trash bins. With the default bands no bench
	// rule accepts a 70-77 vertex ring, so this only fires under tuned configs.
	objects := benches
	for _, t := range trash {
		if pl.claimed[t.Members[0]] {
			stats.DiscardedTrashBins++
			continue
		}
		objects = append(objects, t)
		stats.TrashBins++
	}

	furniture.SortObjects(objects)
	return Result{Objects: objects, Stats: stats}
}

func (c *Classifier) matchTrashBin(comp *furniture.Component) (furniture.DetectedObject, bool) {
	p := c.params.TrashBin
	f := comp.Features
	if f.VertexCount < p.MinVertices || f.VertexCount > p.MaxVertices {
		return furniture.DetectedObject{}, false
	}
	if f.AspectRatio <= p.MinAspect {
		return furniture.DetectedObject{}, false
	}
	if f.TotalLengthMeters < p.MinLengthMeters || f.TotalLengthMeters > p.MaxLengthMeters {
		return furniture.DetectedObject{}, false
	}
	conf := ConfidenceTrashBin
	if f.VertexCount == p.ExactVertices {
		conf = ConfidenceTrashBinExact
	}
	return furniture.NewDetectedObject(furniture.TypeTrashBin, furniture.SubtypeTrashBin,
		furniture.MethodTrashBinSignature, conf, []*furniture.Component{comp}), true
}

func withinRatio(got, want, ratio float64) bool {
	return math.Abs(got-want) <= want*ratio
}

func (c *Classifier) matchSingleBench(comp *furniture.Component) (furniture.DetectedObject, bool) {
	p := c.params.SingleBench
	f := comp.Features
	env := f.Envelope
	members := []*furniture.Component{comp}

	switch f.VertexCount {
	case 5:
		if withinRatio(env.Length, p.Bench5Length, p.ToleranceRatio) && withinRatio(env.Width, p.Bench5Width, p.ToleranceRatio) {
			return furniture.NewDetectedObject(furniture.TypeBench, furniture.SubtypeSingle5Point,
				furniture.MethodSingleEnvelope, ConfidenceSingle5Point, members), true
		}
	case 7:
		if withinRatio(env.Length, p.Bench7Length, p.ToleranceRatio) && withinRatio(env.Width, p.Bench7Width, p.ToleranceRatio) {
			return furniture.NewDetectedObject(furniture.TypeBench, furniture.SubtypeSingle7Point,
				furniture.MethodSingleEnvelope, ConfidenceSingle7Point, members), true
		}
	}

	if p.FallbackEnabled && f.VertexCount >= p.FallbackMinVertices &&
		f.TotalLengthMeters >= p.FallbackMinLengthMeters && f.TotalLengthMeters <= p.FallbackMaxLengthMeters {
		return furniture.NewDetectedObject(furniture.TypeBench, furniture.SubtypeSingleLengthFallback,
			furniture.MethodSingleLength, ConfidenceFallback, members), true
	}
	return furniture.DetectedObject{}, false
}

func (c *Classifier) matchTwoComponent(cl cluster.Cluster) (furniture.DetectedObject, bool) {
	if cl.Len() != 2 || !slices.Equal(cl.VertexPattern(), []int{2, 5}) {
		return furniture.DetectedObject{}, false
	}
	frame, inner := cl.Members[0], cl.Members[1]
	if frame.Features.VertexCount != 2 {
		frame, inner = inner, frame
	}
	side, ok := validate.SideOf(frame)
	if !ok {
		return furniture.DetectedObject{}, false
	}
	m, ok := validate.Backrest(inner, []validate.Side{side}, c.params.TwoComponentBackrest)
	if !ok {
		return furniture.DetectedObject{}, false
	}

	obj := furniture.NewDetectedObject(furniture.TypeBench, furniture.SubtypeTwoComponentFrameBackrest,
		furniture.MethodTwoComponentDBSCAN, ConfidenceTwoComponent, cl.Members)
	obj.Summary.EnvelopeLengthMeters = side.Length
	obj.Summary.EnvelopeWidthMeters = m.OffsetMeters
	obj.Summary.BackrestCount = 1
	return obj, true
}

func (c *Classifier) matchMultiComponent(cl cluster.Cluster) (furniture.DetectedObject, bool) {
	subtype, ok := furniture.MultiComponentSubtype(cl.Len())
	if !ok {
		return furniture.DetectedObject{}, false
	}
	for _, m := range cl.Members {
		if m.Features.VertexCount != 2 {
			return furniture.DetectedObject{}, false
		}
	}

	// Try every 4-subset as the frame, in lexicographic index order.
	n := cl.Len()
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for x := b + 1; x < n; x++ {
				for y := x + 1; y < n; y++ {
					sides := []*furniture.Component{cl.Members[a], cl.Members[b], cl.Members[x], cl.Members[y]}
					frame, ok := validate.Rectangle(sides, c.params.Rectangle)
					if !ok {
						continue
					}
					rest := make([]*furniture.Component, 0, n-4)
					for i, m := range cl.Members {
						if i != a && i != b && i != x && i != y {
							rest = append(rest, m)
						}
					}
					backrests := validate.Backrests(rest, frame, c.params.Backrest)
					if len(backrests) != len(rest) {
						continue
					}
					return c.multiObject(cl, subtype, frame, len(backrests)), true
				}
			}
		}
	}
	return furniture.DetectedObject{}, false
}

func (c *Classifier) multiObject(cl cluster.Cluster, subtype furniture.Subtype, frame validate.Frame, backrests int) furniture.DetectedObject {
	conf := ConfidenceRectangle4
	switch cl.Len() {
	case 5:
		conf = ConfidenceRectangle5
	case 6:
		conf = ConfidenceRectangle6
	}
	obj := furniture.NewDetectedObject(furniture.TypeBench, subtype, c.multiMethod, conf, cl.Members)
	obj.Summary.EnvelopeLengthMeters = (frame.Long[0].Length + frame.Long[1].Length) / 2
	obj.Summary.EnvelopeWidthMeters = (frame.Short[0].Length + frame.Short[1].Length) / 2
	obj.Summary.BackrestCount = backrests
	return obj
}
