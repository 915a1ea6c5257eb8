// Package evaluation scores detections against manually validated clusters.
package evaluation

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/ingest"
)

// TypeScore holds component-level counts for one object type.
type TypeScore struct {
	TruePositives  int
	FalseNegatives int
	FalsePositives int
}

// Recall is TP/(TP+FN), or 0 with no ground truth.
func (s TypeScore) Recall() float64 {
	if d := s.TruePositives + s.FalseNegatives; d > 0 {
		return float64(s.TruePositives) / float64(d)
	}
	return 0
}

// Precision is TP/(TP+FP), or 0 with no detections.
func (s TypeScore) Precision() float64 {
	if d := s.TruePositives + s.FalsePositives; d > 0 {
		return float64(s.TruePositives) / float64(d)
	}
	return 0
}

// ClusterScore counts manual clusters of one size and how many were
// reproduced exactly.
type ClusterScore struct {
	Total int
	Exact int
}

// Report is the outcome of Evaluate.
type Report struct {
	ByType map[furniture.ObjectType]TypeScore
	// ByComponentCount keys exact-match counts by manual cluster size.
	ByComponentCount map[int]ClusterScore
	// MeanBestJaccard averages, over manual clusters, the best member-set
	// overlap with any detection of the same type.
	MeanBestJaccard float64
	Partitions      []int
}

// Evaluate compares detections with the ground truth. Only partitions that
// appear in the ground truth are scored since the manual set is a sample.
func Evaluate(truth []ingest.ManualCluster, detections []furniture.DetectedObject) Report {
	r := Report{
		ByType:           make(map[furniture.ObjectType]TypeScore),
		ByComponentCount: make(map[int]ClusterScore),
	}

	partitions := make(map[int]bool)
	truthByType := make(map[furniture.ObjectType]map[int64]bool)
	for _, mc := range truth {
		partitions[mc.Partition] = true
		set := truthByType[mc.Type]
		if set == nil {
			set = make(map[int64]bool)
			truthByType[mc.Type] = set
		}
		for _, id := range mc.ComponentIDs {
			set[id] = true
		}
	}
	for p := range partitions {
		r.Partitions = append(r.Partitions, p)
	}
	slices.Sort(r.Partitions)

	var scored []furniture.DetectedObject
	detByType := make(map[furniture.ObjectType]map[int64]bool)
	exact := make(map[string]furniture.ObjectType)
	for _, d := range detections {
		if !partitions[d.Partition] {
			continue
		}
		scored = append(scored, d)
		set := detByType[d.Type]
		if set == nil {
			set = make(map[int64]bool)
			detByType[d.Type] = set
		}
		for _, id := range d.Members {
			set[id] = true
		}
		exact[memberKey(d.Members)] = d.Type
	}

	for _, typ := range []furniture.ObjectType{furniture.TypeBench, furniture.TypeTrashBin} {
		var s TypeScore
		for id := range truthByType[typ] {
			if detByType[typ][id] {
				s.TruePositives++
			} else {
				s.FalseNegatives++
			}
		}
		for id := range detByType[typ] {
			if !truthByType[typ][id] {
				s.FalsePositives++
			}
		}
		if s != (TypeScore{}) {
			r.ByType[typ] = s
		}
	}

	jaccards := make([]float64, 0, len(truth))
	for _, mc := range truth {
		cs := r.ByComponentCount[len(mc.ComponentIDs)]
		cs.Total++
		if typ, ok := exact[memberKey(mc.ComponentIDs)]; ok && typ == mc.Type {
			cs.Exact++
		}
		r.ByComponentCount[len(mc.ComponentIDs)] = cs

		best := 0.0
		for _, d := range scored {
			if d.Type == mc.Type {
				best = max(best, jaccard(mc.ComponentIDs, d.Members))
			}
		}
		jaccards = append(jaccards, best)
	}
	if len(jaccards) > 0 {
		r.MeanBestJaccard = stat.Mean(jaccards, nil)
	}
	return r
}

func memberKey(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

func jaccard(a, b []int64) float64 {
	set := make(map[int64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[int64]bool, len(b))
	for _, id := range b {
		if seen[id] {
			continue
		}
		seen[id] = true
		if set[id] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// String renders a short multi-line report.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "partitions: %v\n", r.Partitions)
	for _, typ := range []furniture.ObjectType{furniture.TypeBench, furniture.TypeTrashBin} {
		s, ok := r.ByType[typ]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: tp=%d fn=%d fp=%d recall=%.3f precision=%.3f\n",
			typ, s.TruePositives, s.FalseNegatives, s.FalsePositives, s.Recall(), s.Precision())
	}
	sizes := make([]int, 0, len(r.ByComponentCount))
	for n := range r.ByComponentCount {
		sizes = append(sizes, n)
	}
	slices.Sort(sizes)
	for _, n := range sizes {
		cs := r.ByComponentCount[n]
		fmt.Fprintf(&b, "%d-component clusters: %d/%d exact\n", n, cs.Exact, cs.Total)
	}
	fmt.Fprintf(&b, "mean best jaccard: %.3f", r.MeanBestJaccard)
	return b.String()
}
