package pipeline

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ousposer/ousposer/internal/furniture"
)

// RunSummary aggregates a detection run.
type RunSummary struct {
	Partitions []PartitionStats

	Components int
	Skipped    int
	Objects    int
	ByType     map[furniture.ObjectType]int
	BySubtype  map[furniture.Subtype]int

	MeanConfidence   float64
	StdDevConfidence float64
	// MeanMembers is the average component count per object.
	MeanMembers float64
	Duration    time.Duration
}

func (s RunSummary) String() string {
	return fmt.Sprintf("%d partitions, %d components (%d skipped), %d objects (%d benches, %d trash bins), confidence %.3f±%.3f",
		len(s.Partitions), s.Components, s.Skipped, s.Objects,
		s.ByType[furniture.TypeBench], s.ByType[furniture.TypeTrashBin],
		s.MeanConfidence, s.StdDevConfidence)
}

func summarize(parts []PartitionStats, objects [][]furniture.DetectedObject) RunSummary {
	s := RunSummary{
		Partitions: parts,
		ByType:     make(map[furniture.ObjectType]int),
		BySubtype:  make(map[furniture.Subtype]int),
	}

	durations := make([]float64, 0, len(parts))
	for _, p := range parts {
		s.Components += p.Components
		s.Skipped += p.Skipped
		durations = append(durations, float64(p.Duration))
	}
	s.Duration = time.Duration(floats.Sum(durations))

	var confidences, members []float64
	for _, objs := range objects {
		for _, o := range objs {
			s.ByType[o.Type]++
			s.BySubtype[o.Subtype]++
			confidences = append(confidences, o.Confidence)
			members = append(members, float64(len(o.Members)))
		}
	}
	s.Objects = len(confidences)
	if s.Objects > 0 {
		s.MeanConfidence, s.StdDevConfidence = stat.MeanStdDev(confidences, nil)
		s.MeanMembers = stat.Mean(members, nil)
	}
	if s.Objects < 2 {
		s.StdDevConfidence = 0
	}
	return s
}
