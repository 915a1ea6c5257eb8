// Package pipeline drives detection partition by partition: load the
// components from a Source, run the classifier, and hand the detections to
// a Sink that replaces the partition's previous result atomically.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ousposer/ousposer/internal/classify"
	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/monitoring"
	"github.com/ousposer/ousposer/internal/timeutil"
)

// PartitionData is the loaded input of one partition.
type PartitionData struct {
	Partition  int
	Components []*furniture.Component
	// Skipped counts records the source could not turn into components.
	Skipped int
}

// Source provides components grouped by partition.
type Source interface {
	Partitions(ctx context.Context) ([]int, error)
	LoadPartition(ctx context.Context, partition int) (PartitionData, error)
}

// Sink stores detections. ReplacePartition must delete the partition's
// previous objects and insert the new ones in a single transaction.
type Sink interface {
	ReplacePartition(ctx context.Context, partition int, objects []furniture.DetectedObject) error
}

// Options configure a Detector.
type Options struct {
	// Workers bounds concurrent partitions; values below 2 run sequentially.
	Workers int
	// Partitions restricts the run; empty means every partition the source
	// reports.
	Partitions []int
	// Clock times partitions; nil uses the wall clock.
	Clock timeutil.Clock
}

// PartitionStats summarises one partition.
type PartitionStats struct {
	Partition  int
	Components int
	Skipped    int
	Objects    int
	Duration   time.Duration
	Classify   classify.Stats
}

// Detector runs the classifier over a source and writes to a sink.
type Detector struct {
	classifier *classify.Classifier
	source     Source
	sink       Sink
	opts       Options
}

// NewDetector wires a detector. The classifier carries the validated
// configuration.
func NewDetector(c *classify.Classifier, src Source, sink Sink, opts Options) *Detector {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	return &Detector{classifier: c, source: src, sink: sink, opts: opts}
}

// Run processes every selected partition and returns per-partition stats in
// partition order. The context is checked before each partition starts; a
// partition already running completes. Structural failures (source or sink
// I/O) abort the run.
func (d *Detector) Run(ctx context.Context) (RunSummary, error) {
	partitions, err := d.partitions(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	workers := d.opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]PartitionStats, len(partitions))
	objects := make([][]furniture.DetectedObject, len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range partitions {
		if err := gctx.Err(); err != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, objs, err := d.runPartition(gctx, p)
			if err != nil {
				return err
			}
			results[i] = stats
			objects[i] = objs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return RunSummary{}, err
	}

	summary := summarize(results, objects)
	monitoring.Logf("[detect] %s", summary)
	return summary, nil
}

func (d *Detector) partitions(ctx context.Context) ([]int, error) {
	available, err := d.source.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	if len(d.opts.Partitions) == 0 {
		out := slices.Clone(available)
		slices.Sort(out)
		return out, nil
	}
	var out []int
	for _, p := range d.opts.Partitions {
		if slices.Contains(available, p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out, nil
}

// runPartition loads, classifies and stores one partition.
func (d *Detector) runPartition(ctx context.Context, partition int) (PartitionStats, []furniture.DetectedObject, error) {
	start := d.opts.Clock.Now()

	data, err := d.source.LoadPartition(ctx, partition)
	if err != nil {
		return PartitionStats{}, nil, fmt.Errorf("load partition %d: %w", partition, err)
	}

	comps, skipped := sanitize(partition, data.Components)
	skipped += data.Skipped

	res := d.classifier.Classify(comps)

	if err := d.sink.ReplacePartition(ctx, partition, res.Objects); err != nil {
		return PartitionStats{}, nil, fmt.Errorf("store partition %d: %w", partition, err)
	}

	stats := PartitionStats{
		Partition:  partition,
		Components: len(comps),
		Skipped:    skipped,
		Objects:    len(res.Objects),
		Duration:   d.opts.Clock.Since(start),
		Classify:   res.Stats,
	}
	monitoring.Logf("[detect] partition %d: %d components, %d skipped, %d excluded, %d benches, %d trash bins (%s)",
		partition, stats.Components, stats.Skipped, res.Stats.Excluded, res.Stats.Benches(), res.Stats.TrashBins,
		stats.Duration.Round(time.Millisecond))
	return stats, res.Objects, nil
}

// sanitize drops components that do not belong to the partition or repeat
// an id already seen. Each drop is logged and counted.
func sanitize(partition int, comps []*furniture.Component) ([]*furniture.Component, int) {
	out := make([]*furniture.Component, 0, len(comps))
	seen := make(map[int64]bool, len(comps))
	skipped := 0
	for _, c := range comps {
		switch {
		case c == nil || len(c.Vertices) < 2:
			monitoring.Warnf("[detect] partition %d: skipping malformed component", partition)
			skipped++
		case c.Partition != partition:
			monitoring.Warnf("[detect] partition %d: skipping component %d from partition %d", partition, c.ID, c.Partition)
			skipped++
		case seen[c.ID]:
			monitoring.Warnf("[detect] partition %d: skipping duplicate component %d", partition, c.ID)
			skipped++
		default:
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out, skipped
}
