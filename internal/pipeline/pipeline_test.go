package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ousposer/ousposer/internal/classify"
	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/monitoring"
	"github.com/ousposer/ousposer/internal/testutil"
	"github.com/ousposer/ousposer/internal/timeutil"
)

type fakeSource struct {
	mu      sync.Mutex
	data    map[int]PartitionData
	loadErr error
	loaded  []int
}

func (f *fakeSource) Partitions(context.Context) ([]int, error) {
	var out []int
	for p := range f.data {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeSource) LoadPartition(_ context.Context, p int) (PartitionData, error) {
	f.mu.Lock()
	f.loaded = append(f.loaded, p)
	f.mu.Unlock()
	if f.loadErr != nil {
		return PartitionData{}, f.loadErr
	}
	return f.data[p], nil
}

type failingSink struct{}

func (failingSink) ReplacePartition(context.Context, int, []furniture.DetectedObject) error {
	return errors.New("disk full")
}

func quietLogs(t *testing.T) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

func newClassifier(t *testing.T) *classify.Classifier {
	t.Helper()
	c, err := classify.New(classify.MustDefaultParams())
	require.NoError(t, err)
	return c
}

// scene returns a partition with one 4-sided frame and one 7-point bench.
func scene(t *testing.T, partition int, firstID int64) PartitionData {
	t.Helper()
	lines := testutil.RectangleSides(testutil.Offset(0, 0), 2.0, 0.8, 30)
	lines = append(lines, testutil.Rectangle(testutil.Offset(15, 0), 2.32, 1.60, 0, 7))
	return PartitionData{Partition: partition, Components: testutil.Components(t, firstID, partition, lines...)}
}

func TestDetector_Run(t *testing.T) {
	quietLogs(t)
	src := &fakeSource{data: map[int]PartitionData{
		3: scene(t, 3, 100),
		1: scene(t, 1, 1),
		7: {Partition: 7},
	}}
	sink := NewMemorySink()

	summary, err := NewDetector(newClassifier(t), src, sink, Options{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Partitions, 3)
	assert.Equal(t, []int{1, 3, 7}, []int{summary.Partitions[0].Partition, summary.Partitions[1].Partition, summary.Partitions[2].Partition})
	assert.Equal(t, 4, summary.Objects)
	assert.Equal(t, 4, summary.ByType[furniture.TypeBench])
	assert.Equal(t, 2, summary.BySubtype[furniture.SubtypeSingle7Point])
	assert.Equal(t, 10, summary.Components)
	assert.InDelta(t, 0.94, summary.MeanConfidence, 1e-9)
	assert.InDelta(t, 2.5, summary.MeanMembers, 1e-9)

	assert.Len(t, sink.Partition(1), 2)
	assert.Len(t, sink.Partition(3), 2)
	assert.Empty(t, sink.Partition(7), "empty partition yields an empty result")
	assert.Equal(t, 3, sink.Writes())
}

func TestDetector_PartitionIsolation(t *testing.T) {
	quietLogs(t)
	src := &fakeSource{data: map[int]PartitionData{
		1: scene(t, 1, 1),
		2: scene(t, 2, 100),
	}}
	sink := NewMemorySink()
	_, err := NewDetector(newClassifier(t), src, sink, Options{Workers: 2}).Run(context.Background())
	require.NoError(t, err)

	for _, p := range []int{1, 2} {
		for _, obj := range sink.Partition(p) {
			assert.Equal(t, p, obj.Partition)
			for _, id := range obj.Members {
				if p == 1 {
					assert.Less(t, id, int64(100))
				} else {
					assert.GreaterOrEqual(t, id, int64(100))
				}
			}
		}
	}
}

func TestDetector_SkipsForeignAndDuplicateComponents(t *testing.T) {
	quietLogs(t)
	data := scene(t, 4, 1)
	foreign := testutil.Component(t, 50, 5, testutil.Segment(0, 0, 1, 0))
	data.Components = append(data.Components, foreign, data.Components[0])
	data.Skipped = 2 // malformed records reported by the source

	src := &fakeSource{data: map[int]PartitionData{4: data}}
	summary, err := NewDetector(newClassifier(t), src, NewMemorySink(), Options{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Partitions, 1)
	assert.Equal(t, 4, summary.Partitions[0].Skipped)
	assert.Equal(t, 5, summary.Partitions[0].Components)
	assert.Equal(t, 2, summary.Objects)
}

func TestDetector_Idempotent(t *testing.T) {
	quietLogs(t)
	src := &fakeSource{data: map[int]PartitionData{1: scene(t, 1, 1)}}
	sink := NewMemorySink()
	d := NewDetector(newClassifier(t), src, sink, Options{})

	_, err := d.Run(context.Background())
	require.NoError(t, err)
	first := sink.Partition(1)

	_, err = d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, sink.Partition(1))
}

func TestDetector_SelectedPartitions(t *testing.T) {
	quietLogs(t)
	src := &fakeSource{data: map[int]PartitionData{1: scene(t, 1, 1), 2: scene(t, 2, 100)}}
	summary, err := NewDetector(newClassifier(t), src, NewMemorySink(), Options{Partitions: []int{2, 9}}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Partitions, 1)
	assert.Equal(t, 2, summary.Partitions[0].Partition)
	assert.Equal(t, []int{2}, src.loaded)
}

func TestDetector_Errors(t *testing.T) {
	quietLogs(t)
	loadErr := errors.New("connection refused")
	src := &fakeSource{data: map[int]PartitionData{1: {}}, loadErr: loadErr}
	_, err := NewDetector(newClassifier(t), src, NewMemorySink(), Options{}).Run(context.Background())
	assert.ErrorIs(t, err, loadErr)

	src = &fakeSource{data: map[int]PartitionData{1: scene(t, 1, 1)}}
	_, err = NewDetector(newClassifier(t), src, failingSink{}, Options{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store partition 1")
}

func TestDetector_Cancelled(t *testing.T) {
	quietLogs(t)
	src := &fakeSource{data: map[int]PartitionData{1: scene(t, 1, 1), 2: scene(t, 2, 100)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector(newClassifier(t), src, NewMemorySink(), Options{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.loaded)
}

func TestDetector_Durations(t *testing.T) {
	quietLogs(t)
	src := &fakeSource{data: map[int]PartitionData{1: scene(t, 1, 1), 2: scene(t, 2, 100)}}
	clock := timeutil.NewSteppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 40*time.Millisecond)

	summary, err := NewDetector(newClassifier(t), src, NewMemorySink(), Options{Clock: clock}).Run(context.Background())
	require.NoError(t, err)
	for _, p := range summary.Partitions {
		assert.Equal(t, 40*time.Millisecond, p.Duration)
	}
	assert.Equal(t, 80*time.Millisecond, summary.Duration)
}

func TestSummarize_Empty(t *testing.T) {
	s := summarize(nil, nil)
	assert.Zero(t, s.Objects)
	assert.Zero(t, s.MeanConfidence)
	assert.Zero(t, s.StdDevConfidence)
	assert.Contains(t, s.String(), "0 objects")
}
