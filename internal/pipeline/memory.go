package pipeline

import (
	"context"
	"slices"
	"sync"

	"github.com/ousposer/ousposer/internal/furniture"
)

// MemorySink keeps detections in memory, keyed by partition. It is used for
// dry runs and tests.
type MemorySink struct {
	mu      sync.Mutex
	objects map[int][]furniture.DetectedObject
	writes  int
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{objects: make(map[int][]furniture.DetectedObject)}
}

// ReplacePartition swaps the partition's detections.
func (m *MemorySink) ReplacePartition(_ context.Context, partition int, objects []furniture.DetectedObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[partition] = slices.Clone(objects)
	m.writes++
	return nil
}

// Partition returns a copy of the stored detections for one partition.
func (m *MemorySink) Partition(partition int) []furniture.DetectedObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.objects[partition])
}

// All returns every stored detection ordered by partition.
func (m *MemorySink) All() []furniture.DetectedObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]int, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var out []furniture.DetectedObject
	for _, k := range keys {
		out = append(out, m.objects[k]...)
	}
	return out
}

// Writes reports how many ReplacePartition calls succeeded.
func (m *MemorySink) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
