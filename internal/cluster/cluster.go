// Package cluster groups the components of one partition into candidate
// physical objects. Two strategies share the Clusterer interface: a
// chain-following walk for tightly touching frame pieces and density
// clustering for looser assemblies.
package cluster

import (
	"slices"

	"github.com/ousposer/ousposer/internal/furniture"
)

// Cluster is a set of components believed to form one object. Members are
// sorted by id.
type Cluster struct {
	Members []*furniture.Component
}

// IDs returns the member ids in ascending order.
func (c Cluster) IDs() []int64 {
	ids := make([]int64, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// Len returns the member count.
func (c Cluster) Len() int { return len(c.Members) }

// VertexPattern returns the sorted member vertex counts, e.g. [2 5].
func (c Cluster) VertexPattern() []int {
	out := make([]int, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.Features.VertexCount
	}
	slices.Sort(out)
	return out
}

// Clusterer groups components. Implementations are deterministic: the same
// input set yields the same clusters in the same order regardless of input
// order, and never mix partitions.
type Clusterer interface {
	Cluster(components []*furniture.Component) []Cluster
	Name() string
}

// ByPartition groups components by partition key, returning the keys in
// ascending order.
func ByPartition(components []*furniture.Component) ([]int, map[int][]*furniture.Component) {
	groups := make(map[int][]*furniture.Component)
	for _, c := range components {
		groups[c.Partition] = append(groups[c.Partition], c)
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, groups
}

func sortByID(comps []*furniture.Component) []*furniture.Component {
	out := slices.Clone(comps)
	slices.SortFunc(out, func(a, b *furniture.Component) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// sortClusters orders clusters by first member id.
func sortClusters(clusters []Cluster) {
	slices.SortFunc(clusters, func(a, b Cluster) int {
		switch {
		case a.Members[0].ID < b.Members[0].ID:
			return -1
		case a.Members[0].ID > b.Members[0].ID:
			return 1
		}
		return 0
	})
}

// perPartition runs fn on every single-partition group and merges the
// results in deterministic order.
func perPartition(components []*furniture.Component, fn func([]*furniture.Component) []Cluster) []Cluster {
	if len(components) == 0 {
		return nil
	}
	keys, groups := ByPartition(components)
	var out []Cluster
	for _, k := range keys {
		out = append(out, fn(sortByID(groups[k]))...)
	}
	sortClusters(out)
	return out
}
