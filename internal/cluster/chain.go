package cluster

import (
	"fmt"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/spatial"
)

// ChainParams configures chain following.
type ChainParams struct {
	ToleranceMeters float64
	MaxLength       int
	Index           spatial.IndexParams
}

// ChainClusterer grows one object at a time from a seed by repeatedly
// attaching the smallest-id unused component that touches any vertex of
// the chain. Chains stop at MaxLength or when no neighbour remains.
type ChainClusterer struct {
	params ChainParams
}

// NewChainClusterer creates a chain-following clusterer.
func NewChainClusterer(params ChainParams) *ChainClusterer {
	return &ChainClusterer{params: params}
}

// Name identifies the strategy and its tolerance.
func (c *ChainClusterer) Name() string {
	return fmt.Sprintf("chain(tol=%.2f,max=%d)", c.params.ToleranceMeters, c.params.MaxLength)
}

// Params returns the chain parameters.
func (c *ChainClusterer) Params() ChainParams {
	return c.params
}

// Cluster walks chains per partition. Every component ends up in exactly
// one cluster; isolated components form singletons.
func (c *ChainClusterer) Cluster(components []*furniture.Component) []Cluster {
	return perPartition(components, c.clusterPartition)
}

func (c *ChainClusterer) clusterPartition(comps []*furniture.Component) []Cluster {
	byID := make(map[int64]*furniture.Component, len(comps))
	for _, comp := range comps {
		byID[comp.ID] = comp
	}
	idx := spatial.NewVertexIndex(comps, c.params.Index)

	maxLen := c.params.MaxLength
	if maxLen < 1 {
		maxLen = 1
	}

	used := make(map[int64]bool, len(comps))
	var clusters []Cluster
	for _, seed := range comps {
		if used[seed.ID] {
			continue
		}
		used[seed.ID] = true
		chain := []*furniture.Component{seed}

		for len(chain) < maxLen {
			next, ok := c.nextLink(idx, chain, used)
			if !ok {
				break
			}
			used[next] = true
			chain = append(chain, byID[next])
		}
		clusters = append(clusters, Cluster{Members: sortByID(chain)})
	}
	return clusters
}

// nextLink returns the smallest unused component id near any chain member.
func (c *ChainClusterer) nextLink(idx *spatial.VertexIndex, chain []*furniture.Component, used map[int64]bool) (int64, bool) {
	var best int64
	found := false
	for _, m := range chain {
		for _, id := range idx.FindComponentsNear(m.ID, c.params.ToleranceMeters) {
			if used[id] {
				continue
			}
			if !found || id < best {
				best, found = id, true
			}
			break // ids are ascending
		}
	}
	return best, found
}

// Verify at compile time that *ChainClusterer implements Clusterer.
var _ Clusterer = (*ChainClusterer)(nil)
