package cluster

import (
	"fmt"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/spatial"
)

// DBSCANParams configures density clustering over components.
type DBSCANParams struct {
	Eps    float64 // Neighbourhood radius in metres
	MinPts int     // Minimum components (self included) to form a cluster
	Index  spatial.IndexParams
}

// DBSCANClusterer implements Clusterer using DBSCAN where the points are
// components. Two components are neighbours when any vertex of one lies
// within Eps of any vertex of the other.
type DBSCANClusterer struct {
	params DBSCANParams
}

// NewDBSCANClusterer creates a density clusterer.
func NewDBSCANClusterer(params DBSCANParams) *DBSCANClusterer {
	return &DBSCANClusterer{params: params}
}

// Name identifies the strategy and its radius.
func (c *DBSCANClusterer) Name() string {
	return fmt.Sprintf("dbscan(eps=%.2f)", c.params.Eps)
}

// Params returns the clustering parameters.
func (c *DBSCANClusterer) Params() DBSCANParams {
	return c.params
}

// Cluster runs DBSCAN per partition. Noise components are omitted; with
// MinPts of 1 every component belongs to a cluster.
func (c *DBSCANClusterer) Cluster(components []*furniture.Component) []Cluster {
	return perPartition(components, c.clusterPartition)
}

func (c *DBSCANClusterer) clusterPartition(comps []*furniture.Component) []Cluster {
	n := len(comps)
	pos := make(map[int64]int, n)
	for i, comp := range comps {
		pos[comp.ID] = i
	}

	idx := spatial.NewVertexIndex(comps, c.params.Index)
	regionQuery := func(i int) []int {
		ids := idx.FindComponentsNear(comps[i].ID, c.params.Eps)
		out := make([]int, 0, len(ids)+1)
		out = append(out, i)
		for _, id := range ids {
			if j, ok := pos[id]; ok {
				out = append(out, j)
			}
		}
		return out
	}

	labels := make([]int, n) // 0=unvisited, -1=noise, >0=clusterID
	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}
		neighbors := regionQuery(i)
		if len(neighbors) < c.params.MinPts {
			labels[i] = -1
			continue
		}
		clusterID++
		expandCluster(regionQuery, labels, i, neighbors, clusterID, c.params.MinPts)
	}

	clusters := make([]Cluster, 0, clusterID)
	members := make([][]*furniture.Component, clusterID+1)
	for i, l := range labels {
		if l > 0 {
			members[l] = append(members[l], comps[i])
		}
	}
	for cid := 1; cid <= clusterID; cid++ {
		if len(members[cid]) > 0 {
			// comps is sorted by id, so members already are
			clusters = append(clusters, Cluster{Members: members[cid]})
		}
	}
	return clusters
}

// expandCluster grows a cluster from a core component.
func expandCluster(regionQuery func(int) []int, labels []int, seed int, neighbors []int, clusterID, minPts int) {
	labels[seed] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == -1 {
			labels[idx] = clusterID // noise becomes border
		}
		if labels[idx] != 0 {
			continue
		}

		labels[idx] = clusterID
		next := regionQuery(idx)
		if len(next) >= minPts {
			neighbors = append(neighbors, next...)
		}
	}
}

// Verify at compile time that *DBSCANClusterer implements Clusterer.
var _ Clusterer = (*DBSCANClusterer)(nil)
