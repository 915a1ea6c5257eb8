package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/monitoring"
)

// ManualCluster is one hand-validated object from the ground-truth file.
type ManualCluster struct {
	ID           string
	Type         furniture.ObjectType
	ComponentIDs []int64
	Partition    int
}

type manualRecord struct {
	ID             json.RawMessage `json:"id"`
	Type           string          `json:"type"`
	ComponentIDs   []int64         `json:"component_ids"`
	ComponentCount int             `json:"component_count"`
	Arrondissement json.RawMessage `json:"arrondissement"`
}

// manualType maps the labels used in the validation file.
func manualType(label string) (furniture.ObjectType, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bench", "benches", "banc", "bancs":
		return furniture.TypeBench, true
	case "trash_bin", "trash_bins", "trash-bin", "trash-bins", "trash_can", "trash-cans", "poubelle", "poubelles":
		return furniture.TypeTrashBin, true
	}
	return "", false
}

// LoadManualClusters reads the ground-truth clusters. Entries with an
// unknown type, no components, or a component_count that disagrees with
// the id list are skipped with a warning.
func LoadManualClusters(r io.Reader) ([]ManualCluster, error) {
	var recs []manualRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("read manual clusters: %w", err)
	}

	out := make([]ManualCluster, 0, len(recs))
	for i, rec := range recs {
		id := strings.Trim(string(rec.ID), `"`)
		typ, ok := manualType(rec.Type)
		if !ok {
			monitoring.Warnf("[ingest] manual cluster %s: unknown type %q", id, rec.Type)
			continue
		}
		if len(rec.ComponentIDs) == 0 {
			monitoring.Warnf("[ingest] manual cluster %s: no components", id)
			continue
		}
		if rec.ComponentCount != 0 && rec.ComponentCount != len(rec.ComponentIDs) {
			monitoring.Warnf("[ingest] manual cluster %s: component_count %d but %d ids", id, rec.ComponentCount, len(rec.ComponentIDs))
			continue
		}
		partition, err := ParseArrondissement(rec.Arrondissement)
		if err != nil {
			monitoring.Warnf("[ingest] manual cluster %s: %v", id, err)
			continue
		}
		if id == "" {
			id = fmt.Sprintf("manual-%d", i+1)
		}
		ids := slices.Clone(rec.ComponentIDs)
		slices.Sort(ids)
		out = append(out, ManualCluster{ID: id, Type: typ, ComponentIDs: ids, Partition: partition})
	}
	return out, nil
}
