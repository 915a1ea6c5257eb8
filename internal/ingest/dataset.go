// Package ingest reads the municipal street-furniture export and the
// manually validated clusters used for evaluation.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/monitoring"
	"github.com/ousposer/ousposer/internal/pipeline"
)

// ErrUnsupportedGeometry is returned for records whose shape is not a single
// polyline.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// record is one element of the export array.
type record struct {
	ObjectID       json.Number     `json:"objectid"`
	GeoShape       json.RawMessage `json:"geo_shape"`
	Arrondissement json.RawMessage `json:"arrondissement"`
}

// LoadStats counts what happened to the input records.
type LoadStats struct {
	Records    int
	Components int
	Skipped    int
}

// Dataset holds components grouped by partition. It implements
// pipeline.Source.
type Dataset struct {
	byPartition map[int][]*furniture.Component
	skipped     map[int]int
	Stats       LoadStats
}

// LoadDataset decodes the JSON array export record by record. Malformed
// records are logged and counted but never abort the load; only an
// unreadable stream is an error.
func LoadDataset(r io.Reader) (*Dataset, error) {
	ds := &Dataset{
		byPartition: make(map[int][]*furniture.Component),
		skipped:     make(map[int]int),
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("read dataset: expected JSON array, got %v", tok)
	}

	seen := make(map[int64]bool)
	for dec.More() {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("read dataset record %d: %w", ds.Stats.Records+1, err)
		}
		ds.Stats.Records++

		comp, partition, err := parseRecord(rec)
		if err == nil && seen[comp.ID] {
			err = fmt.Errorf("duplicate objectid %d", comp.ID)
		}
		if err != nil {
			monitoring.Warnf("[ingest] skipping record %d (objectid %q): %v", ds.Stats.Records, rec.ObjectID, err)
			ds.Stats.Skipped++
			if partition > 0 {
				ds.skipped[partition]++
			}
			continue
		}
		seen[comp.ID] = true
		ds.byPartition[partition] = append(ds.byPartition[partition], comp)
		ds.Stats.Components++
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	for p := range ds.byPartition {
		sortComponents(ds.byPartition[p])
	}
	monitoring.Logf("[ingest] %d records, %d components, %d skipped, %d partitions",
		ds.Stats.Records, ds.Stats.Components, ds.Stats.Skipped, len(ds.byPartition))
	return ds, nil
}

// parseRecord returns the component and its partition. The partition is
// returned even when the geometry is bad so the skip can be attributed.
func parseRecord(rec record) (*furniture.Component, int, error) {
	partition, err := ParseArrondissement(rec.Arrondissement)
	if err != nil {
		return nil, 0, err
	}
	id, err := rec.ObjectID.Int64()
	if err != nil {
		return nil, partition, fmt.Errorf("objectid: %w", err)
	}
	ls, err := parseShape(rec.GeoShape)
	if err != nil {
		return nil, partition, err
	}
	comp, err := furniture.NewComponent(id, partition, ls)
	if err != nil {
		return nil, partition, err
	}
	return comp, partition, nil
}

// parseShape accepts a GeoJSON Feature or bare Geometry holding a
// LineString, or a MultiLineString with exactly one part.
func parseShape(raw json.RawMessage) (orb.LineString, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, fmt.Errorf("%w: missing geo_shape", ErrUnsupportedGeometry)
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("geo_shape: %w", err)
	}

	var geom orb.Geometry
	if head.Type == "Feature" {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("geo_shape feature: %w", err)
		}
		geom = f.Geometry
	} else {
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("geo_shape geometry: %w", err)
		}
		geom = g.Geometry()
	}

	switch g := geom.(type) {
	case orb.LineString:
		return g, nil
	case orb.MultiLineString:
		if len(g) == 1 {
			return g[0], nil
		}
		return nil, fmt.Errorf("%w: multilinestring with %d parts", ErrUnsupportedGeometry, len(g))
	case nil:
		return nil, fmt.Errorf("%w: empty geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// ParseArrondissement accepts a number (11), a numeric string ("11",
// "11e") or a Paris postal code (75011, "75116").
func ParseArrondissement(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, errors.New("missing arrondissement")
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("arrondissement %q is not numeric", s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("arrondissement %q: %w", s, err)
	}
	if n >= 75001 && n <= 75020 {
		n -= 75000
	} else if n == 75116 {
		n = 16
	}
	if n < furniture.MinPartition || n > furniture.MaxPartition {
		return 0, fmt.Errorf("arrondissement %q out of range", s)
	}
	return n, nil
}

func sortComponents(comps []*furniture.Component) {
	slices.SortFunc(comps, func(a, b *furniture.Component) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// Partitions lists the partitions present, ascending.
func (d *Dataset) Partitions(context.Context) ([]int, error) {
	keys := make([]int, 0, len(d.byPartition))
	for k := range d.byPartition {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// LoadPartition returns the partition's components sorted by id.
func (d *Dataset) LoadPartition(_ context.Context, partition int) (pipeline.PartitionData, error) {
	return pipeline.PartitionData{
		Partition:  partition,
		Components: slices.Clone(d.byPartition[partition]),
		Skipped:    d.skipped[partition],
	}, nil
}

// Components returns every component ordered by partition then id.
func (d *Dataset) Components() []*furniture.Component {
	keys, _ := d.Partitions(context.Background())
	var out []*furniture.Component
	for _, k := range keys {
		out = append(out, d.byPartition[k]...)
	}
	return out
}

var _ pipeline.Source = (*Dataset)(nil)
