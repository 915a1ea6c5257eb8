package db

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/monitoring"
	"github.com/ousposer/ousposer/internal/pipeline"
)

// ImportComponents upserts components in a single transaction. Geometry is
// stored as a GeoJSON LineString.
func (db *DB) ImportComponents(ctx context.Context, comps []*furniture.Component) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer rollback(tx)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components (component_id, partition, vertex_count, vertices_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (component_id) DO UPDATE SET
			partition = excluded.partition,
			vertex_count = excluded.vertex_count,
			vertices_json = excluded.vertices_json,
			imported_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare component insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range comps {
		raw, err := geojson.NewGeometry(c.Vertices).MarshalJSON()
		if err != nil {
			return 0, fmt.Errorf("encode component %d: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Partition, len(c.Vertices), string(raw)); err != nil {
			return 0, fmt.Errorf("insert component %d: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	monitoring.Logf("[db] imported %d components", len(comps))
	return len(comps), nil
}

// Partitions lists partitions that have at least one component.
func (db *DB) Partitions(ctx context.Context) ([]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT partition FROM components ORDER BY partition`)
	if err != nil {
		return nil, fmt.Errorf("query partitions: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LoadPartition reads a partition's components ordered by id. Rows whose
// geometry no longer decodes are skipped and counted.
func (db *DB) LoadPartition(ctx context.Context, partition int) (pipeline.PartitionData, error) {
	data := pipeline.PartitionData{Partition: partition}

	rows, err := db.QueryContext(ctx, `
		SELECT component_id, vertices_json
		FROM components
		WHERE partition = ?
		ORDER BY component_id
	`, partition)
	if err != nil {
		return data, fmt.Errorf("query components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return data, err
		}
		comp, err := decodeComponent(id, partition, raw)
		if err != nil {
			monitoring.Warnf("[db] skipping component %d: %v", id, err)
			data.Skipped++
			continue
		}
		data.Components = append(data.Components, comp)
	}
	return data, rows.Err()
}

func decodeComponent(id int64, partition int, raw string) (*furniture.Component, error) {
	g, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return nil, err
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("stored geometry is %s", g.Type)
	}
	return furniture.NewComponent(id, partition, ls)
}

var _ pipeline.Source = (*DB)(nil)
