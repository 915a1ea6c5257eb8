package db

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/monitoring"
	"github.com/ousposer/ousposer/internal/pipeline"
)

// ReplacePartition swaps every stored detection for the partition inside
// one transaction, so re-running a partition never duplicates objects and a
// failed write leaves the previous result in place.
func (db *DB) ReplacePartition(ctx context.Context, partition int, objects []furniture.DetectedObject) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	// Members cascade with their object.
	result, err := tx.ExecContext(ctx, `DELETE FROM detected_objects WHERE partition = ?`, partition)
	if err != nil {
		return fmt.Errorf("failed to delete partition %d objects: %w", partition, err)
	}
	if deleted, _ := result.RowsAffected(); deleted > 0 {
		monitoring.Debugf("[db] partition %d: replaced %d objects", partition, deleted)
	}

	objStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detected_objects (
			object_id, partition, object_type, subtype, method,
			confidence, lat, lon, summary_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer objStmt.Close()

	memberStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detected_object_members (object_id, component_id) VALUES (?, ?)
	`)
	if err != nil {
		return err
	}
	defer memberStmt.Close()

	for _, o := range objects {
		if o.Partition != partition {
			return fmt.Errorf("object %s belongs to partition %d, not %d", o.ID, o.Partition, partition)
		}
		summary, err := json.Marshal(o.Summary)
		if err != nil {
			return fmt.Errorf("encode summary for %s: %w", o.ID, err)
		}
		if _, err := objStmt.ExecContext(ctx,
			o.ID, o.Partition, string(o.Type), string(o.Subtype), o.Method,
			o.Confidence, o.Location.Lat(), o.Location.Lon(), string(summary),
		); err != nil {
			return fmt.Errorf("insert object %s: %w", o.ID, err)
		}
		for _, id := range o.Members {
			if _, err := memberStmt.ExecContext(ctx, o.ID, id); err != nil {
				return fmt.Errorf("insert member %d of %s: %w", id, o.ID, err)
			}
		}
	}
	return tx.Commit()
}

// DetectedObjects reads back a partition's detections in the same order the
// classifier emits them. A partition of 0 returns every partition.
func (db *DB) DetectedObjects(ctx context.Context, partition int) ([]furniture.DetectedObject, error) {
	query := `
		SELECT object_id, partition, object_type, subtype, method,
		       confidence, lat, lon, summary_json
		FROM detected_objects`
	var args []any
	if partition != 0 {
		query += ` WHERE partition = ?`
		args = append(args, partition)
	}
	query += ` ORDER BY partition, object_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query detected objects: %w", err)
	}

	var objects []furniture.DetectedObject
	index := make(map[string]int)
	for rows.Next() {
		var o furniture.DetectedObject
		var typ, subtype, summary string
		var lat, lon float64
		if err := rows.Scan(&o.ID, &o.Partition, &typ, &subtype, &o.Method,
			&o.Confidence, &lat, &lon, &summary); err != nil {
			rows.Close()
			return nil, err
		}
		o.Type = furniture.ObjectType(typ)
		o.Subtype = furniture.Subtype(subtype)
		o.Location = orb.Point{lon, lat}
		if err := json.Unmarshal([]byte(summary), &o.Summary); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode summary for %s: %w", o.ID, err)
		}
		index[o.ID] = len(objects)
		objects = append(objects, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := db.loadMembers(ctx, partition, objects, index); err != nil {
		return nil, err
	}
	furniture.SortObjects(objects)
	slices.SortStableFunc(objects, func(a, b furniture.DetectedObject) int {
		return cmp.Compare(a.Partition, b.Partition)
	})
	return objects, nil
}

func (db *DB) loadMembers(ctx context.Context, partition int, objects []furniture.DetectedObject, index map[string]int) error {
	query := `
		SELECT m.object_id, m.component_id
		FROM detected_object_members m
		JOIN detected_objects o ON o.object_id = m.object_id`
	var args []any
	if partition != 0 {
		query += ` WHERE o.partition = ?`
		args = append(args, partition)
	}
	query += ` ORDER BY m.object_id, m.component_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var objectID string
		var componentID int64
		if err := rows.Scan(&objectID, &componentID); err != nil {
			return err
		}
		if i, ok := index[objectID]; ok {
			objects[i].Members = append(objects[i].Members, componentID)
		}
	}
	return rows.Err()
}

var _ pipeline.Sink = (*DB)(nil)
