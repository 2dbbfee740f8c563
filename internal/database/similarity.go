// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/shopfront/internal/metrics"
	"github.com/tomtom215/shopfront/internal/recommend"
)

// GetNeighbors returns distinct neighbors of itemIDs ranked by their best
// edge score, then by id, excluding itemIDs themselves.
func (db *DB) GetNeighbors(ctx context.Context, itemIDs []int64, limit int) (ids []int64, err error) {
	if len(itemIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_neighbors", "similarity_edges", time.Since(start), err) }()

	in := placeholders(len(itemIDs))
	query := fmt.Sprintf(`
		WITH candidates AS (
			SELECT item_id_high AS neighbor, score FROM similarity_edges WHERE item_id_low IN (%[1]s)
			UNION ALL
			SELECT item_id_low AS neighbor, score FROM similarity_edges WHERE item_id_high IN (%[1]s)
		)
		SELECT neighbor
		FROM candidates
		WHERE neighbor NOT IN (%[1]s)
		GROUP BY neighbor
		ORDER BY MAX(score) DESC, neighbor ASC
		LIMIT ?`, in)

	idArgs := int64Args(itemIDs)
	args := make([]any, 0, 3*len(idArgs)+1)
	args = append(args, idArgs...)
	args = append(args, idArgs...)
	args = append(args, idArgs...)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceAll swaps the whole edge set in one transaction. On any error the
// previous graph stays in place.
func (db *DB) ReplaceAll(ctx context.Context, edges []recommend.SimilarityEdge) error {
	start := time.Now()
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM similarity_edges`); err != nil {
			return fmt.Errorf("clear similarity edges: %w", err)
		}
		if len(edges) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO similarity_edges (item_id_low, item_id_high, score) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare edge insert: %w", err)
		}
		defer closeWithLog(stmt, "prepared statement")

		for _, e := range edges {
			if e.LowID >= e.HighID {
				return fmt.Errorf("edge (%d, %d) is not canonical", e.LowID, e.HighID)
			}
			if _, err := stmt.ExecContext(ctx, e.LowID, e.HighID, e.Score); err != nil {
				return fmt.Errorf("insert edge (%d, %d): %w", e.LowID, e.HighID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("replace_all", "similarity_edges", time.Since(start), err)
	return err
}

// GetAllEdges returns the persisted graph ordered by (low, high).
func (db *DB) GetAllEdges(ctx context.Context) ([]recommend.SimilarityEdge, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id_low, item_id_high, score
		FROM similarity_edges
		ORDER BY item_id_low, item_id_high`)
	if err != nil {
		return nil, fmt.Errorf("query similarity edges: %w", err)
	}
	defer rows.Close()

	var edges []recommend.SimilarityEdge
	for rows.Next() {
		var e recommend.SimilarityEdge
		if err := rows.Scan(&e.LowID, &e.HighID, &e.Score); err != nil {
			return nil, fmt.Errorf("scan similarity edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
