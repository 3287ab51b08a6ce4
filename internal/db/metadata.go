//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/pkg/version"
)

const metadataTable = "rfm_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS rfm_metadata (
    run_id UUID NOT NULL,
    key    TEXT NOT NULL,
    value  TEXT NOT NULL,
    PRIMARY KEY (run_id, key)
)`

// Run describes one stored analysis.
type Run struct {
	ID        uuid.UUID
	Source    string
	Table     string
	Quantiles int
	Customers int
}

// SaveMetadata records a stored run in the metadata table.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool, run Run) error {
	// Create table if it doesn't exist
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"version":       version.Short(),
		"created_at":    time.Now().UTC().Format(time.RFC3339),
		"source":        run.Source,
		"results_table": run.Table,
		"quantiles":     strconv.Itoa(run.Quantiles),
		"customers":     strconv.Itoa(run.Customers),
	}

	id := pgtype.UUID{Bytes: [16]byte(run.ID), Valid: true}
	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO rfm_metadata (run_id, key, value) VALUES ($1, $2, $3)
            ON CONFLICT (run_id, key) DO UPDATE SET value = EXCLUDED.value
        `, id, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("run_id", run.ID.String()).
		Str("source", run.Source).
		Msg("Saved metadata")

	return nil
}

// GetMetadata retrieves the metadata of one run as a map.
func GetMetadata(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM rfm_metadata WHERE run_id = $1`,
		pgtype.UUID{Bytes: [16]byte(runID), Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
