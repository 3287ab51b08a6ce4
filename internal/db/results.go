//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

// resultColumns are written by SaveResults, in order.
var resultColumns = []string{
	"run_id", "customer", "recency", "frequency", "monetary",
	"r", "f", "m", "rfm_score", "rfm_segment", "segment_name",
}

// Identifier turns a possibly schema qualified table name into a pgx
// identifier.
func Identifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

// CreateResultsTable creates the results table if it doesn't exist.
func CreateResultsTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id       UUID NOT NULL,
            customer     TEXT NOT NULL,
            recency      INTEGER NOT NULL,
            frequency    INTEGER NOT NULL,
            monetary     DOUBLE PRECISION NOT NULL,
            r            SMALLINT NOT NULL,
            f            SMALLINT NOT NULL,
            m            SMALLINT NOT NULL,
            rfm_score    SMALLINT NOT NULL,
            rfm_segment  TEXT NOT NULL,
            segment_name TEXT NOT NULL,
            PRIMARY KEY (run_id, customer)
        )`, Identifier(table).Sanitize()))
	if err != nil {
		return fmt.Errorf("failed to create results table %s: %w", table, err)
	}
	return nil
}

// SaveResults bulk loads rows into table, tagged with runID. The table is
// created when missing.
func SaveResults(ctx context.Context, pool *pgxpool.Pool, table string, runID uuid.UUID, rows []rfm.Row) (int64, error) {
	if err := CreateResultsTable(ctx, pool, table); err != nil {
		return 0, err
	}

	id := pgtype.UUID{Bytes: [16]byte(runID), Valid: true}
	count, err := pool.CopyFrom(ctx, Identifier(table), resultColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				id, r.Customer, int32(r.Recency), int32(r.Frequency), r.Monetary,
				int16(r.R), int16(r.F), int16(r.M), int16(r.Score), r.Segment, r.SegmentName,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy results into %s: %w", table, err)
	}

	logging.Info().
		Str("table", table).
		Str("run_id", runID.String()).
		Int64("rows", count).
		Msg("Saved RFM results")

	return count, nil
}

// LoadResults reads back the rows of one run in display order.
func LoadResults(ctx context.Context, pool *pgxpool.Pool, table string, runID uuid.UUID) ([]rfm.Row, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`
        SELECT customer, recency, frequency, monetary, r, f, m,
               rfm_score, rfm_segment, segment_name
        FROM %s
        WHERE run_id = $1
        ORDER BY rfm_segment DESC, customer`, Identifier(table).Sanitize()),
		pgtype.UUID{Bytes: [16]byte(runID), Valid: true})
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (rfm.Row, error) {
		var r rfm.Row
		var recency, frequency int32
		var rs, fs, ms, score int16
		err := row.Scan(&r.Customer, &recency, &frequency, &r.Monetary,
			&rs, &fs, &ms, &score, &r.Segment, &r.SegmentName)
		r.Recency, r.Frequency = int(recency), int(frequency)
		r.R, r.F, r.M, r.Score = int(rs), int(fs), int(ms), int(score)
		return r, err
	})
}
