//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package postgres reads transactions from a PostgreSQL table or query.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-rfm/internal/db"
	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/internal/source"
)

func init() {
	source.Register(&Loader{})
}

// Loader implements source.Loader for PostgreSQL.
type Loader struct{}

// Kind returns the source kind.
func (l *Loader) Kind() string {
	return "postgres"
}

// Description returns a description of the source.
func (l *Loader) Description() string {
	return "PostgreSQL table or custom query"
}

// Load runs opts.Query, or selects every row of opts.Table, over a single
// connection.
func (l *Loader) Load(ctx context.Context, opts source.Options) ([]rfm.Transaction, error) {
	where := db.Describe(opts.Connection)

	query, err := SelectQuery(opts)
	if err != nil {
		return nil, err
	}

	conn, err := db.ConnectSingle(ctx, opts.Connection)
	if err != nil {
		return nil, &rfm.InputFileError{Path: where, Err: err}
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Failed to close connection")
		}
	}()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, &rfm.InputFileError{Path: where, Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	if fields == nil {
		rows.Close()
		return nil, &rfm.InputFileError{Path: where, Err: fmt.Errorf("query failed: %w", rows.Err())}
	}
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}
	header, err := source.NewHeader(names, opts.Columns)
	if err != nil {
		return nil, err
	}

	var txs []rfm.Transaction
	for row := 1; rows.Next(); row++ {
		values, err := rows.Values()
		if err != nil {
			return nil, &rfm.InputFileError{Path: where, Err: err}
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		tx, err := header.FromValues(row, values)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &rfm.InputFileError{Path: where, Err: err}
	}

	return txs, nil
}

// SelectQuery returns the statement that reads the transactions. Table may
// be schema qualified.
func SelectQuery(opts source.Options) (string, error) {
	if opts.Query != "" {
		return opts.Query, nil
	}
	if opts.Table == "" {
		return "", fmt.Errorf("table or query is required for postgres sources")
	}
	return "SELECT * FROM " + db.Identifier(opts.Table).Sanitize(), nil
}

// normalize converts pgx values the row parser does not know about.
func normalize(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int16:
		return int64(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time
	}
	return v
}
