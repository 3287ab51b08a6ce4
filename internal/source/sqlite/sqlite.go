//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlite reads transactions from a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/internal/source"
)

func init() {
	source.Register(&Loader{})
}

// Loader implements source.Loader for SQLite databases.
type Loader struct{}

// Kind returns the source kind.
func (l *Loader) Kind() string {
	return "sqlite"
}

// Description returns a description of the source.
func (l *Loader) Description() string {
	return "SQLite database file; reads a table or a custom query"
}

// Load runs opts.Query, or selects every row of opts.Table.
func (l *Loader) Load(ctx context.Context, opts source.Options) ([]rfm.Transaction, error) {
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}

	query, err := selectQuery(opts)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}
	header, err := source.NewHeader(names, opts.Columns)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}

	var txs []rfm.Transaction
	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
		}
		tx, err := header.FromValues(row, values)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}

	return txs, nil
}

// selectQuery returns the statement that reads the transactions.
func selectQuery(opts source.Options) (string, error) {
	if opts.Query != "" {
		return opts.Query, nil
	}
	if opts.Table == "" {
		return "", fmt.Errorf("table or query is required for sqlite sources")
	}
	return "SELECT * FROM " + quoteIdent(opts.Table), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
