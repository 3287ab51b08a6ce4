//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source loads transaction logs from files and databases.
package source

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

// Columns names the customer, date and revenue columns of a source.
type Columns struct {
	Customer string
	Date     string
	Revenue  string

	// DateFormat is a Go time layout. Empty means try DateLayouts.
	DateFormat string
}

// Options describes where and how a Loader reads transactions.
type Options struct {
	// Path is the file to read (csv, xlsx, sqlite).
	Path string

	// Sheet is the worksheet to read (xlsx).
	Sheet string

	// Delimiter is the field separator (csv). Zero means a comma.
	Delimiter rune

	// Connection is a PostgreSQL connection string (postgres).
	Connection string

	// Table and Query select the rows to read (sqlite, postgres).
	// Query wins when both are set.
	Table string
	Query string

	Columns Columns
}

// Name returns a short human readable description of the source.
func (o Options) Name() string {
	switch {
	case o.Path != "" && o.Table != "":
		return o.Path + ":" + o.Table
	case o.Path != "":
		return o.Path
	case o.Table != "":
		return o.Table
	case o.Query != "":
		return "query"
	}
	return "transactions"
}

// Loader reads transactions from one kind of source.
type Loader interface {
	// Kind returns the source kind, e.g. "csv".
	Kind() string

	// Description returns a one line description for listings.
	Description() string

	// Load reads and validates every transaction. Failures are reported as
	// *rfm.InputFileError or *rfm.SchemaError.
	Load(ctx context.Context, opts Options) ([]rfm.Transaction, error)
}

// Dataset is a fully loaded and validated transaction log.
type Dataset struct {
	kind string
	name string
	txs  []rfm.Transaction
}

// Open loads the source of the given kind. It returns either a complete
// dataset or an error, never a partially read one.
func Open(ctx context.Context, kind string, opts Options) (*Dataset, error) {
	loader, err := Get(kind)
	if err != nil {
		return nil, err
	}
	if opts.Columns.Customer == "" || opts.Columns.Date == "" || opts.Columns.Revenue == "" {
		return nil, fmt.Errorf("customer, date and revenue column names are required")
	}

	logging.Debug().
		Str("kind", kind).
		Str("source", opts.Name()).
		Msg("Loading transactions")

	txs, err := loader.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	ds := NewDataset(kind, opts.Name(), txs)
	logging.Info().
		Str("source", ds.name).
		Int("transactions", len(txs)).
		Int("customers", ds.Customers()).
		Msg("Loaded transactions")

	return ds, nil
}

// NewDataset wraps transactions that are already in memory.
func NewDataset(kind, name string, txs []rfm.Transaction) *Dataset {
	return &Dataset{kind: kind, name: name, txs: txs}
}

// Kind returns the source kind the dataset was loaded from.
func (d *Dataset) Kind() string { return d.kind }

// Name describes where the dataset was loaded from.
func (d *Dataset) Name() string { return d.name }

// Len returns the number of transactions.
func (d *Dataset) Len() int { return len(d.txs) }

// Transactions returns the loaded transactions. Callers must not modify
// the returned slice.
func (d *Dataset) Transactions() []rfm.Transaction { return d.txs }

// Customers returns the number of distinct customers.
func (d *Dataset) Customers() int {
	seen := make(map[string]struct{})
	for _, tx := range d.txs {
		seen[tx.Customer] = struct{}{}
	}
	return len(seen)
}

// Revenues returns the raw revenue of every transaction.
func (d *Dataset) Revenues() []float64 {
	return rfm.Revenues(d.txs)
}

// Table builds the RFM table of the dataset.
func (d *Dataset) Table(quantiles int) (*rfm.Table, error) {
	table, err := rfm.Build(d.txs, quantiles)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Int("customers", len(table.Rows)).
		Int("quantiles", quantiles).
		Time("max_date", table.MaxDate).
		Msg("Built RFM table")
	return table, nil
}
