//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package csvfile reads transactions from delimited text files.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/internal/source"
)

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 4096

func init() {
	source.Register(&Loader{})
}

// Loader implements source.Loader for CSV files.
type Loader struct{}

// Kind returns the source kind.
func (l *Loader) Kind() string {
	return "csv"
}

// Description returns a description of the source.
func (l *Loader) Description() string {
	return "Delimited text file with a header row"
}

// Load reads every record of opts.Path.
func (l *Loader) Load(ctx context.Context, opts source.Options) ([]rfm.Transaction, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}
	defer f.Close()

	return Read(ctx, f, opts)
}

// Read parses CSV records from r. The first record is the header.
func Read(ctx context.Context, r io.Reader, opts source.Options) ([]rfm.Transaction, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &rfm.SchemaError{Column: opts.Columns.Customer, Reason: "file has no header row"}
	}
	if err != nil {
		return nil, readError(opts, 0, err)
	}

	header, err := source.NewHeader(names, opts.Columns)
	if err != nil {
		return nil, err
	}

	var txs []rfm.Transaction
	for row := 1; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(opts, row, err)
		}

		tx, err := header.FromStrings(row, record)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// readError distinguishes malformed records from I/O failures.
func readError(opts source.Options, row int, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &rfm.SchemaError{
			Column: opts.Columns.Customer,
			Row:    row,
			Reason: "malformed record",
			Err:    err,
		}
	}
	return &rfm.InputFileError{Path: opts.Path, Err: err}
}
