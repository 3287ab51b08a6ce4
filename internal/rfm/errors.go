//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package rfm

import (
	"fmt"
)

// InputFileError reports a transaction source that could not be opened or
// read: a missing file, an unreadable workbook, an unreachable database.
type InputFileError struct {
	Path string
	Err  error
}

func (e *InputFileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not read input %q", e.Path)
	}
	return fmt.Sprintf("could not read input %q: %v", e.Path, e.Err)
}

func (e *InputFileError) Unwrap() error {
	return e.Err
}

// SchemaError reports input whose shape does not match the configured
// columns. Row is the 1-based data row, or 0 when the problem is with the
// header itself.
type SchemaError struct {
	Column string
	Row    int
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	if e.Row > 0 {
		msg = fmt.Sprintf("row %d, %s", e.Row, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// QuantizationError reports a metric whose values cannot be split into the
// requested number of equal-frequency buckets.
type QuantizationError struct {
	Metric    string
	Quantiles int
	Distinct  int
}

func (e *QuantizationError) Error() string {
	return fmt.Sprintf(
		"cannot split %s into %d quantiles (%d distinct values); try a smaller value",
		e.Metric, e.Quantiles, e.Distinct)
}
