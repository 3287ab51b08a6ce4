//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package xlsx reads transactions from Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/internal/source"
)

func init() {
	source.Register(&Loader{})
}

// Loader implements source.Loader for XLSX workbooks.
type Loader struct{}

// Kind returns the source kind.
func (l *Loader) Kind() string {
	return "xlsx"
}

// Description returns a description of the source.
func (l *Loader) Description() string {
	return "Excel workbook; first row of the sheet is the header"
}

// Load reads opts.Sheet, or the first sheet, of the workbook at opts.Path.
// Cells are read unformatted; numeric date cells are converted from Excel
// serial dates.
func (l *Loader) Load(ctx context.Context, opts source.Options) ([]rfm.Transaction, error) {
	f, err := excelize.OpenFile(opts.Path)
	if err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn().Err(err).Str("path", opts.Path).Msg("Failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	sheet := opts.Sheet
	switch {
	case sheet == "" && len(sheets) > 0:
		sheet = sheets[0]
	case !slices.Contains(sheets, sheet):
		return nil, &rfm.InputFileError{
			Path: opts.Path,
			Err:  fmt.Errorf("worksheet %q not found", sheet),
		}
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &rfm.InputFileError{Path: opts.Path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &rfm.SchemaError{Column: opts.Columns.Customer, Reason: "sheet has no header row"}
	}

	header, err := source.NewHeader(rows[0], opts.Columns)
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Str("sheet", sheet).
		Int("rows", len(rows)-1).
		Msg("Reading worksheet")

	txs := make([]rfm.Transaction, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(cells) {
			continue
		}

		record := make([]any, len(cells))
		for j, cell := range cells {
			record[j] = cell
		}
		if d := header.DateIndex(); d < len(cells) && opts.Columns.DateFormat == "" {
			if t, ok := serialDate(f, sheet, d+1, i+2, cells[d], date1904); ok {
				record[d] = t
			}
		}

		tx, err := header.FromValues(i+1, record)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// maxSerial is the serial of 9999-12-31, the last date Excel can hold.
const maxSerial = 2958465

// serialDate converts a numeric cell holding an Excel serial date. Text
// cells and numbers outside Excel's date range are left for the header's
// date layouts, so text such as "20230115" is never read as a serial.
func serialDate(f *excelize.File, sheet string, col, row int, raw string, date1904 bool) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < 1 || serial > maxSerial {
		return time.Time{}, false
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return time.Time{}, false
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
		return time.Time{}, false
	}

	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
