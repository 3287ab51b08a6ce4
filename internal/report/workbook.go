//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/pkg/version"
)

// Workbook sheet names.
const (
	SheetRFM      = "RFM"
	SheetSummary  = "Summary"
	SheetSegments = "Segments"
)

// RunInfo identifies the analysis a workbook was written from.
type RunInfo struct {
	ID     string
	Source string
}

// WriteWorkbook saves the RFM table, segment summary and segment counts to
// an XLSX file at path.
func WriteWorkbook(path string, t *rfm.Table, run RunInfo) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRFM); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", SheetSummary, err)
	}
	if _, err := f.NewSheet(SheetSegments); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", SheetSegments, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rfmRows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		rfmRows[i] = []any{r.Customer, r.Recency, r.Frequency, r.Monetary,
			r.R, r.F, r.M, r.Score, r.Segment, r.SegmentName}
	}
	if err := writeSheet(f, SheetRFM, bold, []any{"Customer", "Recency", "Frequency", "Monetary",
		"R", "F", "M", "RFM_Score", "RFM_Segment", "Segment_Name"}, rfmRows); err != nil {
		return err
	}

	summary := t.Summary()
	summaryRows := make([][]any, len(summary))
	for i, s := range summary {
		summaryRows[i] = []any{s.Name, s.RecencyMean, s.FrequencyMean, s.MonetaryMean, s.Count}
	}
	if err := writeSheet(f, SheetSummary, bold,
		[]any{"Segment_Name", "Recency", "Frequency", "Monetary", "Count"}, summaryRows); err != nil {
		return err
	}

	counts := t.SegmentCounts()
	countRows := make([][]any, len(counts))
	for i, c := range counts {
		countRows[i] = []any{c.Segment, c.Customers, c.Transactions}
	}
	if err := writeSheet(f, SheetSegments, bold,
		[]any{"RFM_Segment", "Customers", "Transactions"}, countRows); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "RFM analysis",
		Subject:     run.Source,
		Identifier:  run.ID,
		Creator:     "pgedge-rfm " + version.Short(),
		Created:     time.Now().UTC().Format(time.RFC3339),
		Description: fmt.Sprintf("%d customers, %d quantiles", len(t.Rows), t.Quantiles),
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}
	for _, prop := range []excelize.CustomProperty{
		{Name: "quantiles", Value: int32(t.Quantiles)},
		{Name: "max_date", Value: t.MaxDate.Format(time.DateOnly)},
	} {
		if err := f.SetCustomProps(prop); err != nil {
			return fmt.Errorf("failed to set property %s: %w", prop.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	logging.Info().
		Str("path", path).
		Str("run_id", run.ID).
		Int("customers", len(t.Rows)).
		Msg("Wrote workbook")
	return nil
}

// writeSheet writes a bold, frozen header row followed by rows.
func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
