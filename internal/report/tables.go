//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report renders RFM results as tables, charts and workbooks.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

// Table formats.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists the supported table formats.
var Formats = []string{FormatTable, FormatCSV, FormatMarkdown, FormatJSON}

// Renderer writes result tables in one format.
type Renderer struct {
	w      io.Writer
	format string
}

// NewRenderer creates a renderer writing to w. An unknown format falls
// back to a terminal table.
func NewRenderer(w io.Writer, format string) *Renderer {
	return &Renderer{w: w, format: format}
}

// RFMTable writes every row of the RFM table.
func (r *Renderer) RFMTable(t *rfm.Table) error {
	header := table.Row{"Customer", "Recency", "Frequency", "Monetary",
		"R", "F", "M", "RFM_Score", "RFM_Segment", "Segment_Name"}
	rows := make([]table.Row, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = table.Row{
			row.Customer, row.Recency, row.Frequency, money(row.Monetary),
			row.R, row.F, row.M, row.Score, row.Segment, row.SegmentName,
		}
	}
	return r.render("", header, rows, []int{2, 3, 4, 5, 6, 7, 8}, t)
}

// Customers writes a ranked list of customers, such as best or worst.
func (r *Renderer) Customers(title string, scores []rfm.CustomerScore) error {
	header := table.Row{"Customer", "RFM_Score"}
	rows := make([]table.Row, len(scores))
	for i, s := range scores {
		rows[i] = table.Row{s.Customer, s.Score}
	}
	return r.render(title, header, rows, []int{2}, scores)
}

// Summary writes per segment means and counts.
func (r *Renderer) Summary(summary []rfm.SegmentSummary) error {
	header := table.Row{"Segment_Name", "Recency", "Frequency", "Monetary", "Count"}
	rows := make([]table.Row, len(summary))
	for i, s := range summary {
		rows[i] = table.Row{s.Name, decimal1(s.RecencyMean), decimal1(s.FrequencyMean),
			decimal1(s.MonetaryMean), s.Count}
	}
	return r.render("Segment summary", header, rows, []int{2, 3, 4, 5}, summary)
}

// Segments writes the score range of every segment name.
func (r *Renderer) Segments(ranges []rfm.SegmentRange) error {
	header := table.Row{"Segment_Name", "Min_Score", "Max_Score"}
	rows := make([]table.Row, len(ranges))
	for i, s := range ranges {
		rows[i] = table.Row{s.Name, s.MinScore, s.MaxScore}
	}
	return r.render("Segments", header, rows, []int{2, 3}, ranges)
}

// SegmentCounts writes customers and transactions per RFM_Segment.
func (r *Renderer) SegmentCounts(counts []rfm.SegmentCount) error {
	header := table.Row{"RFM_Segment", "Customers", "Transactions"}
	rows := make([]table.Row, len(counts))
	for i, c := range counts {
		rows[i] = table.Row{c.Segment, c.Customers, c.Transactions}
	}
	return r.render("Segment counts", header, rows, []int{2, 3}, counts)
}

// render writes rows in the configured format. data is what JSON output
// encodes; numeric lists the right aligned columns.
func (r *Renderer) render(title string, header table.Row, rows []table.Row, numeric []int, data any) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.AppendHeader(header)
	t.AppendRows(rows)

	switch r.format {
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	default:
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(r.w, "(0 rows)")
			return nil
		}
		configs := make([]table.ColumnConfig, len(numeric))
		for i, n := range numeric {
			configs[i] = table.ColumnConfig{Number: n, Align: text.AlignRight}
		}
		t.SetColumnConfigs(configs)
		t.SetStyle(table.StyleLight)
		if title != "" {
			t.SetTitle(title)
		}
		t.Render()
		_, _ = fmt.Fprintf(r.w, "(%d rows)\n", len(rows))
	}
	return nil
}

// IDs writes one customer identifier per line.
func IDs(w io.Writer, scores []rfm.CustomerScore) error {
	for _, s := range scores {
		if _, err := fmt.Fprintln(w, s.Customer); err != nil {
			return err
		}
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func decimal1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
