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
	"math"
	"sort"
)

// CustomerScore is a customer and their overall RFM score.
type CustomerScore struct {
	Customer string `json:"customer"`
	Score    int    `json:"rfm_score"`
}

// SegmentSummary holds per segment-name averages.
type SegmentSummary struct {
	Name          string  `json:"segment_name"`
	RecencyMean   float64 `json:"recency_mean"`
	FrequencyMean float64 `json:"frequency_mean"`
	MonetaryMean  float64 `json:"monetary_mean"`
	Count         int     `json:"count"`
}

// SegmentCount counts customers and their orders per RFM segment string.
type SegmentCount struct {
	Segment      string `json:"rfm_segment"`
	Customers    int    `json:"customers"`
	Transactions int    `json:"transactions"`
}

// Best returns the first n rows of the table.
func (t *Table) Best(n int) ([]CustomerScore, error) {
	if n < 0 {
		return nil, fmt.Errorf("number of customers must not be negative, got %d", n)
	}
	n = min(n, len(t.Rows))
	return project(t.Rows[:n]), nil
}

// Worst returns the last n rows of the table, in table order.
func (t *Table) Worst(n int) ([]CustomerScore, error) {
	if n < 0 {
		return nil, fmt.Errorf("number of customers must not be negative, got %d", n)
	}
	n = min(n, len(t.Rows))
	return project(t.Rows[len(t.Rows)-n:]), nil
}

func project(rows []Row) []CustomerScore {
	out := make([]CustomerScore, len(rows))
	for i, row := range rows {
		out[i] = CustomerScore{Customer: row.Customer, Score: row.Score}
	}
	return out
}

// Summary groups the table by segment name, ordered by name.
func (t *Table) Summary() []SegmentSummary {
	type acc struct {
		recency, frequency, monetary float64
		count                        int
	}
	groups := make(map[string]*acc)
	for _, row := range t.Rows {
		g, ok := groups[row.SegmentName]
		if !ok {
			g = &acc{}
			groups[row.SegmentName] = g
		}
		g.recency += float64(row.Recency)
		g.frequency += float64(row.Frequency)
		g.monetary += row.Monetary
		g.count++
	}

	out := make([]SegmentSummary, 0, len(groups))
	for name, g := range groups {
		n := float64(g.count)
		out = append(out, SegmentSummary{
			Name:          name,
			RecencyMean:   round1(g.recency / n),
			FrequencyMean: round1(g.frequency / n),
			MonetaryMean:  round1(g.monetary / n),
			Count:         g.count,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// SegmentCounts counts customers and transactions per RFM segment string,
// ordered by segment.
func (t *Table) SegmentCounts() []SegmentCount {
	index := make(map[string]int)
	var out []SegmentCount
	for _, row := range t.Rows {
		i, ok := index[row.Segment]
		if !ok {
			i = len(out)
			index[row.Segment] = i
			out = append(out, SegmentCount{Segment: row.Segment})
		}
		out[i].Customers++
		out[i].Transactions += row.Frequency
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Segment < out[b].Segment })
	return out
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
