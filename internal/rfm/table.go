//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package rfm computes Recency-Frequency-Monetary customer segmentation
// from a transaction log.
package rfm

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

const (
	// DefaultQuantiles is the number of buckets each metric is split into
	// unless configured otherwise.
	DefaultQuantiles = 4

	// MinQuantiles is the smallest usable number of buckets.
	MinQuantiles = 2
)

// Metric names, as used in errors and chart titles.
const (
	MetricRecency   = "Recency"
	MetricFrequency = "Frequency"
	MetricMonetary  = "Monetary"
)

// Transaction is one order in the input log.
type Transaction struct {
	Customer string
	Date     time.Time
	Revenue  float64
}

// Row holds the RFM metrics and scores of a single customer.
type Row struct {
	Customer string `json:"customer"`

	// Recency is the number of whole days between the customer's last order
	// and the most recent order in the whole log.
	Recency int `json:"recency"`

	// Frequency is the number of orders.
	Frequency int `json:"frequency"`

	// Monetary is the total revenue.
	Monetary float64 `json:"monetary"`

	R int `json:"r"`
	F int `json:"f"`
	M int `json:"m"`

	// Score is R+F+M, used for ranking.
	Score int `json:"rfm_score"`

	// Segment is R, F and M concatenated, used for display ordering.
	Segment string `json:"rfm_segment"`

	SegmentName string `json:"segment_name"`
}

// Table is the full RFM result, sorted by Segment descending.
type Table struct {
	Quantiles int       `json:"quantiles"`
	MaxDate   time.Time `json:"max_date"`
	Rows      []Row     `json:"rows"`
}

// Build aggregates txs per customer and scores every metric into quantiles
// buckets. It returns a *QuantizationError, and no table, when any metric
// cannot be split that many ways.
func Build(txs []Transaction, quantiles int) (*Table, error) {
	if quantiles < MinQuantiles {
		return nil, fmt.Errorf("quantiles must be at least %d, got %d", MinQuantiles, quantiles)
	}
	if len(txs) == 0 {
		return nil, &QuantizationError{Metric: MetricRecency, Quantiles: quantiles}
	}

	maxDate := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}
	}

	index := make(map[string]int)
	rows := make([]Row, 0)
	lastOrder := make([]time.Time, 0)
	for _, tx := range txs {
		i, ok := index[tx.Customer]
		if !ok {
			i = len(rows)
			index[tx.Customer] = i
			rows = append(rows, Row{Customer: tx.Customer})
			lastOrder = append(lastOrder, tx.Date)
		}
		rows[i].Frequency++
		rows[i].Monetary += tx.Revenue
		if tx.Date.After(lastOrder[i]) {
			lastOrder[i] = tx.Date
		}
	}

	recency := make([]float64, len(rows))
	frequency := make([]float64, len(rows))
	monetary := make([]float64, len(rows))
	for i := range rows {
		rows[i].Recency = int(maxDate.Sub(lastOrder[i]) / (24 * time.Hour))
		recency[i] = float64(rows[i].Recency)
		frequency[i] = float64(rows[i].Frequency)
		monetary[i] = rows[i].Monetary
	}

	rBuckets, err := bucketize(MetricRecency, recency, quantiles)
	if err != nil {
		return nil, err
	}
	fBuckets, err := bucketize(MetricFrequency, frequency, quantiles)
	if err != nil {
		return nil, err
	}
	mBuckets, err := bucketize(MetricMonetary, monetary, quantiles)
	if err != nil {
		return nil, err
	}

	// Recent customers score highest.
	r := scoreDescending(rBuckets, quantiles)
	f := scoreAscending(fBuckets)
	m := scoreAscending(mBuckets)

	for i := range rows {
		rows[i].R = r[i]
		rows[i].F = f[i]
		rows[i].M = m[i]
		rows[i].Score = r[i] + f[i] + m[i]
		rows[i].Segment = strconv.Itoa(r[i]) + strconv.Itoa(f[i]) + strconv.Itoa(m[i])
		rows[i].SegmentName = SegmentName(rows[i].Score, quantiles)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Segment != rows[b].Segment {
			return rows[a].Segment > rows[b].Segment
		}
		return rows[a].Customer < rows[b].Customer
	})

	return &Table{
		Quantiles: quantiles,
		MaxDate:   maxDate,
		Rows:      rows,
	}, nil
}

// Customers returns the number of rows in the table.
func (t *Table) Customers() int {
	return len(t.Rows)
}

// Values returns the raw values of one metric in table order.
func (t *Table) Values(metric string) []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		switch metric {
		case MetricRecency:
			values[i] = float64(row.Recency)
		case MetricFrequency:
			values[i] = float64(row.Frequency)
		case MetricMonetary:
			values[i] = row.Monetary
		}
	}
	return values
}
