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
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// ladder returns customers C00..C(n-1) where customer i has i+1 orders,
// spends 10*(i+1) per order and last ordered i days after the first
// customer did.
func ladder(n int) []Transaction {
	base := date("2024-01-01")
	var txs []Transaction
	for i := 0; i < n; i++ {
		for k := 0; k <= i; k++ {
			txs = append(txs, Transaction{
				Customer: fmt.Sprintf("C%02d", i),
				Date:     base.AddDate(0, 0, i-k),
				Revenue:  float64(10 * (i + 1)),
			})
		}
	}
	return txs
}

func TestBuildWorkedExample(t *testing.T) {
	txs := []Transaction{
		{Customer: "A", Date: date("2023-01-01"), Revenue: 10},
		{Customer: "A", Date: date("2023-02-01"), Revenue: 10},
		{Customer: "B", Date: date("2023-01-15"), Revenue: 100},
	}

	table, err := Build(txs, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !table.MaxDate.Equal(date("2023-02-01")) {
		t.Errorf("Expected max date 2023-02-01, got %s", table.MaxDate)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}

	byCustomer := make(map[string]Row)
	for _, row := range table.Rows {
		byCustomer[row.Customer] = row
	}

	a := byCustomer["A"]
	if a.Recency != 0 || a.Frequency != 2 || a.Monetary != 20 {
		t.Errorf("Unexpected metrics for A: %+v", a)
	}
	if a.R != 2 || a.F != 2 || a.M != 1 || a.Score != 5 {
		t.Errorf("Unexpected scores for A: %+v", a)
	}
	if a.Segment != "221" {
		t.Errorf("Expected segment 221 for A, got %s", a.Segment)
	}

	b := byCustomer["B"]
	if b.Recency != 17 || b.Frequency != 1 || b.Monetary != 100 {
		t.Errorf("Unexpected metrics for B: %+v", b)
	}
	if b.R != 1 || b.F != 1 || b.M != 2 || b.Score != 4 {
		t.Errorf("Unexpected scores for B: %+v", b)
	}

	// Sorted by segment descending: "221" before "112".
	if table.Rows[0].Customer != "A" {
		t.Errorf("Expected A first, got %s", table.Rows[0].Customer)
	}
}

func TestBuildOneRowPerCustomer(t *testing.T) {
	txs := ladder(20)
	table, err := Build(txs, DefaultQuantiles)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := make(map[string]bool)
	for _, tx := range txs {
		want[tx.Customer] = true
	}

	seen := make(map[string]int)
	for _, row := range table.Rows {
		seen[row.Customer]++
	}
	if len(seen) != len(want) {
		t.Errorf("Expected %d customers, got %d", len(want), len(seen))
	}
	for customer := range want {
		if seen[customer] != 1 {
			t.Errorf("Customer %s appears %d times", customer, seen[customer])
		}
	}
	if table.Customers() != len(want) {
		t.Errorf("Customers() = %d, want %d", table.Customers(), len(want))
	}
}

func TestBuildScoreRanges(t *testing.T) {
	for _, q := range []int{2, 3, 4, 5} {
		t.Run(fmt.Sprintf("quantiles=%d", q), func(t *testing.T) {
			table, err := Build(ladder(20), q)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			for _, row := range table.Rows {
				for name, s := range map[string]int{"R": row.R, "F": row.F, "M": row.M} {
					if s < 1 || s > q {
						t.Errorf("%s: %s = %d out of [1, %d]", row.Customer, name, s, q)
					}
				}
				if row.Score != row.R+row.F+row.M {
					t.Errorf("%s: score %d != %d+%d+%d", row.Customer, row.Score, row.R, row.F, row.M)
				}
				if row.SegmentName == "" {
					t.Errorf("%s: empty segment name", row.Customer)
				}
			}
		})
	}
}

func TestBuildOrdering(t *testing.T) {
	table, err := Build(ladder(20), 4)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	rows := make(map[string]Row)
	for _, row := range table.Rows {
		rows[row.Customer] = row
	}

	newest, oldest := rows["C19"], rows["C00"]
	if newest.Recency != 0 {
		t.Errorf("Expected recency 0 for C19, got %d", newest.Recency)
	}
	if newest.R != 4 {
		t.Errorf("Most recent customer should get R=4, got %d", newest.R)
	}
	if oldest.R != 1 {
		t.Errorf("Oldest customer should get R=1, got %d", oldest.R)
	}
	if newest.F != 4 || newest.M != 4 {
		t.Errorf("Top spender should get F=4 M=4, got F=%d M=%d", newest.F, newest.M)
	}
	if oldest.F != 1 || oldest.M != 1 {
		t.Errorf("Lowest spender should get F=1 M=1, got F=%d M=%d", oldest.F, oldest.M)
	}

	for i := 1; i < len(table.Rows); i++ {
		if table.Rows[i-1].Segment < table.Rows[i].Segment {
			t.Errorf("Rows not sorted by segment descending at %d: %s < %s",
				i, table.Rows[i-1].Segment, table.Rows[i].Segment)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	txs := ladder(12)
	first, err := Build(txs, 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := Build(txs, 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Two builds over the same input differ")
	}
}

func TestBuildDoesNotModifyInput(t *testing.T) {
	txs := ladder(8)
	before := append([]Transaction(nil), txs...)
	if _, err := Build(txs, 2); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(before, txs) {
		t.Error("Build modified its input")
	}
}

func TestBuildQuantizationErrors(t *testing.T) {
	skewed := func() []Transaction {
		// Eight customers with distinct recency and spend but frequencies
		// 1,1,1,1,1,1,2,3.
		freq := []int{1, 1, 1, 1, 1, 1, 2, 3}
		base := date("2024-03-01")
		var txs []Transaction
		for i, f := range freq {
			for k := 0; k < f; k++ {
				txs = append(txs, Transaction{
					Customer: fmt.Sprintf("S%d", i),
					Date:     base.AddDate(0, 0, i),
					Revenue:  float64(100*(i+1)) / float64(f),
				})
			}
		}
		return txs
	}

	tests := []struct {
		name       string
		txs        []Transaction
		quantiles  int
		wantMetric string
	}{
		{
			name: "more quantiles than customers",
			txs: []Transaction{
				{Customer: "A", Date: date("2023-01-01"), Revenue: 10},
				{Customer: "A", Date: date("2023-02-01"), Revenue: 10},
				{Customer: "B", Date: date("2023-01-15"), Revenue: 100},
			},
			quantiles:  3,
			wantMetric: MetricRecency,
		},
		{
			name:       "frequency edges collapse",
			txs:        skewed(),
			quantiles:  3,
			wantMetric: MetricFrequency,
		},
		{
			name:       "empty input",
			txs:        nil,
			quantiles:  4,
			wantMetric: MetricRecency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build(tt.txs, tt.quantiles)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if table != nil {
				t.Error("Expected no table on failure")
			}
			var qerr *QuantizationError
			if !errors.As(err, &qerr) {
				t.Fatalf("Expected QuantizationError, got %T: %v", err, err)
			}
			if qerr.Metric != tt.wantMetric {
				t.Errorf("Expected metric %s, got %s", tt.wantMetric, qerr.Metric)
			}
			if qerr.Quantiles != tt.quantiles {
				t.Errorf("Expected quantiles %d, got %d", tt.quantiles, qerr.Quantiles)
			}
		})
	}
}

func TestBuildRejectsTooFewQuantiles(t *testing.T) {
	for _, q := range []int{-1, 0, 1} {
		_, err := Build(ladder(5), q)
		if err == nil {
			t.Errorf("Expected error for quantiles=%d", q)
		}
		var qerr *QuantizationError
		if errors.As(err, &qerr) {
			t.Errorf("quantiles=%d should be a configuration error, not %v", q, err)
		}
	}
}

func TestBuildRecencyCountsWholeDays(t *testing.T) {
	base := date("2024-05-01")
	txs := []Transaction{
		{Customer: "A", Date: base.Add(23 * time.Hour), Revenue: 1},
		{Customer: "B", Date: base.AddDate(0, 0, 2).Add(1 * time.Hour), Revenue: 2},
		{Customer: "B", Date: base.AddDate(0, 0, 3).Add(22 * time.Hour), Revenue: 3},
	}
	table, err := Build(txs, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, row := range table.Rows {
		if row.Customer == "A" && row.Recency != 2 {
			t.Errorf("Expected whole-day recency 2 for A, got %d", row.Recency)
		}
	}
}

func TestTableValues(t *testing.T) {
	table, err := Build(ladder(4), 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, metric := range []string{MetricRecency, MetricFrequency, MetricMonetary} {
		values := table.Values(metric)
		if len(values) != len(table.Rows) {
			t.Errorf("%s: expected %d values, got %d", metric, len(table.Rows), len(values))
		}
	}
	monetary := table.Values(MetricMonetary)
	for i, row := range table.Rows {
		if monetary[i] != row.Monetary {
			t.Errorf("Monetary value %d = %f, want %f", i, monetary[i], row.Monetary)
		}
	}
}
