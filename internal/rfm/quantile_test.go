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
	"reflect"
	"testing"
)

func TestQuantileEdges(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		n      int
		want   []float64
	}{
		{"two values halves", []float64{0, 17}, 2, []float64{0, 8.5, 17}},
		{"quartiles of 0..4", []float64{0, 1, 2, 3, 4}, 4, []float64{0, 1, 2, 3, 4}},
		{"interpolated", []float64{1, 2, 3, 4}, 2, []float64{1, 2.5, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quantileEdges(tt.sorted, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("quantileEdges(%v, %d) = %v, want %v", tt.sorted, tt.n, got, tt.want)
			}
		})
	}
}

func TestBucketize(t *testing.T) {
	values := []float64{40, 10, 30, 20, 50, 60, 70, 80}
	buckets, err := bucketize("test", values, 4)
	if err != nil {
		t.Fatalf("bucketize failed: %v", err)
	}

	want := []int{1, 0, 1, 0, 2, 2, 3, 3}
	if !reflect.DeepEqual(buckets, want) {
		t.Errorf("Expected buckets %v, got %v", want, buckets)
	}
}

func TestBucketizeLowestEdgeIncluded(t *testing.T) {
	buckets, err := bucketize("test", []float64{5, 5, 6, 7}, 2)
	if err != nil {
		t.Fatalf("bucketize failed: %v", err)
	}
	if buckets[0] != 0 || buckets[1] != 0 {
		t.Errorf("Minimum values should land in the first bucket, got %v", buckets)
	}
}

func TestBucketizeFailures(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		n      int
	}{
		{"too few distinct", []float64{1, 1, 2, 2}, 3},
		{"duplicate edges", []float64{1, 1, 1, 1, 1, 2, 3}, 3},
		{"empty", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bucketize("Metric", tt.values, tt.n)
			var qerr *QuantizationError
			if !errors.As(err, &qerr) {
				t.Fatalf("Expected QuantizationError, got %v", err)
			}
			if qerr.Metric != "Metric" {
				t.Errorf("Expected metric name to be carried, got %q", qerr.Metric)
			}
		})
	}
}

func TestScoreDirections(t *testing.T) {
	buckets := []int{0, 1, 2, 3}
	if got := scoreAscending(buckets); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("scoreAscending = %v", got)
	}
	if got := scoreDescending(buckets, 4); !reflect.DeepEqual(got, []int{4, 3, 2, 1}) {
		t.Errorf("scoreDescending = %v", got)
	}
}
