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
	"math"
	"slices"
	"sort"
)

// quantileEdges returns the n+1 cut points splitting sorted into n
// equal-frequency buckets, interpolating linearly between closest ranks.
func quantileEdges(sorted []float64, n int) []float64 {
	edges := make([]float64, n+1)
	last := float64(len(sorted) - 1)
	for i := 0; i <= n; i++ {
		pos := last * float64(i) / float64(n)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		edges[i] = sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
	}
	return edges
}

func countDistinct(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	distinct := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			distinct++
		}
	}
	return distinct
}

// bucketize assigns every value a 0-based bucket index in [0, n). The first
// bucket is closed on both ends; the others are (edge[i], edge[i+1]].
// It fails unless all n buckets end up non-empty.
func bucketize(metric string, values []float64, n int) ([]int, error) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	distinct := countDistinct(sorted)
	if distinct < n {
		return nil, &QuantizationError{Metric: metric, Quantiles: n, Distinct: distinct}
	}

	edges := quantileEdges(sorted, n)
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, &QuantizationError{Metric: metric, Quantiles: n, Distinct: distinct}
		}
	}

	buckets := make([]int, len(values))
	counts := make([]int, n)
	upper := edges[1:]
	for i, v := range values {
		b := sort.SearchFloat64s(upper, v)
		if b >= n {
			b = n - 1
		}
		buckets[i] = b
		counts[b]++
	}

	for _, c := range counts {
		if c == 0 {
			return nil, &QuantizationError{Metric: metric, Quantiles: n, Distinct: distinct}
		}
	}

	return buckets, nil
}

// scoreAscending maps buckets to scores 1..n, lowest bucket scoring 1.
func scoreAscending(buckets []int) []int {
	scores := make([]int, len(buckets))
	for i, b := range buckets {
		scores[i] = b + 1
	}
	return scores
}

// scoreDescending maps buckets to scores n..1, lowest bucket scoring n.
func scoreDescending(buckets []int, n int) []int {
	scores := make([]int, len(buckets))
	for i, b := range buckets {
		scores[i] = n - b
	}
	return scores
}
