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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the histogram bin count used when none is configured.
const DefaultBins = 10

// kdePoints is the number of points the density curve is evaluated at.
const kdePoints = 100

// Bin is one equal-width histogram bucket. The last bin of a histogram is
// closed on both ends; every other bin is [Low, High).
type Bin struct {
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Point is a sample of a density curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distribution describes how one metric is spread across customers.
type Distribution struct {
	Metric string  `json:"metric"`
	Bins   []Bin   `json:"bins"`
	KDE    []Point `json:"kde,omitempty"`
}

// Revenues returns the revenue of every transaction, in input order.
func Revenues(txs []Transaction) []float64 {
	values := make([]float64, len(txs))
	for i, tx := range txs {
		values[i] = tx.Revenue
	}
	return values
}

// Histogram splits values into bins equal-width buckets spanning their
// range. A constant input is centred in a unit-wide range.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins < 1 {
		return nil
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Low = lo + width*float64(i)
		out[i].High = lo + width*float64(i+1)
	}
	out[bins-1].High = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}

	total := float64(len(values))
	for i := range out {
		out[i].Density = float64(out[i].Count) / (total * width)
	}
	return out
}

// Distributions returns a density histogram and kernel density estimate for
// each of Recency, Frequency and Monetary.
func (t *Table) Distributions(bins int) []Distribution {
	metrics := []string{MetricRecency, MetricFrequency, MetricMonetary}
	out := make([]Distribution, 0, len(metrics))
	for _, metric := range metrics {
		values := t.Values(metric)
		out = append(out, Distribution{
			Metric: metric,
			Bins:   Histogram(values, bins),
			KDE:    gaussianKDE(values, kdePoints),
		})
	}
	return out
}

// gaussianKDE evaluates a Gaussian kernel density estimate with Scott's
// bandwidth at points evenly spread over the data range padded by three
// bandwidths. It returns nil when the sample has no spread.
func gaussianKDE(values []float64, points int) []Point {
	n := len(values)
	if n < 2 || points < 2 {
		return nil
	}

	// Sample standard deviation, matching scipy's gaussian_kde.
	_, std := stat.MeanStdDev(values, nil)
	if std == 0 {
		return nil
	}

	h := std * math.Pow(float64(n), -0.2)
	lo, hi := floats.Min(values), floats.Max(values)
	start := lo - 3*h
	step := (hi - lo + 6*h) / float64(points-1)
	norm := 1 / (float64(n) * h * math.Sqrt(2*math.Pi))

	out := make([]Point, points)
	for i := range out {
		x := start + step*float64(i)
		var sum float64
		for _, v := range values {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		out[i] = Point{X: x, Y: sum * norm}
	}
	return out
}
