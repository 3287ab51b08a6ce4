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
)

// Segment names, from most to least valuable.
const (
	SegmentCantLose          = "Can't Lose Them"
	SegmentChampions         = "Champions"
	SegmentLoyal             = "Loyal/Committed"
	SegmentPotential         = "Potential"
	SegmentPromising         = "Promising"
	SegmentRequiresAttention = "Requires Attention"
	SegmentDemandsActivation = "Demands Activation"
)

// referenceQuantiles is the quantile count the thresholds are expressed in.
const referenceQuantiles = 4

type threshold struct {
	name     string
	minScore float64
}

// thresholds must stay ordered by descending minScore.
var thresholds = []threshold{
	{SegmentCantLose, 9},
	{SegmentChampions, 8},
	{SegmentLoyal, 7},
	{SegmentPotential, 6},
	{SegmentPromising, 5},
	{SegmentRequiresAttention, 4},
	{SegmentDemandsActivation, 0},
}

// SegmentRange describes the raw RFM scores that map to a segment name for
// a given quantile count.
type SegmentRange struct {
	Name     string `json:"name"`
	MinScore int    `json:"min_score"`
	MaxScore int    `json:"max_score"`
}

// scaleScore expresses score on the referenceQuantiles scale.
func scaleScore(score, quantiles int) float64 {
	return float64(score) * referenceQuantiles / float64(quantiles)
}

// SegmentName returns the segment label for an RFM score computed with the
// given number of quantiles.
func SegmentName(score, quantiles int) string {
	scaled := scaleScore(score, quantiles)
	for _, t := range thresholds {
		if scaled >= t.minScore {
			return t.name
		}
	}
	return SegmentDemandsActivation
}

// Segments lists the score range of every segment reachable with the given
// number of quantiles, best segment first.
func Segments(quantiles int) []SegmentRange {
	lowest := 3
	highest := 3 * quantiles

	ranges := make([]SegmentRange, 0, len(thresholds))
	upper := highest
	for _, t := range thresholds {
		minScore := int(math.Ceil(t.minScore * float64(quantiles) / referenceQuantiles))
		if minScore < lowest {
			minScore = lowest
		}
		if minScore <= upper {
			ranges = append(ranges, SegmentRange{
				Name:     t.name,
				MinScore: minScore,
				MaxScore: upper,
			})
		}
		if minScore-1 < upper {
			upper = minScore - 1
		}
	}
	return ranges
}
