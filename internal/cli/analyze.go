package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-rfm/internal/report"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

var (
	topN          int
	idsOnly       bool
	segmentCounts bool
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the RFM table",
	Long: `Print one row per customer with Recency, Frequency, Monetary, the
R, F and M scores, the RFM score, the RFM segment and the segment name.
Rows are ordered by RFM segment, best first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, table, err := analyze(cmd.Context())
		if err != nil {
			return err
		}
		return report.NewRenderer(cmd.OutOrStdout(), cfg.Output.Format).RFMTable(table)
	},
}

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "List the best customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRanked(cmd, "Best customers", (*rfm.Table).Best)
	},
}

var worstCmd = &cobra.Command{
	Use:   "worst",
	Short: "List the worst customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRanked(cmd, "Worst customers", (*rfm.Table).Worst)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize customers per segment name",
	Long: `Print, for every segment name, the mean Recency, Frequency and
Monetary value of its customers and how many customers it holds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, table, err := analyze(cmd.Context())
		if err != nil {
			return err
		}
		return report.NewRenderer(cmd.OutOrStdout(), cfg.Output.Format).Summary(table.Summary())
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Show segment score ranges, or customers per RFM segment",
	Long: `Without --counts, print the RFM score range of every segment name for
the configured number of quantiles. No input is needed.

With --counts, analyze the input and print how many customers and
transactions fall in every RFM segment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := report.NewRenderer(cmd.OutOrStdout(), cfg.Output.Format)
		if !segmentCounts {
			if cfg.Analysis.Quantiles < rfm.MinQuantiles {
				return fmt.Errorf("quantiles must be at least %d", rfm.MinQuantiles)
			}
			return r.Segments(rfm.Segments(cfg.Analysis.Quantiles))
		}

		_, table, err := analyze(cmd.Context())
		if err != nil {
			return err
		}
		return r.SegmentCounts(table.SegmentCounts())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{bestCmd, worstCmd} {
		cmd.Flags().IntVarP(&topN, "top", "n", 0,
			"number of customers (default: 3)")
		cmd.Flags().BoolVar(&idsOnly, "ids", false,
			"print customer ids only, one per line")
	}
	segmentsCmd.Flags().BoolVar(&segmentCounts, "counts", false,
		"count customers and transactions per RFM segment of the input")
}

func runRanked(cmd *cobra.Command, title string, rank func(*rfm.Table, int) ([]rfm.CustomerScore, error)) error {
	if cmd.Flags().Changed("top") {
		cfg.Analysis.TopN = topN
	}

	_, table, err := analyze(cmd.Context())
	if err != nil {
		return err
	}

	scores, err := rank(table, cfg.Analysis.TopN)
	if err != nil {
		return err
	}
	if idsOnly {
		return report.IDs(cmd.OutOrStdout(), scores)
	}
	return report.NewRenderer(cmd.OutOrStdout(), cfg.Output.Format).Customers(title, scores)
}
