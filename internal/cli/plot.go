//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/report"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

var (
	chartName   string
	chartOutput string
	chartBins   int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Write RFM charts to an HTML page",
	Long: `Write charts of the analysis to a single HTML page:

  revenue        histogram of revenue per transaction
  treemap        customers per segment name
  distributions  Recency, Frequency and Monetary histograms with a KDE curve
  segments       customers per RFM segment

Use --chart to write one of them; all are written by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyChartFlags(cmd)

		ds, table, err := analyze(cmd.Context())
		if err != nil {
			return err
		}

		data := report.ChartData{
			Revenues: ds.Revenues(),
			Table:    table,
			Bins:     cfg.Analysis.HistogramBins,
		}
		which := chartName
		if which == "" {
			which = report.ChartAll
		}
		if err := report.WriteChartsFile(cfg.Output.Charts, data, which); err != nil {
			return err
		}

		cmd.Printf("Charts written to %s\n", cfg.Output.Charts)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print best and worst customers and write all charts",
	Long: `Analyze the input, print the ids of the best and worst customers and
write every chart to the HTML page configured by --output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyChartFlags(cmd)
		if cmd.Flags().Changed("top") {
			cfg.Analysis.TopN = topN
		}

		ds, table, err := analyze(cmd.Context())
		if err != nil {
			return err
		}

		logging.Info().
			Str("source", ds.Name()).
			Int("transactions", ds.Len()).
			Int("customers", table.Customers()).
			Msg("Analysis complete")

		out := cmd.OutOrStdout()
		for _, section := range []struct {
			title string
			rank  func(int) ([]rfm.CustomerScore, error)
		}{
			{"Best customers:", table.Best},
			{"Worst customers:", table.Worst},
		} {
			scores, err := section.rank(cfg.Analysis.TopN)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, section.title)
			if err := report.IDs(out, scores); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}

		data := report.ChartData{
			Revenues: ds.Revenues(),
			Table:    table,
			Bins:     cfg.Analysis.HistogramBins,
		}
		if err := report.WriteChartsFile(cfg.Output.Charts, data, report.ChartAll); err != nil {
			return err
		}
		fmt.Fprintf(out, "Charts written to %s\n", cfg.Output.Charts)
		return nil
	},
}

func init() {
	plotCmd.Flags().StringVar(&chartName, "chart", "",
		fmt.Sprintf("chart to write: all or one of %v", report.ChartNames))
	for _, cmd := range []*cobra.Command{plotCmd, reportCmd} {
		cmd.Flags().StringVarP(&chartOutput, "output", "o", "",
			"HTML file to write (default: rfm-charts.html)")
		cmd.Flags().IntVar(&chartBins, "bins", 0,
			"histogram bins (default: 10)")
	}
	reportCmd.Flags().IntVarP(&topN, "top", "n", 0,
		"number of best and worst customers (default: 3)")
}

func applyChartFlags(cmd *cobra.Command) {
	if chartOutput != "" {
		cfg.Output.Charts = chartOutput
	}
	if cmd.Flags().Changed("bins") {
		cfg.Analysis.HistogramBins = chartBins
	}
}
