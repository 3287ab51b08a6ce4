//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-rfm.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-rfm/internal/config"
	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/internal/source"
	"github.com/pgEdge/pgedge-rfm/pkg/version"
)

var (
	// Global flags
	cfgFile     string
	logLevel    string
	input       string
	sourceKind  string
	sheet       string
	delimiter   string
	connection  string
	sourceTable string
	query       string
	customerCol string
	dateCol     string
	revenueCol  string
	dateFormat  string
	quantiles   int
	format      string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-rfm",
		Short: "Recency-Frequency-Monetary customer segmentation",
		Long: `pgedge-rfm reads a transaction log from a CSV file, an Excel workbook,
a SQLite database or a PostgreSQL table, scores every customer on Recency,
Frequency and Monetary value, and names the segment each customer falls in.

Results can be printed as tables, plotted as an HTML chart page, exported to
an XLSX workbook or stored in PostgreSQL.

Example:
  pgedge-rfm table --input orders.csv
  pgedge-rfm best --input orders.xlsx -n 10
  pgedge-rfm plot --connection "postgres://..." --table orders`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-rfm.yaml)")
	flags.StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	flags.StringVarP(&input, "input", "i", "",
		"transaction file (csv, xlsx or sqlite database)")
	flags.StringVar(&sourceKind, "source", "",
		"source kind: csv, xlsx, sqlite, postgres (default: from input extension)")
	flags.StringVar(&sheet, "sheet", "",
		"worksheet to read (xlsx; default: first sheet)")
	flags.StringVar(&delimiter, "delimiter", "",
		"field delimiter (csv; default: ,)")
	flags.StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	flags.StringVar(&sourceTable, "table", "",
		"table holding the transactions (sqlite, postgres)")
	flags.StringVar(&query, "query", "",
		"custom SELECT returning the transactions (sqlite, postgres)")
	flags.StringVar(&customerCol, "customer-col", "",
		"customer id column (default: customer_id)")
	flags.StringVar(&dateCol, "date-col", "",
		"order date column (default: order_date)")
	flags.StringVar(&revenueCol, "revenue-col", "",
		"revenue column (default: revenue)")
	flags.StringVar(&dateFormat, "date-format", "",
		"Go time layout of the date column (default: common layouts)")
	flags.IntVarP(&quantiles, "quantiles", "q", 0,
		"buckets per metric (default: 4)")
	flags.StringVarP(&format, "format", "f", "",
		"output format: table, csv, markdown, json")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(bestCmd)
	rootCmd.AddCommand(worstCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(generateCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	overrides := []struct {
		flag   string
		target *string
	}{
		{logLevel, &cfg.LogLevel},
		{input, &cfg.Source.Path},
		{sourceKind, &cfg.Source.Kind},
		{sheet, &cfg.Source.Sheet},
		{delimiter, &cfg.Source.Delimiter},
		{connection, &cfg.Source.Connection},
		{sourceTable, &cfg.Source.Table},
		{query, &cfg.Source.Query},
		{customerCol, &cfg.Columns.Customer},
		{dateCol, &cfg.Columns.Date},
		{revenueCol, &cfg.Columns.Revenue},
		{dateFormat, &cfg.Columns.DateFormat},
		{format, &cfg.Output.Format},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.target = o.flag
		}
	}
	if quantiles != 0 {
		cfg.Analysis.Quantiles = quantiles
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// sourceOptions translates the source and column configuration.
func sourceOptions(c *config.Config) source.Options {
	delim, _ := utf8.DecodeRuneInString(c.Source.Delimiter)
	if delim == utf8.RuneError {
		delim = 0
	}
	return source.Options{
		Path:       c.Source.Path,
		Sheet:      c.Source.Sheet,
		Delimiter:  delim,
		Connection: c.Source.Connection,
		Table:      c.Source.Table,
		Query:      c.Source.Query,
		Columns: source.Columns{
			Customer:   c.Columns.Customer,
			Date:       c.Columns.Date,
			Revenue:    c.Columns.Revenue,
			DateFormat: c.Columns.DateFormat,
		},
	}
}

// analyze loads the configured source and builds its RFM table.
func analyze(ctx context.Context) (*source.Dataset, *rfm.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	ds, err := source.Open(ctx, cfg.SourceKind(), sourceOptions(cfg))
	if err != nil {
		return nil, nil, err
	}

	table, err := ds.Table(cfg.Analysis.Quantiles)
	if err != nil {
		return nil, nil, err
	}
	return ds, table, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List supported transaction sources",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available sources:")
		cmd.Println()
		for _, loader := range source.All() {
			cmd.Printf("  %-9s - %s\n", loader.Kind(), loader.Description())
		}
		cmd.Println()
		cmd.Println("The kind is inferred from the --input extension unless --source is given.")
	},
}
