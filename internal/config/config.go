//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-rfm.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-rfm/internal/report"
)

// Source kinds understood by the analyzer.
const (
	KindCSV      = "csv"
	KindXLSX     = "xlsx"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Config holds all configuration for pgedge-rfm.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Source describes where transactions are read from.
	Source SourceConfig `mapstructure:"source"`

	// Columns names the customer, date and revenue columns in the source.
	Columns ColumnsConfig `mapstructure:"columns"`

	// Analysis holds scoring parameters.
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Output controls how results are rendered.
	Output OutputConfig `mapstructure:"output"`

	// Store holds configuration for saving results to PostgreSQL.
	Store StoreConfig `mapstructure:"store"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// SourceConfig describes a transaction source.
type SourceConfig struct {
	// Kind is the source type: csv, xlsx, sqlite or postgres.
	// Left empty, it is inferred from the path extension.
	Kind string `mapstructure:"kind"`

	// Path is the file to read (csv, xlsx, sqlite).
	Path string `mapstructure:"path"`

	// Sheet is the worksheet to read (xlsx only; default: first sheet).
	Sheet string `mapstructure:"sheet"`

	// Delimiter is the field separator (csv only).
	Delimiter string `mapstructure:"delimiter"`

	// Connection is the PostgreSQL connection string (postgres only).
	Connection string `mapstructure:"connection"`

	// Table is the table to read (sqlite, postgres).
	Table string `mapstructure:"table"`

	// Query replaces Table with a custom SELECT (sqlite, postgres).
	Query string `mapstructure:"query"`
}

// ColumnsConfig names the input columns.
type ColumnsConfig struct {
	Customer string `mapstructure:"customer"`
	Date     string `mapstructure:"date"`
	Revenue  string `mapstructure:"revenue"`

	// DateFormat is a Go time layout; empty means try the common layouts.
	DateFormat string `mapstructure:"date_format"`
}

// AnalysisConfig holds scoring parameters.
type AnalysisConfig struct {
	// Quantiles is the number of buckets per metric.
	Quantiles int `mapstructure:"quantiles"`

	// TopN is the number of customers listed by best, worst and report.
	TopN int `mapstructure:"top_n"`

	// HistogramBins is the bin count of revenue and distribution charts.
	HistogramBins int `mapstructure:"histogram_bins"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	// Format is the table format: table, csv, markdown or json.
	Format string `mapstructure:"format"`

	// Charts is the HTML file charts are written to.
	Charts string `mapstructure:"charts"`

	// Workbook is the XLSX file written by export.
	Workbook string `mapstructure:"workbook"`
}

// StoreConfig holds configuration for saving results to PostgreSQL.
type StoreConfig struct {
	// Connection defaults to the source connection when empty.
	Connection string `mapstructure:"connection"`

	// Table receives the RFM rows.
	Table string `mapstructure:"table"`
}

// GenerateConfig holds configuration for synthetic transaction logs.
type GenerateConfig struct {
	// Customers is the number of distinct customers.
	Customers int `mapstructure:"customers"`

	// Transactions is the total number of orders.
	Transactions int `mapstructure:"transactions"`

	// Start and End bound the order dates (YYYY-MM-DD).
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`

	// Seed makes output reproducible; 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// Output is the CSV file to write.
	Output string `mapstructure:"output"`

	// Connection and Table seed a PostgreSQL table instead of a file.
	Connection string `mapstructure:"connection"`
	Table      string `mapstructure:"table"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Source: SourceConfig{
			Delimiter: ",",
		},
		Columns: ColumnsConfig{
			Customer: "customer_id",
			Date:     "order_date",
			Revenue:  "revenue",
		},
		Analysis: AnalysisConfig{
			Quantiles:     4,
			TopN:          3,
			HistogramBins: 10,
		},
		Output: OutputConfig{
			Format:   report.FormatTable,
			Charts:   "rfm-charts.html",
			Workbook: "rfm.xlsx",
		},
		Store: StoreConfig{
			Table: "rfm_results",
		},
		Generate: GenerateConfig{
			Customers:    500,
			Transactions: 5000,
			Start:        "2023-01-01",
			End:          "2024-12-31",
			Table:        "transactions",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-rfm.yaml
// 3. ~/.config/pgedge-rfm/pgedge-rfm.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-rfm")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-rfm"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SourceKind returns the configured source kind, inferring it from the
// path extension when not set.
func (c *Config) SourceKind() string {
	if c.Source.Kind != "" {
		return strings.ToLower(c.Source.Kind)
	}
	if c.Source.Connection != "" && c.Source.Path == "" {
		return KindPostgres
	}
	switch strings.ToLower(filepath.Ext(c.Source.Path)) {
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindCSV
	}
}

// Validate checks that the source, columns and analysis settings are usable.
func (c *Config) Validate() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	if c.Columns.Customer == "" || c.Columns.Date == "" || c.Columns.Revenue == "" {
		return fmt.Errorf("customer, date and revenue column names are required")
	}
	if c.Analysis.Quantiles < 2 {
		return fmt.Errorf("quantiles must be at least 2")
	}
	if c.Analysis.TopN < 0 {
		return fmt.Errorf("top_n must be non-negative")
	}
	if c.Analysis.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be at least 1")
	}
	if !slices.Contains(report.Formats, c.Output.Format) {
		return fmt.Errorf("format must be one of %s", strings.Join(report.Formats, ", "))
	}
	return nil
}

// ValidateSource checks that the configured source can be opened.
func (c *Config) ValidateSource() error {
	switch c.SourceKind() {
	case KindCSV:
		if c.Source.Path == "" {
			return fmt.Errorf("input path is required for csv sources")
		}
		if utf8.RuneCountInString(c.Source.Delimiter) != 1 {
			return fmt.Errorf("delimiter must be a single character")
		}
	case KindXLSX:
		if c.Source.Path == "" {
			return fmt.Errorf("input path is required for xlsx sources")
		}
	case KindSQLite:
		if c.Source.Path == "" {
			return fmt.Errorf("database path is required for sqlite sources")
		}
		if c.Source.Table == "" && c.Source.Query == "" {
			return fmt.Errorf("table or query is required for sqlite sources")
		}
	case KindPostgres:
		if c.Source.Connection == "" {
			return fmt.Errorf("connection string is required for postgres sources")
		}
		if c.Source.Table == "" && c.Source.Query == "" {
			return fmt.Errorf("table or query is required for postgres sources")
		}
	default:
		return fmt.Errorf("unknown source kind: %s", c.Source.Kind)
	}
	return nil
}

// StoreConnection returns the connection string used to store results.
func (c *Config) StoreConnection() string {
	if c.Store.Connection != "" {
		return c.Store.Connection
	}
	return c.Source.Connection
}

// ValidateStore checks configuration required to store results.
func (c *Config) ValidateStore() error {
	if c.StoreConnection() == "" {
		return fmt.Errorf("connection string is required to store results")
	}
	if c.Store.Table == "" {
		return fmt.Errorf("store table is required")
	}
	return nil
}

// GenerateWindow parses the generate date range.
func (c *Config) GenerateWindow() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.Generate.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid generate start date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.Generate.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid generate end date: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("generate end date must be after start date")
	}
	return start, end, nil
}

// ValidateGenerate checks configuration required for generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Customers < 1 {
		return fmt.Errorf("customers must be at least 1")
	}
	if c.Generate.Transactions < c.Generate.Customers {
		return fmt.Errorf("transactions must be >= customers")
	}
	if _, _, err := c.GenerateWindow(); err != nil {
		return err
	}
	if c.Generate.Output == "" && c.Generate.Connection == "" {
		return fmt.Errorf("an output file or a connection string is required")
	}
	if c.Generate.Connection != "" && c.Generate.Table == "" {
		return fmt.Errorf("table is required when generating into a database")
	}
	return nil
}
