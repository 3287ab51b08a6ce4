// Package main is the entry point for pgedge-rfm.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-rfm/internal/cli"

	// Register transaction sources
	_ "github.com/pgEdge/pgedge-rfm/internal/source/csvfile"
	_ "github.com/pgEdge/pgedge-rfm/internal/source/postgres"
	_ "github.com/pgEdge/pgedge-rfm/internal/source/sqlite"
	_ "github.com/pgEdge/pgedge-rfm/internal/source/xlsx"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
