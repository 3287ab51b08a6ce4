//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("source", "csv").Int("rows", 3).Msg("Loaded transactions")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "Loaded transactions" {
		t.Errorf("Unexpected message: %v", entry["message"])
	}
	if entry["source"] != "csv" {
		t.Errorf("Unexpected source field: %v", entry["source"])
	}
	if entry["level"] != "info" {
		t.Errorf("Unexpected level: %v", entry["level"])
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("hidden")
	Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("Warn message should be logged")
	}
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "chatty", Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("debug line")
	Info().Msg("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Error("Debug message should be filtered at fallback info level")
	}
	if !strings.Contains(out, "info line") {
		t.Error("Info message should be logged at fallback info level")
	}
}
