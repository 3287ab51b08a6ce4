//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-rfm/internal/rfm"
	"github.com/pgEdge/pgedge-rfm/internal/source"
	"github.com/pgEdge/pgedge-rfm/internal/testutil"
)

var columns = source.Columns{Customer: "customer_id", Date: "order_date", Revenue: "revenue"}

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		opts source.Options
		want string
	}{
		{source.Options{Table: "orders"}, `SELECT * FROM "orders"`},
		{source.Options{Table: "sales.orders"}, `SELECT * FROM "sales"."orders"`},
		{source.Options{Table: "orders", Query: "SELECT 1"}, "SELECT 1"},
	}
	for _, tt := range tests {
		got, err := SelectQuery(tt.opts)
		if err != nil {
			t.Errorf("SelectQuery(%+v) failed: %v", tt.opts, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SelectQuery(%+v) = %s, want %s", tt.opts, got, tt.want)
		}
	}

	if _, err := SelectQuery(source.Options{}); err == nil {
		t.Error("Expected error without table or query")
	}
}

func TestNormalize(t *testing.T) {
	var n pgtype.Numeric
	if err := n.Scan("12.50"); err != nil {
		t.Fatalf("Failed to build numeric: %v", err)
	}
	if got := normalize(n); got != 12.5 {
		t.Errorf("normalize(numeric) = %v, want 12.5", got)
	}
	if got := normalize(pgtype.Numeric{}); got != nil {
		t.Errorf("normalize(NULL numeric) = %v, want nil", got)
	}

	id := uuid.New()
	if got := normalize([16]byte(id)); got != id.String() {
		t.Errorf("normalize(uuid) = %v, want %s", got, id)
	}
	if got := normalize(int16(7)); got != int64(7) {
		t.Errorf("normalize(int16) = %v (%T)", got, got)
	}
	if got := normalize("C1"); got != "C1" {
		t.Errorf("normalize(string) = %v", got)
	}
}

func TestLoad(t *testing.T) {
	connStr := testutil.SkipIfNoPostgres(t)
	testConnStr := testutil.CreateTestDB(t, connStr, "source")
	cleanup := testutil.NewTestCleanup(t, connStr, testutil.GetDBNameFromConnStr(testConnStr))
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, testConnStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
        CREATE TABLE orders (
            customer_id BIGINT NOT NULL,
            order_date  DATE NOT NULL,
            revenue     NUMERIC(12,2) NOT NULL
        );
        INSERT INTO orders VALUES
            (1, '2024-01-05', 10.50),
            (2, '2024-01-06', 20.00),
            (1, '2024-02-01', 4.25)`)
	if err != nil {
		t.Fatalf("Failed to create orders: %v", err)
	}

	loader := &Loader{}
	txs, err := loader.Load(ctx, source.Options{
		Connection: testConnStr, Table: "orders", Columns: columns,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(txs))
	}
	if txs[0].Customer != "1" || txs[0].Revenue != 10.5 {
		t.Errorf("Unexpected first transaction %+v", txs[0])
	}
	if !txs[2].Date.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", txs[2].Date)
	}

	_, err = loader.Load(ctx, source.Options{
		Connection: testConnStr, Table: "orders",
		Columns: source.Columns{Customer: "client", Date: "order_date", Revenue: "revenue"},
	})
	var schemaErr *rfm.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("Expected SchemaError for missing column, got %v", err)
	}
}

func TestLoadUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	loader := &Loader{}
	_, err := loader.Load(ctx, source.Options{
		Connection: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1",
		Table:      "orders",
		Columns:    columns,
	})
	var fileErr *rfm.InputFileError
	if !errors.As(err, &fileErr) {
		t.Errorf("Expected InputFileError, got %v", err)
	}
}
