package datagen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-rfm/internal/db"
	"github.com/pgEdge/pgedge-rfm/internal/logging"
)

var seedColumns = []string{"order_id", "customer_id", "customer_name", "order_date", "product", "revenue"}

// CreateTransactionsTable creates the table generate seeds, if missing.
func CreateTransactionsTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            order_id      UUID PRIMARY KEY,
            customer_id   TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            order_date    DATE NOT NULL,
            product       TEXT NOT NULL,
            revenue       NUMERIC(12,2) NOT NULL CHECK (revenue >= 0)
        )`, db.Identifier(table).Sanitize()))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// SeedPostgres copies orders into table in batches.
func SeedPostgres(ctx context.Context, pool *pgxpool.Pool, table string, orders []Order, cfg BatchInsertConfig) error {
	if err := CreateTransactionsTable(ctx, pool, table); err != nil {
		return err
	}

	progress := NewProgressReporter(table, int64(len(orders)), cfg.ProgressInterval)
	batchSize := max(cfg.BatchSize, 1)

	for start := 0; start < len(orders); start += batchSize {
		batch := orders[start:min(start+batchSize, len(orders))]

		n, err := pool.CopyFrom(ctx, db.Identifier(table), seedColumns,
			pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
				o := batch[i]
				id, err := uuid.Parse(o.ID)
				if err != nil {
					return nil, fmt.Errorf("bad order id %q: %w", o.ID, err)
				}
				return []any{
					pgtype.UUID{Bytes: [16]byte(id), Valid: true},
					o.Customer, o.CustomerName, o.Date, o.Product, o.Revenue,
				}, nil
			}))
		if err != nil {
			return fmt.Errorf("failed to copy orders into %s: %w", table, err)
		}
		progress.Update(n)
	}

	progress.Done()
	logging.Debug().
		Str("table", table).
		Int("orders", len(orders)).
		Msg("Seeded transactions")

	return nil
}
