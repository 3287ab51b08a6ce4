//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"order_id", "customer_id", "customer_name", "order_date", "product", "revenue"}

// Tier describes one class of customer.
type Tier struct {
	Name string

	// Weight is the relative share of customers in the tier.
	Weight int

	// OrderWeight is the relative number of orders each customer places.
	OrderWeight int

	// MinPrice and MaxPrice bound the revenue of a single order.
	MinPrice float64
	MaxPrice float64

	// From and To bound order dates, as fractions of the date window.
	From float64
	To   float64
}

// DefaultTiers gives a mix of loyal, regular, occasional and lapsed
// customers.
var DefaultTiers = []Tier{
	{Name: "loyal", Weight: 15, OrderWeight: 8, MinPrice: 40, MaxPrice: 400, From: 0.3, To: 1},
	{Name: "regular", Weight: 35, OrderWeight: 4, MinPrice: 20, MaxPrice: 200, From: 0, To: 1},
	{Name: "occasional", Weight: 35, OrderWeight: 1, MinPrice: 5, MaxPrice: 80, From: 0, To: 1},
	{Name: "lapsed", Weight: 15, OrderWeight: 2, MinPrice: 10, MaxPrice: 150, From: 0, To: 0.5},
}

// Order is one generated transaction.
type Order struct {
	ID           string
	Customer     string
	CustomerName string
	Date         time.Time
	Product      string
	Revenue      float64
}

// Transaction converts the order to the analysis input type.
func (o Order) Transaction() rfm.Transaction {
	return rfm.Transaction{Customer: o.Customer, Date: o.Date, Revenue: o.Revenue}
}

// Record returns the order as a CSV record matching CSVHeader.
func (o Order) Record() []string {
	return []string{
		o.ID,
		o.Customer,
		o.CustomerName,
		o.Date.Format(time.DateOnly),
		o.Product,
		strconv.FormatFloat(o.Revenue, 'f', 2, 64),
	}
}

// TransactionGenerator produces synthetic transaction logs.
type TransactionGenerator struct {
	Customers    int
	Transactions int
	Start        time.Time
	End          time.Time
	Tiers        []Tier

	faker *Faker
}

// NewTransactionGenerator creates a generator. The same non-zero seed
// always produces the same log.
func NewTransactionGenerator(customers, transactions int, start, end time.Time, seed uint64) *TransactionGenerator {
	return &TransactionGenerator{
		Customers:    customers,
		Transactions: transactions,
		Start:        start,
		End:          end,
		Tiers:        DefaultTiers,
		faker:        NewFakerWithSeed(seed),
	}
}

type customer struct {
	id   string
	name string
	tier Tier
}

// Generate builds the whole log, sorted by date. Every customer places at
// least one order.
func (g *TransactionGenerator) Generate(ctx context.Context) ([]Order, error) {
	if g.Customers < 1 {
		return nil, fmt.Errorf("customers must be at least 1")
	}
	if g.Transactions < g.Customers {
		return nil, fmt.Errorf("transactions (%d) must be >= customers (%d)", g.Transactions, g.Customers)
	}
	if !g.End.After(g.Start) {
		return nil, fmt.Errorf("end date must be after start date")
	}
	if len(g.Tiers) == 0 {
		return nil, fmt.Errorf("at least one customer tier is required")
	}

	weights := make([]int, len(g.Tiers))
	for i, t := range g.Tiers {
		weights[i] = t.Weight
	}

	customers := make([]customer, g.Customers)
	cumulative := make([]int, g.Customers)
	total := 0
	for i := range customers {
		tier := ChooseWeighted(g.faker, g.Tiers, weights)
		customers[i] = customer{
			id:   fmt.Sprintf("C%06d", i+1),
			name: g.faker.Name(),
			tier: tier,
		}
		total += max(tier.OrderWeight, 1)
		cumulative[i] = total
	}

	// One order each, the rest spread by order weight.
	counts := make([]int, g.Customers)
	for i := range counts {
		counts[i] = 1
	}
	for n := g.Customers; n < g.Transactions; n++ {
		r := g.faker.Int(1, total)
		counts[sort.SearchInts(cumulative, r)]++
	}

	window := g.End.Sub(g.Start)
	orders := make([]Order, 0, g.Transactions)
	for i, c := range customers {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		from := g.Start.Add(time.Duration(float64(window) * c.tier.From))
		to := g.Start.Add(time.Duration(float64(window) * c.tier.To))
		for k := 0; k < counts[i]; k++ {
			orders = append(orders, Order{
				ID:           g.faker.UUID(),
				Customer:     c.id,
				CustomerName: c.name,
				Date:         g.faker.Date(from, to),
				Product:      g.faker.ProductName(),
				Revenue:      g.faker.Price(c.tier.MinPrice, c.tier.MaxPrice),
			})
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.Before(orders[j].Date)
	})

	return orders, nil
}

// WriteCSV writes orders with a header row.
func WriteCSV(w io.Writer, orders []Order, progress *ProgressReporter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, o := range orders {
		if err := cw.Write(o.Record()); err != nil {
			return fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
		if progress != nil {
			progress.Update(1)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if progress != nil {
		progress.Done()
	}
	return nil
}

// Transactions converts orders to analysis input.
func Transactions(orders []Order) []rfm.Transaction {
	txs := make([]rfm.Transaction, len(orders))
	for i, o := range orders {
		txs[i] = o.Transaction()
	}
	return txs
}
