//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

// DateLayouts are tried in order when no date format is configured.
var DateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// Header maps the configured column names onto positions in a record.
type Header struct {
	cols     Columns
	customer int
	date     int
	revenue  int
}

// NewHeader locates the configured columns in names. Surrounding blanks and
// a leading byte order mark are ignored.
func NewHeader(names []string, cols Columns) (*Header, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	h := &Header{cols: cols}
	for _, c := range []struct {
		name string
		pos  *int
	}{
		{cols.Customer, &h.customer},
		{cols.Date, &h.date},
		{cols.Revenue, &h.revenue},
	} {
		i, ok := index[c.name]
		if !ok {
			return nil, &rfm.SchemaError{Column: c.name, Reason: "column not found"}
		}
		*c.pos = i
	}
	return h, nil
}

// CustomerIndex returns the position of the customer column.
func (h *Header) CustomerIndex() int { return h.customer }

// DateIndex returns the position of the date column.
func (h *Header) DateIndex() int { return h.date }

// RevenueIndex returns the position of the revenue column.
func (h *Header) RevenueIndex() int { return h.revenue }

// FromStrings converts a text record. row is the 1-based data row used in
// error messages.
func (h *Header) FromStrings(row int, record []string) (rfm.Transaction, error) {
	at := func(i int) any {
		if i < len(record) {
			return record[i]
		}
		return nil
	}
	return h.parse(row, at(h.customer), at(h.date), at(h.revenue))
}

// FromValues converts a record of driver values.
func (h *Header) FromValues(row int, record []any) (rfm.Transaction, error) {
	at := func(i int) any {
		if i < len(record) {
			return record[i]
		}
		return nil
	}
	return h.parse(row, at(h.customer), at(h.date), at(h.revenue))
}

func (h *Header) parse(row int, customer, date, revenue any) (rfm.Transaction, error) {
	id, ok := customerValue(customer)
	if !ok {
		return rfm.Transaction{}, &rfm.SchemaError{
			Column: h.cols.Customer, Row: row, Reason: "customer id is blank",
		}
	}

	when, err := dateValue(date, h.cols.DateFormat)
	if err != nil {
		return rfm.Transaction{}, &rfm.SchemaError{
			Column: h.cols.Date, Row: row, Reason: "not a date", Err: err,
		}
	}

	amount, err := revenueValue(revenue)
	if err != nil {
		return rfm.Transaction{}, &rfm.SchemaError{
			Column: h.cols.Revenue, Row: row, Reason: "not a valid revenue", Err: err,
		}
	}

	return rfm.Transaction{Customer: id, Date: when, Revenue: amount}, nil
}

func customerValue(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case []byte:
		s = string(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case int32:
		s = strconv.FormatInt(int64(x), 10)
	case int:
		s = strconv.Itoa(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func dateValue(v any, layout string) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("value is missing")
	case time.Time:
		return x, nil
	case []byte:
		return ParseDate(string(x), layout)
	case string:
		return ParseDate(x, layout)
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}

// ParseDate parses s with layout, or with the first matching DateLayouts
// entry when layout is empty.
func ParseDate(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("value is missing")
	}
	if layout != "" {
		return time.Parse(layout, s)
	}
	for _, l := range DateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func revenueValue(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("value is missing")
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case int:
		f = float64(x)
	case []byte:
		return revenueValue(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, fmt.Errorf("value is missing")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", s)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", f)
	}
	if f < 0 {
		return 0, fmt.Errorf("%v is negative", f)
	}
	return f, nil
}
