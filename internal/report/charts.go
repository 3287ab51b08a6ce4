//-------------------------------------------------------------------------
//
// pgEdge RFM Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pgEdge/pgedge-rfm/internal/logging"
	"github.com/pgEdge/pgedge-rfm/internal/rfm"
)

// Chart selectors.
const (
	ChartAll           = "all"
	ChartRevenue       = "revenue"
	ChartTreemap       = "treemap"
	ChartDistributions = "distributions"
	ChartSegments      = "segments"
)

// ChartNames lists the selectable charts in page order.
var ChartNames = []string{ChartRevenue, ChartTreemap, ChartDistributions, ChartSegments}

const (
	chartWidth  = "1000px"
	chartHeight = "520px"
)

// ChartData is everything the charts are drawn from.
type ChartData struct {
	Revenues []float64
	Table    *rfm.Table
	Bins     int
}

// BuildCharts returns the charts named by which, in page order.
func BuildCharts(data ChartData, which string) ([]components.Charter, error) {
	if data.Table == nil {
		return nil, fmt.Errorf("no RFM table to chart")
	}
	bins := data.Bins
	if bins < 1 {
		bins = rfm.DefaultBins
	}

	var out []components.Charter
	add := func(name string, build func() []components.Charter) {
		if which == ChartAll || which == "" || which == name {
			out = append(out, build()...)
		}
	}

	add(ChartRevenue, func() []components.Charter {
		return []components.Charter{revenueHistogram(data.Revenues, bins)}
	})
	add(ChartTreemap, func() []components.Charter {
		return []components.Charter{segmentTreemap(data.Table)}
	})
	add(ChartDistributions, func() []components.Charter {
		var cs []components.Charter
		for _, d := range data.Table.Distributions(bins) {
			cs = append(cs, distributionChart(d))
		}
		return cs
	})
	add(ChartSegments, func() []components.Charter {
		return []components.Charter{segmentCounts(data.Table)}
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("unknown chart %q (expected all or one of %v)", which, ChartNames)
	}
	return out, nil
}

// WriteCharts renders the selected charts as one HTML page.
func WriteCharts(w io.Writer, data ChartData, which string) error {
	cs, err := BuildCharts(data, which)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.SetPageTitle("RFM analysis")
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(cs...)

	return page.Render(w)
}

// WriteChartsFile renders the selected charts to path. The file is left
// untouched when rendering fails.
func WriteChartsFile(path string, data ChartData, which string) error {
	var buf bytes.Buffer
	if err := WriteCharts(&buf, data, which); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Info().
		Str("path", path).
		Str("chart", which).
		Int("bytes", buf.Len()).
		Msg("Wrote charts")
	return nil
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     chartWidth,
		Height:    chartHeight,
	})
}

// revenueHistogram plots raw revenue per transaction.
func revenueHistogram(revenues []float64, bins int) *charts.Bar {
	hist := rfm.Histogram(revenues, bins)
	labels := make([]string, len(hist))
	data := make([]opts.BarData, len(hist))
	for i, b := range hist {
		labels[i] = fmt.Sprintf("%s-%s", short(b.Low), short(b.High))
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("Revenue"),
		charts.WithTitleOpts(opts.Title{
			Title:    "Revenue",
			Subtitle: fmt.Sprintf("%d transactions", len(revenues)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Revenue", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Transactions"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Transactions", data,
			charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "2%"}))
	return bar
}

// segmentTreemap sizes each segment name by its number of customers.
func segmentTreemap(t *rfm.Table) *charts.TreeMap {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		counts[row.SegmentName]++
	}

	nodes := make([]opts.TreeMapNode, 0, len(counts))
	for name, n := range counts {
		nodes = append(nodes, opts.TreeMapNode{
			Name:  fmt.Sprintf("%s (%d)", name, n),
			Value: n,
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Value != nodes[j].Value {
			return nodes[i].Value > nodes[j].Value
		}
		return nodes[i].Name < nodes[j].Name
	})

	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(
		initOpts("RFM segments"),
		charts.WithTitleOpts(opts.Title{
			Title:    "RFM segments",
			Subtitle: fmt.Sprintf("%d customers", len(t.Rows)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	tm.AddSeries("Segments", nodes,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return tm
}

// distributionChart draws one metric as density bars with the KDE curve
// laid over them.
func distributionChart(d rfm.Distribution) *charts.Bar {
	bars := make([]opts.BarData, len(d.Bins))
	for i, b := range d.Bins {
		bars[i] = opts.BarData{Value: []float64{(b.Low + b.High) / 2, b.Density}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(d.Metric),
		charts.WithTitleOpts(opts.Title{Title: d.Metric + " distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: d.Metric, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Density", Type: "value"}),
	)
	bar.AddSeries("Density", bars,
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}))

	if len(d.KDE) > 0 {
		points := make([]opts.LineData, len(d.KDE))
		for i, p := range d.KDE {
			points[i] = opts.LineData{Value: []float64{p.X, p.Y}}
		}
		line := charts.NewLine()
		line.AddSeries("KDE", points, charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(false),
		}))
		bar.Overlap(line)
	}
	return bar
}

// segmentCounts is a horizontal bar chart of customers per RFM_Segment,
// largest segment code on top.
func segmentCounts(t *rfm.Table) *charts.Bar {
	counts := t.SegmentCounts()
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Segment
		data[i] = opts.BarData{Value: c.Customers}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("RFM_Segment"),
		charts.WithTitleOpts(opts.Title{Title: "Customers per RFM_Segment"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Customers", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "RFM_Segment", Type: "category"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Customers", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	bar.XYReversal()
	return bar
}

func short(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
