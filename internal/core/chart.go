package core

import (
	"math"
	"strconv"
)

// ChartSeries is one bar series; Missing marks rows without a bar.
type ChartSeries struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Missing []bool    `json:"missing"`
}

// BarChart is a grouped bar chart with one category per row position.
type BarChart struct {
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

// BuildBarChart charts the first two numeric columns of t, in table order.
// It returns ErrNotEnoughNumeric when t has fewer than two numeric columns.
func BuildBarChart(t *Table) (*BarChart, error) {
	numeric := t.NumericColumns()
	if len(numeric) < 2 {
		return nil, ErrNotEnoughNumeric
	}

	chart := &BarChart{Categories: make([]string, t.NumRows())}
	for i := range chart.Categories {
		chart.Categories[i] = strconv.Itoa(i)
	}

	for _, name := range numeric[:2] {
		col, _ := t.Column(name)
		values, missing := col.Float(), col.IsNaN()
		for i := range values {
			// NaN and ±Inf do not survive JSON encoding and have no bar
			// height; Missing carries the gap.
			if missing[i] || math.IsInf(values[i], 0) {
				values[i] = 0
				missing[i] = true
			}
		}
		chart.Series = append(chart.Series, ChartSeries{
			Name:    name,
			Values:  values,
			Missing: missing,
		})
	}
	return chart, nil
}

// Range returns the smallest and largest present value across all series,
// always including zero so bars have a baseline.
func (c *BarChart) Range() (lo, hi float64) {
	for _, s := range c.Series {
		for i, v := range s.Values {
			if s.Missing[i] {
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi
}
