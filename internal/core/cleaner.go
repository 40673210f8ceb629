package core

import (
	"github.com/go-gota/gota/series"
)

// CleanStats reports what Clean changed.
type CleanStats struct {
	DuplicatesRemoved int
	ValuesFilled      int
	ColumnsFilled     []string
}

// Clean applies the enabled cleaning steps: deduplication first, then
// mean fill, so means are computed over the deduplicated rows.
func Clean(t *Table, opts CleanOptions) (*Table, CleanStats) {
	var stats CleanStats

	if opts.DropDuplicates {
		before := t.NumRows()
		t = DropDuplicates(t)
		stats.DuplicatesRemoved = before - t.NumRows()
	}

	if opts.FillMissing {
		var filled map[string]int
		t, filled = FillMissingMean(t)
		for _, name := range t.Names() {
			if n, ok := filled[name]; ok {
				stats.ColumnsFilled = append(stats.ColumnsFilled, name)
				stats.ValuesFilled += n
			}
		}
	}

	return t, stats
}

// DropDuplicates removes rows equal to an earlier row in every column,
// keeping the first occurrence. Missing cells compare equal to each other.
func DropDuplicates(t *Table) *Table {
	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]int, 0, t.NumRows())

	for r := 0; r < t.NumRows(); r++ {
		key := t.rowKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, r)
	}

	if len(keep) == t.NumRows() {
		return t
	}
	return t.subsetRows(keep)
}

// FillMissingMean replaces missing entries of numeric columns with the mean
// of the column's present values. Text and boolean columns are untouched, as
// are numeric columns with no present value. Filled columns become Float.
// The returned map counts filled cells per column name.
func FillMissingMean(t *Table) (*Table, map[string]int) {
	filled := make(map[string]int)

	for c := 0; c < t.NumCols(); c++ {
		if !t.IsNumeric(c) {
			continue
		}

		col := t.ColumnAt(c)
		mean, ok := columnMean(col)
		if !ok {
			continue
		}

		values := col.Float()
		missing := col.IsNaN()
		n := 0
		for i := range values {
			if missing[i] {
				values[i] = mean
				missing[i] = false
				n++
			}
		}
		if n == 0 {
			continue
		}

		replaced := series.New(floatCells(values, missing), series.Float, col.Name)
		replaced.Name = col.Name
		t = t.withColumn(c, replaced)
		filled[col.Name] = n
	}

	return t, filled
}

// columnMean averages the present values of a numeric column. ok is false
// when no value is present.
func columnMean(col series.Series) (mean float64, ok bool) {
	values := col.Float()
	missing := col.IsNaN()

	var sum float64
	n := 0
	for i, v := range values {
		if missing[i] {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
