package core

// table.go holds the in-memory tabular structure every pipeline stage works on.
//
// A Table is an ordered list of gota series. Each series is one named column
// (String, Int, Float or Bool) and missing entries are the series' NA elements.
// Stages never modify a Table they were given; they return a new one.

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/series"
)

// Table is an ordered sequence of equally long, uniquely named columns.
type Table struct {
	cols []series.Series
	rows int
}

// NewTable builds a Table from columns, validating that all columns have the
// same length and that names are unique.
func NewTable(cols ...series.Series) (*Table, error) {
	t := &Table{cols: make([]series.Series, 0, len(cols))}
	seen := make(map[string]bool, len(cols))

	for i, col := range cols {
		if col.Err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, col.Err)
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true

		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
		t.cols = append(t.cols, col)
	}

	return t, nil
}

// NumRows returns the number of rows. A table with no columns has no rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.rows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (series.Series, bool) {
	i := t.index(name)
	if i < 0 {
		return series.Series{}, false
	}
	return t.cols[i], true
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) series.Series {
	return t.cols[i]
}

func (t *Table) index(name string) int {
	for i, col := range t.cols {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// IsNumeric reports whether the i-th column holds numbers.
func (t *Table) IsNumeric(i int) bool {
	return isNumericType(t.cols[i].Type())
}

// NumericColumns returns the names of numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var names []string
	for i, col := range t.cols {
		if t.IsNumeric(i) {
			names = append(names, col.Name)
		}
	}
	return names
}

// Cell returns the display form of a cell and whether it is missing.
// Missing cells are returned as the empty string.
func (t *Table) Cell(row, col int) (string, bool) {
	e := t.cols[col].Elem(row)
	if e.IsNA() {
		return "", true
	}
	return formatElement(e), false
}

// Records returns the header followed by every row in display form.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.NumRows()+1)
	records = append(records, t.Names())

	for r := 0; r < t.NumRows(); r++ {
		row := make([]string, len(t.cols))
		for c := range t.cols {
			row[c], _ = t.Cell(r, c)
		}
		records = append(records, row)
	}
	return records
}

// Head returns a table with at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n >= t.NumRows() {
		return t
	}
	if n < 0 {
		n = 0
	}
	return t.subsetRows(seq(n))
}

// subsetRows keeps the given row positions, in the given order.
func (t *Table) subsetRows(rows []int) *Table {
	out := &Table{cols: make([]series.Series, len(t.cols)), rows: len(rows)}
	for i, col := range t.cols {
		if len(rows) == 0 {
			out.cols[i] = series.New([]string{}, col.Type(), col.Name)
			continue
		}
		sub := col.Subset(rows)
		sub.Name = col.Name
		out.cols[i] = sub
	}
	return out
}

// withColumn returns a copy of t with the i-th column replaced.
func (t *Table) withColumn(i int, col series.Series) *Table {
	cols := make([]series.Series, len(t.cols))
	copy(cols, t.cols)
	cols[i] = col
	return &Table{cols: cols, rows: t.rows}
}

// Equal reports whether two tables have the same column names and the same
// row values. Column types are not compared, so an Int column equals a Float
// column holding the same numbers.
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() || t.NumRows() != o.NumRows() {
		return false
	}
	for c := range t.cols {
		if t.cols[c].Name != o.cols[c].Name {
			return false
		}
		for r := 0; r < t.NumRows(); r++ {
			a, b := t.cols[c].Elem(r), o.cols[c].Elem(r)
			if a.IsNA() != b.IsNA() {
				return false
			}
			if a.IsNA() {
				continue
			}
			if t.IsNumeric(c) && o.IsNumeric(c) {
				if a.Float() != b.Float() {
					return false
				}
				continue
			}
			if formatElement(a) != formatElement(b) {
				return false
			}
		}
	}
	return true
}

// rowKey builds a comparable key for a row. Missing cells compare equal to
// each other and never to a present value; 0 and -0 are the same value.
func (t *Table) rowKey(r int) string {
	var b []byte
	for c := range t.cols {
		e := t.cols[c].Elem(r)
		if e.IsNA() {
			b = append(b, 0x01)
		} else {
			s := formatElement(e)
			if s == "-0" {
				s = "0"
			}
			b = strconv.AppendInt(b, int64(len(s)), 10)
			b = append(b, ':')
			b = append(b, s...)
		}
		b = append(b, 0x00)
	}
	return string(b)
}

func isNumericType(t series.Type) bool {
	return t == series.Int || t == series.Float
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
