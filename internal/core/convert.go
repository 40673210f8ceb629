package core

// convert.go turns raw string cells into typed columns.
//
// Both loaders produce a header plus rows of strings. From there the rules are
// shared:
//   - A fixed set of tokens ("", "NA", "NaN", "null", ...) means missing
//   - Blank header names become "Unnamed: <i>", repeated names get ".1", ".2"
//   - Each column gets the narrowest type that fits every present cell:
//     Int, then Float, then Bool, otherwise String
//   - A column with no present cells is Float, so it counts as numeric

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// naToken is how gota spells a missing element when parsing strings.
const naToken = "NaN"

// missingTokens are cell values read as missing.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"<NA>": true,
	"#N/A": true,
	"None": true,
}

// IsMissing reports whether a raw cell value represents a missing value.
func IsMissing(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// InferType picks the column type for a set of raw cell values.
func InferType(values []string) series.Type {
	var present, ints, floats, bools int

	for _, v := range values {
		v = strings.TrimSpace(v)
		if missingTokens[v] {
			continue
		}
		present++

		if _, err := strconv.Atoi(v); err == nil {
			ints++
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			floats++
			continue
		}
		if isBoolToken(v) {
			bools++
		}
	}

	switch {
	case present == 0:
		return series.Float
	case ints == present:
		return series.Int
	case ints+floats == present:
		return series.Float
	case bools == present:
		return series.Bool
	default:
		return series.String
	}
}

func isBoolToken(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

// BuildColumn converts raw cells into a typed column. The type is inferred
// unless the cells are all text.
func BuildColumn(name string, values []string) series.Series {
	t := InferType(values)
	cells := make([]string, len(values))

	for i, v := range values {
		switch {
		case IsMissing(v):
			cells[i] = naToken
		case t == series.String:
			cells[i] = v
		case t == series.Bool:
			cells[i] = strings.ToLower(strings.TrimSpace(v))
		default:
			cells[i] = strings.TrimSpace(v)
		}
	}

	col := series.New(cells, t, name)
	col.Name = name
	return col
}

// FixHeader makes column names usable as unique identifiers.
// Blank names become "Unnamed: <i>" and repeats are suffixed ".1", ".2", ...
func FixHeader(header []string) []string {
	out := make([]string, len(header))
	next := make(map[string]int, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		if _, dup := next[name]; dup {
			base := name
			k := next[base]
			for {
				name = fmt.Sprintf("%s.%d", base, k)
				k++
				if _, taken := next[name]; !taken {
					break
				}
			}
			next[base] = k
		}
		next[name] = 1
		out[i] = name
	}

	return out
}

// TableFromRecords builds a Table from a header row and data rows. Rows
// shorter than the header are padded with missing cells; longer rows are an
// error naming the offending line (1-indexed, header is line 1).
func TableFromRecords(header []string, rows [][]string) (*Table, error) {
	names := FixHeader(header)
	raw := make([][]string, len(names))
	for c := range raw {
		raw[c] = make([]string, len(rows))
	}

	for r, row := range rows {
		if len(row) > len(names) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", r+2, len(names), len(row))
		}
		for c := range names {
			if c < len(row) {
				raw[c][r] = row[c]
			}
		}
	}

	cols := make([]series.Series, len(names))
	for c, name := range names {
		cols[c] = BuildColumn(name, raw[c])
	}
	return NewTable(cols...)
}

// formatElement renders a present element: integers in base 10, floats in
// the shortest form that parses back to the same value.
func formatElement(e series.Element) string {
	switch e.Type() {
	case series.Float:
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	case series.Int:
		i, err := e.Int()
		if err != nil {
			return e.String()
		}
		return strconv.Itoa(i)
	default:
		return e.String()
	}
}

// floatCells renders float values as gota-parsable strings, with NA where
// missing is set.
func floatCells(values []float64, missing []bool) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		if missing[i] {
			cells[i] = naToken
			continue
		}
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return cells
}
