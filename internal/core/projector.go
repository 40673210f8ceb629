package core

import (
	"fmt"

	"github.com/go-gota/gota/series"
)

// Project returns a table with exactly the named columns, in the given
// order. A name listed twice is kept once, at its first position. An empty
// selection yields a table with no columns.
func Project(t *Table, names []string) (*Table, error) {
	cols := make([]series.Series, 0, len(names))
	picked := make(map[string]bool, len(names))

	for _, name := range names {
		if picked[name] {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		picked[name] = true
		cols = append(cols, col)
	}

	if len(cols) == 0 {
		return &Table{}, nil
	}
	return NewTable(cols...)
}
