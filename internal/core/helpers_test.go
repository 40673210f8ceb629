package core

import (
	"strings"
	"testing"
)

// mustReadCSV parses text as CSV or fails the test.
func mustReadCSV(t *testing.T, text string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ReadCSV(%q) error = %v", text, err)
	}
	return tbl
}

// assertRecords compares a table's display records with want.
func assertRecords(t *testing.T, tbl *Table, want [][]string) {
	t.Helper()
	got := tbl.Records()
	if len(got) != len(want) {
		t.Fatalf("Records() has %d lines, want %d:\n got  %q\n want %q", len(got), len(want), got, want)
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("Records()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
