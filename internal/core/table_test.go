package core

import (
	"testing"

	"github.com/go-gota/gota/series"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		cols    []series.Series
		wantErr bool
	}{
		{
			name: "valid",
			cols: []series.Series{
				series.New([]string{"a", "b"}, series.String, "name"),
				series.New([]int{1, 2}, series.Int, "n"),
			},
		},
		{
			name: "unequal length",
			cols: []series.Series{
				series.New([]string{"a", "b"}, series.String, "name"),
				series.New([]int{1}, series.Int, "n"),
			},
			wantErr: true,
		},
		{
			name: "duplicate name",
			cols: []series.Series{
				series.New([]int{1}, series.Int, "n"),
				series.New([]int{2}, series.Int, "n"),
			},
			wantErr: true,
		},
		{
			name: "no columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.cols...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTable_Accessors(t *testing.T) {
	tbl := mustReadCSV(t, "name,score,ratio,ok\nA,1,0.5,true\nB,,1.5,false\n")

	if tbl.NumRows() != 2 || tbl.NumCols() != 4 {
		t.Fatalf("shape = %dx%d, want 2x4", tbl.NumRows(), tbl.NumCols())
	}

	wantTypes := map[string]series.Type{
		"name":  series.String,
		"score": series.Int,
		"ratio": series.Float,
		"ok":    series.Bool,
	}
	for name, want := range wantTypes {
		col, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("Column(%q) not found", name)
		}
		if col.Type() != want {
			t.Errorf("Column(%q).Type() = %v, want %v", name, col.Type(), want)
		}
	}

	if got := tbl.NumericColumns(); len(got) != 2 || got[0] != "score" || got[1] != "ratio" {
		t.Errorf("NumericColumns() = %v, want [score ratio]", got)
	}

	if v, missing := tbl.Cell(1, 1); !missing || v != "" {
		t.Errorf("Cell(1,1) = %q, %v; want missing", v, missing)
	}
	if v, missing := tbl.Cell(0, 2); missing || v != "0.5" {
		t.Errorf("Cell(0,2) = %q, %v; want 0.5", v, missing)
	}
	if _, ok := tbl.Column("nope"); ok {
		t.Error("Column(nope) found")
	}
}

func TestTable_Head(t *testing.T) {
	tbl := mustReadCSV(t, "n\n1\n2\n3\n4\n5\n6\n7\n")

	tests := []struct {
		n    int
		want int
	}{
		{5, 5},
		{0, 0},
		{-1, 0},
		{100, 7},
	}
	for _, tt := range tests {
		head := tbl.Head(tt.n)
		if head.NumRows() != tt.want {
			t.Errorf("Head(%d).NumRows() = %d, want %d", tt.n, head.NumRows(), tt.want)
		}
		if head.NumCols() != 1 {
			t.Errorf("Head(%d).NumCols() = %d, want 1", tt.n, head.NumCols())
		}
	}

	if tbl.NumRows() != 7 {
		t.Errorf("Head modified the source table: NumRows() = %d", tbl.NumRows())
	}
}

func TestTable_Equal(t *testing.T) {
	a := mustReadCSV(t, "x,y\n1,a\n,b\n")

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"same", "x,y\n1,a\n,b\n", true},
		{"int equals float", "x,y\n1.0,a\n,b\n", true},
		{"different value", "x,y\n2,a\n,b\n", false},
		{"missing vs present", "x,y\n1,a\n0,b\n", false},
		{"different name", "x,z\n1,a\n,b\n", false},
		{"different rows", "x,y\n1,a\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(mustReadCSV(t, tt.text)); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTable_RowKeyDistinguishesMissing(t *testing.T) {
	tbl := mustReadCSV(t, "a,b\nx,\n,x\nx,\n")

	if tbl.rowKey(0) == tbl.rowKey(1) {
		t.Error("rows [x,missing] and [missing,x] share a key")
	}
	if tbl.rowKey(0) != tbl.rowKey(2) {
		t.Error("identical rows have different keys")
	}
}
