package core

// exporter.go serializes a Table for download.
//
// Both formats write a header row of column names and no row-index column.
// Missing cells are empty in CSV and blank in Excel.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet written to Excel exports.
const SheetName = "Sheet1"

// Download is an export ready to be offered to the user.
type Download struct {
	Filename string
	MIMEType string
	Data     []byte
}

// OutputFilename swaps the extension of name for the target format's.
func OutputFilename(name string, format ExportFormat) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Extension()
}

// Export serializes t into the target format. Every failure is a
// *SerializationError.
func Export(t *Table, name string, format ExportFormat) (*Download, error) {
	var buf bytes.Buffer

	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, t)
	case FormatExcel:
		err = WriteXLSX(&buf, t)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, &SerializationError{Filename: name, Format: format, Err: err}
	}

	return &Download{
		Filename: OutputFilename(name, format),
		MIMEType: format.MIMEType(),
		Data:     buf.Bytes(),
	}, nil
}

// WriteCSV writes t as comma-separated text with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	for i, rec := range t.Records() {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes t as a single-sheet workbook. Numbers and booleans are
// stored as typed cells so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for c, name := range t.Names() {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}

	for c := 0; c < t.NumCols(); c++ {
		col := t.ColumnAt(c)
		for r := 0; r < t.NumRows(); r++ {
			e := col.Elem(r)
			if e.IsNA() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, cellValue(e)); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue maps a present element to the Go value excelize stores natively.
func cellValue(e series.Element) any {
	switch e.Type() {
	case series.Int:
		if i, err := e.Int(); err == nil {
			return i
		}
	case series.Float:
		return e.Float()
	case series.Bool:
		if b, err := e.Bool(); err == nil {
			return b
		}
	}
	return e.String()
}
