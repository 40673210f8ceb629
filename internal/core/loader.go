package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DetectFormat picks the input format from a file name's extension.
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return FileCSV, nil
	case ".xlsx":
		return FileXLSX, nil
	default:
		return "", &FormatError{Filename: filename, Ext: ext}
	}
}

// Loader parses uploaded bytes into a Table.
type Loader struct {
	// MaxFileSize rejects larger inputs when positive.
	MaxFileSize int64
}

// Load detects the format of name and parses data accordingly.
func (l Loader) Load(name string, data []byte) (*Table, FileFormat, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, "", err
	}

	t, err := l.LoadFormat(name, data, format)
	return t, format, err
}

// LoadFormat parses data as the given format. Every failure is a *ParseError.
func (l Loader) LoadFormat(name string, data []byte, format FileFormat) (*Table, error) {
	if l.MaxFileSize > 0 && int64(len(data)) > l.MaxFileSize {
		return nil, &ParseError{Filename: name, Format: format,
			Err: fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), l.MaxFileSize)}
	}

	var (
		t   *Table
		err error
	)
	switch format {
	case FileCSV:
		t, err = ReadCSV(bytes.NewReader(data))
	case FileXLSX:
		t, err = ReadXLSX(bytes.NewReader(data))
	default:
		return nil, &FormatError{Filename: name, Ext: string(format)}
	}
	if err != nil {
		return nil, &ParseError{Filename: name, Format: format, Err: err}
	}
	return t, nil
}

// ReadCSV parses comma-separated text with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(decodeText(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		rows = append(rows, rec)
	}

	t, err := TableFromRecords(header, rows)
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return t, nil
}

// ReadXLSX parses the first worksheet of an OOXML workbook. The first row is
// the header. Cells are read raw, so numbers keep full precision regardless
// of the display format.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("invalid workbook: no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: read sheet %q: %w", sheets[0], err)
	}

	// GetRows trims trailing empty rows but keeps interior blank ones.
	for len(rows) > 0 && isEmptyRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	width := len(header)
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		width = max(width, len(row))
		data = append(data, row)
	}

	// Cells right of the header still belong to a column; it just has no name.
	for len(header) < width {
		header = append(header, "")
	}

	t, err := TableFromRecords(header, data)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
