// Package core provides the tabular cleaning and conversion pipeline.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"fmt"
	"strings"
	"time"
)

// FileFormat is an input format, chosen by file extension.
type FileFormat string

const (
	FileCSV  FileFormat = "csv"
	FileXLSX FileFormat = "xlsx"
)

// ExportFormat is a target format for download.
type ExportFormat string

const (
	FormatCSV   ExportFormat = "CSV"
	FormatExcel ExportFormat = "Excel"
)

// MIME types offered with each download.
const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseExportFormat accepts "csv", "excel" or "xlsx" in any case.
// An empty string selects CSV, the first option offered to users.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Extension returns the file extension, with dot, for the format.
func (f ExportFormat) Extension() string {
	if f == FormatExcel {
		return ".xlsx"
	}
	return ".csv"
}

// MIMEType returns the content type served with the format.
func (f ExportFormat) MIMEType() string {
	if f == FormatExcel {
		return MIMEXLSX
	}
	return MIMECSV
}

// CleanOptions toggles the two cleaning steps.
type CleanOptions struct {
	DropDuplicates bool
	FillMissing    bool
}

// Options are the per-file choices a user makes.
type Options struct {
	Clean CleanOptions

	// Columns is the projection, in the order to keep. It only applies when
	// ColumnsSet is true; otherwise every column is kept.
	Columns    []string
	ColumnsSet bool

	Visualize bool
	Export    ExportFormat
}

// FileInput is one uploaded file.
type FileInput struct {
	Name string
	Data []byte
}

// MessageLevel classifies a user-visible status line.
type MessageLevel string

const (
	LevelSuccess MessageLevel = "success"
	LevelInfo    MessageLevel = "info"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// Message is a status line shown next to a file (or the batch).
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
	Code  string       `json:"code,omitempty"`
}

// FileResult is the outcome of one per-file pass.
type FileResult struct {
	Index  int
	Name   string
	Format FileFormat

	// Columns of the table as loaded, before projection. UIs offer these
	// in the column picker.
	Columns    []string
	LoadedRows int

	// Preview is the first rows of the loaded table.
	Preview *Table

	// Table is the final table after cleaning and projection.
	Table *Table

	// Chart is set when visualization was requested and possible.
	Chart *BarChart

	Options  Options
	Messages []Message
	Err      error
	Duration time.Duration
}

// Failed reports whether the file was rejected.
func (r *FileResult) Failed() bool {
	return r.Err != nil
}

func (r *FileResult) addMessage(level MessageLevel, format string, args ...any) {
	r.Messages = append(r.Messages, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

// BatchResult is the outcome of processing every uploaded file once.
type BatchResult struct {
	ID       string
	Files    []*FileResult
	Messages []Message
	Duration time.Duration
}

// Failed returns the number of files that were rejected.
func (b *BatchResult) Failed() int {
	n := 0
	for _, f := range b.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}
