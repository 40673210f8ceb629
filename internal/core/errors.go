package core

// errors.go defines the per-file error taxonomy.
//
// Every failure inside the pipeline is one of these, wrapped with context.
// They are caught at the per-file boundary (see Process) and reported; they
// never abort the rest of a batch.

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile is wrapped by ParseError when a file has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrFileTooLarge is wrapped by ParseError when input exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownColumn is returned when a projection names a column the table lacks.
	ErrUnknownColumn = errors.New("column not found")

	// ErrNotEnoughNumeric is returned by BuildBarChart when fewer than two
	// numeric columns exist. It is reported as a warning, not a failure.
	ErrNotEnoughNumeric = errors.New("not enough numerical columns for visualization")

	// ErrTooManyFiles is returned when a batch exceeds the configured file count.
	ErrTooManyFiles = errors.New("too many files in one upload")
)

// FormatError reports a file whose extension is not a supported input format.
type FormatError struct {
	Filename string
	Ext      string
}

func (e *FormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file type: %s", ext)
}

// ParseError reports content that does not match its declared format.
type ParseError struct {
	Filename string
	Format   FileFormat
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error reading %s as %s: %v", e.Filename, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SerializationError reports a failure producing export bytes.
type SerializationError struct {
	Filename string
	Format   ExportFormat
	Err      error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("error converting %s to %s: %v", e.Filename, e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ErrorKind names the taxonomy class of err for logs and metrics.
func ErrorKind(err error) string {
	var (
		fe *FormatError
		pe *ParseError
		se *SerializationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return "format"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &se):
		return "serialization"
	case errors.Is(err, ErrUnknownColumn):
		return "projection"
	default:
		return "other"
	}
}
