package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/sheetswap/internal/logging"
)

// DefaultPreviewRows matches the size of a quick look at a file.
const DefaultPreviewRows = 5

// Pipeline runs the per-file pass: load, clean, project, visualize.
type Pipeline struct {
	Loader      Loader
	PreviewRows int
}

// Process runs one file through the pipeline. It never returns nil and never
// panics on bad input: failures are recorded in the result so the caller can
// move on to the next file.
func (p *Pipeline) Process(ctx context.Context, index int, in FileInput, opts Options) *FileResult {
	start := time.Now()
	res := &FileResult{Index: index, Name: in.Name, Options: opts}
	defer func() { res.Duration = time.Since(start) }()

	logger := logging.WithFields(ctx, "file", in.Name, "index", index)

	t, format, err := p.Loader.Load(in.Name, in.Data)
	res.Format = format
	if err != nil {
		res.fail(err)
		logger.Warn("file rejected", "error", err, "kind", ErrorKind(err))
		return res
	}

	res.Columns = t.Names()
	res.LoadedRows = t.NumRows()
	res.Preview = t.Head(p.previewRows())
	logger.Debug("file loaded", "format", format, "rows", t.NumRows(), "columns", t.NumCols())

	t, stats := Clean(t, opts.Clean)
	if opts.Clean.DropDuplicates {
		res.addMessage(LevelSuccess, "Duplicates removed! (%d rows dropped)", stats.DuplicatesRemoved)
	}
	if opts.Clean.FillMissing {
		res.addMessage(LevelSuccess, "Missing values filled with column mean! (%d values in %d columns)",
			stats.ValuesFilled, len(stats.ColumnsFilled))
	}

	if opts.ColumnsSet {
		t, err = Project(t, opts.Columns)
		if err != nil {
			res.fail(err)
			logger.Warn("projection failed", "error", err)
			return res
		}
	}
	res.Table = t

	if opts.Visualize {
		chart, err := BuildBarChart(t)
		switch {
		case errors.Is(err, ErrNotEnoughNumeric):
			res.addMessage(LevelWarning, "Not enough numerical columns for visualization.")
		case err != nil:
			res.fail(err)
			return res
		default:
			res.Chart = chart
		}
	}

	logger.Debug("file processed",
		"rows", t.NumRows(),
		"columns", t.NumCols(),
		"duplicates_removed", stats.DuplicatesRemoved,
		"values_filled", stats.ValuesFilled,
	)
	return res
}

// Export serializes the final table of a processed file.
func (p *Pipeline) Export(res *FileResult, format ExportFormat) (*Download, error) {
	if res.Failed() {
		return nil, res.Err
	}
	return Export(res.Table, res.Name, format)
}

func (p *Pipeline) previewRows() int {
	if p.PreviewRows <= 0 {
		return DefaultPreviewRows
	}
	return p.PreviewRows
}

// fail records err as the reason this file stopped. The message always
// names the file.
func (r *FileResult) fail(err error) {
	r.Err = err
	msg := MapError(err)

	var (
		fe *FormatError
		pe *ParseError
	)
	var text string
	switch {
	case errors.As(err, &fe):
		text = "Error reading " + r.Name + ": " + msg.Message
	case errors.As(err, &pe):
		text = "Error reading " + r.Name + ": " + pe.Err.Error()
	default:
		text = r.Name + ": " + err.Error()
	}
	r.Messages = append(r.Messages, Message{Level: LevelError, Text: text, Code: msg.Code})
}
