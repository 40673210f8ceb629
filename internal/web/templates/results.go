package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/a-h/templ"
)

// Results renders every processed file followed by the batch summary.
func Results(batch *core.BatchResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="results"`)
		h.attr("data-batch", batch.ID)
		h.raw(`>`)
		for _, f := range batch.Files {
			h.render(ctx, FileCard(f))
		}
		for _, m := range batch.Messages {
			h.render(ctx, Alert(m))
		}
		h.raw(`</div>`)
		return h.err
	})
}

// FileCard renders the preview, controls and output of one file. Control
// names carry the file index so one form holds every file's choices.
func FileCard(res *core.FileResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		idx := strconv.Itoa(res.Index)

		h.raw(`<section class="file"`)
		h.attr("id", "file-"+idx)
		h.raw(`>`)

		// Nothing loaded, so there is nothing to configure.
		if res.Preview == nil {
			h.raw(`<h2>`)
			h.text(res.Name)
			h.raw(`</h2>`)
			for _, m := range res.Messages {
				h.render(ctx, Alert(m))
			}
			h.raw(`</section>`)
			return h.err
		}

		h.raw(`<h2>Preview of `)
		h.text(res.Name)
		h.raw(`</h2>`)
		h.render(ctx, PreviewTable(res.Preview))

		h.raw(`<h3>Data Cleaning Options for `)
		h.text(res.Name)
		h.raw(`</h3>`)
		checkbox(h, "dedup-"+idx, "Remove Duplicates", res.Options.Clean.DropDuplicates)
		checkbox(h, "fill-"+idx, "Fill Missing Values", res.Options.Clean.FillMissing)

		h.raw(`<h3>Select Columns to Keep for `)
		h.text(res.Name)
		h.raw(`</h3>`)
		columnPicker(h, idx, res)

		h.raw(`<h3>Data Visualization for `)
		h.text(res.Name)
		h.raw(`</h3>`)
		checkbox(h, "chart-"+idx, "Show Visualization", res.Options.Visualize)
		if res.Chart != nil {
			h.render(ctx, BarChart(res.Chart))
		}

		for _, m := range res.Messages {
			h.render(ctx, Alert(m))
		}

		if !res.Failed() {
			h.raw(`<h3>Convert `)
			h.text(res.Name)
			h.raw(` to:</h3>`)
			formatPicker(h, idx, res.Options.Export)
			h.raw(`<button type="button" class="download"`)
			h.attr("data-download", idx)
			h.raw(`>Download `)
			h.text(core.OutputFilename(res.Name, exportOrDefault(res.Options.Export)))
			h.raw(`</button>`)
		}

		h.raw(`</section>`)
		return h.err
	})
}

// PreviewTable renders a table with a header row.
func PreviewTable(t *core.Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		records := t.Records()

		h.raw(`<div class="table-wrap"><table><thead><tr>`)
		for _, name := range records[0] {
			h.raw(`<th>`)
			h.text(name)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for r, row := range records[1:] {
			h.raw(`<tr>`)
			for c, v := range row {
				if _, missing := t.Cell(r, c); missing {
					h.raw(`<td class="missing">&lt;NA&gt;</td>`)
					continue
				}
				if t.IsNumeric(c) {
					h.raw(`<td class="num">`)
				} else {
					h.raw(`<td>`)
				}
				h.text(v)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></div>`)
		return h.err
	})
}

func checkbox(h *htmlWriter, name, label string, checked bool) {
	h.raw(`<label class="toggle"><input type="checkbox" value="on"`)
	h.attr("name", name)
	if checked {
		h.raw(` checked`)
	}
	h.raw(`> `)
	h.text(label)
	h.raw(`</label>`)
}

func columnPicker(h *htmlWriter, idx string, res *core.FileResult) {
	selected := make(map[string]bool, len(res.Options.Columns))
	for _, c := range res.Options.Columns {
		selected[c] = true
	}

	h.raw(`<input type="hidden" value="1"`)
	h.attr("name", "columns-set-"+idx)
	h.raw(`><select multiple`)
	h.attr("name", "columns-"+idx)
	h.attr("size", strconv.Itoa(min(len(res.Columns), 8)))
	h.raw(`>`)
	for _, name := range res.Columns {
		h.raw(`<option`)
		h.attr("value", name)
		if !res.Options.ColumnsSet || selected[name] {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(name)
		h.raw(`</option>`)
	}
	h.raw(`</select>`)

	// Pick order; the page script rewrites these as the selection changes.
	h.raw(`<span class="column-order"`)
	h.attr("data-for", "columns-"+idx)
	h.raw(`>`)
	if res.Options.ColumnsSet {
		for _, name := range res.Options.Columns {
			h.raw(`<input type="hidden"`)
			h.attr("name", "columns-order-"+idx)
			h.attr("value", name)
			h.raw(`>`)
		}
	}
	h.raw(`</span>`)
}

func formatPicker(h *htmlWriter, idx string, current core.ExportFormat) {
	current = exportOrDefault(current)
	for _, f := range []core.ExportFormat{core.FormatCSV, core.FormatExcel} {
		h.raw(`<label class="toggle"><input type="radio"`)
		h.attr("name", "format-"+idx)
		h.attr("value", string(f))
		if f == current {
			h.raw(` checked`)
		}
		h.raw(`> `)
		h.text(string(f))
		h.raw(`</label>`)
	}
}

func exportOrDefault(f core.ExportFormat) core.ExportFormat {
	if f == "" {
		return core.FormatCSV
	}
	return f
}
