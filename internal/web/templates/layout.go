package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// PageParams configures the upload page.
type PageParams struct {
	Title       string
	MaxFiles    int
	MaxFileSize int64
}

// Page is the single page of the app: an upload form whose results region
// is filled in by /process as the user changes controls.
func Page(p PageParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(p.Title)
		h.raw(`</title><link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="/static/app.js" defer></script></head><body>`)

		h.raw(`<header><h1>`)
		h.text(p.Title)
		h.raw(`</h1><p>Transform your files between CSV and Excel formats with built-in data cleaning and visualization!</p></header>`)

		h.raw(`<main><form id="upload-form" method="post" action="/process" enctype="multipart/form-data">`)
		h.raw(`<label class="upload">Upload your files (accepts CSV or Excel):`)
		h.raw(`<input type="file" name="files" multiple accept=".csv,.xlsx"`)
		h.attr("data-max-files", strconv.Itoa(p.MaxFiles))
		h.attr("data-max-size", strconv.FormatInt(p.MaxFileSize, 10))
		h.raw(`></label>`)
		h.raw(`<noscript><button type="submit">Process</button></noscript>`)
		h.raw(`<div id="results" aria-live="polite"></div>`)
		h.raw(`</form></main></body></html>`)
		return h.err
	})
}
