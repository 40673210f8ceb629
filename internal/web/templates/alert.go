package templates

import (
	"context"
	"io"

	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/a-h/templ"
)

// Alert renders one status line.
func Alert(m core.Message) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		role := "status"
		if m.Level == core.LevelError {
			role = "alert"
		}
		h.raw(`<div class="alert alert-`)
		h.text(string(m.Level))
		h.raw(`"`)
		h.attr("role", role)
		h.raw(`>`)
		h.text(m.Text)
		if m.Code != "" {
			h.raw(` <span class="code">`)
			h.text(m.Code)
			h.raw(`</span>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorAlert renders a request-level failure with a suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<span class="code">`)
			h.text(code)
			h.raw(`</span>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
