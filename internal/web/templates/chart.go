package templates

import (
	"context"
	"io"
	"math"
	"strconv"

	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/a-h/templ"
)

// Chart geometry, in SVG user units.
const (
	chartWidth   = 720
	chartHeight  = 260
	chartPadding = 32
	maxBars      = 200
)

var seriesColors = []string{"#1f77b4", "#ff7f0e"}

// BarChart renders a grouped bar chart as inline SVG. Only the first
// maxBars categories are drawn.
func BarChart(c *core.BarChart) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		n := min(len(c.Categories), maxBars)
		lo, hi := c.Range()
		span := hi - lo
		if span == 0 {
			span = 1
		}

		plotW := float64(chartWidth - 2*chartPadding)
		plotH := float64(chartHeight - 2*chartPadding)
		y := func(v float64) float64 { return chartPadding + (hi-v)/span*plotH }
		baseline := y(0)

		h.rawf(`<figure class="chart"><svg viewBox="0 0 %d %d" role="img"`, chartWidth, chartHeight)
		h.attr("aria-label", "Bar chart of "+seriesNames(c))
		h.raw(`>`)
		h.rawf(`<line x1="%d" y1="%.2f" x2="%d" y2="%.2f" stroke="#888"/>`,
			chartPadding, baseline, chartWidth-chartPadding, baseline)
		h.rawf(`<text x="4" y="%d" font-size="10">`, chartPadding)
		h.text(formatTick(hi))
		h.rawf(`</text><text x="4" y="%d" font-size="10">`, chartHeight-chartPadding)
		h.text(formatTick(lo))
		h.raw(`</text>`)

		if n > 0 {
			group := plotW / float64(n)
			bar := group * 0.8 / float64(len(c.Series))
			for i := 0; i < n; i++ {
				for s, series := range c.Series {
					if series.Missing[i] {
						continue
					}
					v := series.Values[i]
					top, bottom := y(math.Max(v, 0)), y(math.Min(v, 0))
					x := chartPadding + float64(i)*group + group*0.1 + float64(s)*bar
					h.rawf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>`,
						x, top, bar, bottom-top, seriesColors[s%len(seriesColors)])
					h.text(series.Name + " [" + c.Categories[i] + "]: " + formatTick(v))
					h.raw(`</title></rect>`)
				}
			}
		}
		h.raw(`</svg><figcaption>`)
		for s, series := range c.Series {
			h.rawf(`<span class="legend" style="color:%s">&#9632;</span> `, seriesColors[s%len(seriesColors)])
			h.text(series.Name)
			h.raw(` `)
		}
		if len(c.Categories) > n {
			h.rawf(`<em>first %d of %d rows</em>`, n, len(c.Categories))
		}
		h.raw(`</figcaption></figure>`)
		return h.err
	})
}

func seriesNames(c *core.BarChart) string {
	out := ""
	for i, s := range c.Series {
		if i > 0 {
			out += " and "
		}
		out += s.Name
	}
	return out
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
