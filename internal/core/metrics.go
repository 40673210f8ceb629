package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	files    *prometheus.CounterVec
	failures *prometheus.CounterVec
	exports  *prometheus.CounterVec
	rows     prometheus.Histogram
	batch    prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetswap",
			Name:      "files_processed_total",
			Help:      "Files run through the pipeline, by input format and result.",
		}, []string{"format", "result"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetswap",
			Name:      "file_errors_total",
			Help:      "Per-file failures, by error kind.",
		}, []string{"kind"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetswap",
			Name:      "exports_total",
			Help:      "Export attempts, by target format and result.",
		}, []string{"format", "result"}),
		rows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sheetswap",
			Name:      "file_rows",
			Help:      "Rows per loaded file.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		}),
		batch: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sheetswap",
			Name:      "batch_duration_seconds",
			Help:      "Wall time to process one upload batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeFile(r *FileResult) {
	if m == nil {
		return
	}
	format := string(r.Format)
	if format == "" {
		format = "unknown"
	}
	if r.Failed() {
		m.files.WithLabelValues(format, "error").Inc()
		m.failures.WithLabelValues(ErrorKind(r.Err)).Inc()
		return
	}
	m.files.WithLabelValues(format, "ok").Inc()
	m.rows.Observe(float64(r.LoadedRows))
}

func (m *Metrics) observeExport(format ExportFormat, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exports.WithLabelValues(string(format), result).Inc()
}

func (m *Metrics) observeBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batch.Observe(d.Seconds())
}
