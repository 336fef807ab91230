package importer

import "github.com/prometheus/client_golang/prometheus"

// Import outcome labels.
const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// Metrics holds Prometheus metrics for accident imports.
type Metrics struct {
	ImportsTotal   *prometheus.CounterVec
	RowsTotal      prometheus.Counter
	ImportDuration *prometheus.HistogramVec
}

// NewMetrics registers and returns importer metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt_imports_total",
			Help: "Total accident imports by final status.",
		}, []string{"status"}),
		RowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hunt_import_rows_total",
			Help: "Total accident rows written by successful imports.",
		}),
		ImportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hunt_import_duration_seconds",
			Help:    "Duration of accident imports in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.ImportsTotal,
		m.RowsTotal,
		m.ImportDuration,
	)

	return m
}

func (m *Metrics) observe(status string, rows int, seconds float64) {
	if m == nil {
		return
	}
	m.ImportsTotal.WithLabelValues(status).Inc()
	m.ImportDuration.WithLabelValues(status).Observe(seconds)
	if status == statusSuccess {
		m.RowsTotal.Add(float64(rows))
	}
}
