package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the incident query engine's Prometheus metrics.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	RecordsLoaded prometheus.Gauge
}

// New creates and registers all incident metrics.
func New() *Metrics {
	return &Metrics{
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "redatlas_incident_queries_total",
			Help: "Total number of incident queries served, by operation",
		}, []string{"operation"}),
		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redatlas_incident_query_duration_seconds",
			Help:    "Incident query latency, by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		RecordsLoaded: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redatlas_incident_records_loaded",
			Help: "Number of incident records held in the in-memory store",
		}),
	}
}

// ObserveQuery records one completed query.
func (m *Metrics) ObserveQuery(operation string, d time.Duration) {
	m.QueriesTotal.WithLabelValues(operation).Inc()
	m.QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetRecordsLoaded publishes the loaded record count.
func (m *Metrics) SetRecordsLoaded(count int) {
	m.RecordsLoaded.Set(float64(count))
}
