package stubservice

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the stub service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Predictions *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// NewMetrics registers the service collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionlens_stub_predictions_total",
				Help: "Predictions served, by region",
			},
			[]string{"region"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionlens_stub_errors_total",
				Help: "Rejected or failed prediction requests, by reason",
			},
			[]string{"reason"},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "regionlens_stub_predict_duration_seconds",
				Help:    "Time spent handling prediction requests",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
