// Package metrics records search controller outcomes as Prometheus
// metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

const namespace = "lis_search"

var _ driven.SearchMetrics = (*Collector)(nil)

// Collector implements driven.SearchMetrics on its own registry.
type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	buildInfo       *prometheus.GaugeVec
}

// NewCollector creates a collector and registers its metrics.
func NewCollector(version string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total search and download requests by outcome",
			},
			[]string{"controller", "op", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of search and download requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"controller", "op"},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build information",
			},
			[]string{"version"},
		),
	}

	c.registry.MustRegister(c.requestsTotal, c.requestDuration, c.buildInfo)
	c.buildInfo.WithLabelValues(version).Set(1)
	return c
}

// ObserveRequest records one finished request. Aborted requests are
// counted but their duration is not observed.
func (c *Collector) ObserveRequest(controller, op string, outcome domain.Outcome, elapsed time.Duration) {
	c.requestsTotal.WithLabelValues(controller, op, string(outcome)).Inc()
	if outcome != domain.OutcomeAborted {
		c.requestDuration.WithLabelValues(controller, op).Observe(elapsed.Seconds())
	}
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
