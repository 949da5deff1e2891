// Package metrics collects and exposes Prometheus metrics for store traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives store operation events. The store layer calls it; the
// transport layer decides whether anything listens.
type Recorder interface {
	RecordRead(dataset string)
	RecordWrite(dataset string)
}

// Nop discards all events.
type Nop struct{}

func (Nop) RecordRead(string)  {}
func (Nop) RecordWrite(string) {}

// Collector implements Recorder on Prometheus counters.
type Collector struct {
	reads  *prometheus.CounterVec
	writes *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cognimock_store_reads_total",
			Help: "Dataset reads, labeled by dataset name.",
		}, []string{"dataset"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cognimock_store_writes_total",
			Help: "Dataset writes and deletes, labeled by dataset name.",
		}, []string{"dataset"}),
	}
	reg.MustRegister(c.reads, c.writes)
	return c
}

// RecordRead counts one read of the named dataset.
func (c *Collector) RecordRead(dataset string) {
	c.reads.WithLabelValues(dataset).Inc()
}

// RecordWrite counts one write or delete of the named dataset.
func (c *Collector) RecordWrite(dataset string) {
	c.writes.WithLabelValues(dataset).Inc()
}

// Handler returns an HTTP handler serving the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
