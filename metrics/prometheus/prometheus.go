// Package prometheus exports hashsearch metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, _ := hsprom.NewCollector(reg, "hashsearch")
//	s, _ := hashsearch.New[uint64](hashsearch.BackendGPU, hashsearch.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mgaillard/hashsearch"
)

var _ hashsearch.MetricsCollector = (*Collector)(nil)

// Collector implements hashsearch.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	operations *prometheus.CounterVec
	matches    *prometheus.HistogramVec
	queries    prometheus.Counter
	population prometheus.Gauge
}

// NewCollector creates the metrics under namespace and registers them
// with reg.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total store operations",
		}, []string{"op", "status"}),
		matches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matches",
			Help:      "Matches returned per operation",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"op"}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_queries_total",
			Help:      "Total queries answered in batches",
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_size",
			Help:      "Number of codes in the loaded population",
		}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.operations, c.matches, c.queries, c.population} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.operations.WithLabelValues(op, s).Inc()
}

// RecordLoad implements hashsearch.MetricsCollector.
func (c *Collector) RecordLoad(count int, d time.Duration, err error) {
	c.observe("load", d, err)
	if err == nil {
		c.population.Set(float64(count))
	}
}

// RecordSearch implements hashsearch.MetricsCollector.
func (c *Collector) RecordSearch(_ int, matches int, d time.Duration, err error) {
	c.observe("search", d, err)
	if err == nil {
		c.matches.WithLabelValues("search").Observe(float64(matches))
	}
}

// RecordBatchSearch implements hashsearch.MetricsCollector.
func (c *Collector) RecordBatchSearch(queries, matches int, d time.Duration, err error) {
	c.observe("batch_search", d, err)
	if err == nil {
		c.queries.Add(float64(queries))
		c.matches.WithLabelValues("batch_search").Observe(float64(matches))
	}
}
