// Package promcollector exports filter metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	f, err := sparsebloom.New(m, k,
//	    sparsebloom.WithMetricsCollector(promcollector.New(reg, "myapp")),
//	)
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/sparsebloom"
)

const subsystem = "bloom"

// Collector implements sparsebloom.MetricsCollector with Prometheus
// counters and a promotion latency histogram.
type Collector struct {
	inserts           prometheus.Counter
	bitsSet           prometheus.Counter
	queries           *prometheus.CounterVec
	promotions        prometheus.Counter
	promotedBlocks    prometheus.Counter
	promotionDuration prometheus.Histogram
}

var _ sparsebloom.MetricsCollector = (*Collector)(nil)

// New registers the filter metrics with reg under namespace. It panics if the
// metrics are already registered, like promauto.
func New(reg prometheus.Registerer, namespace string) *Collector {
	f := promauto.With(reg)
	return &Collector{
		inserts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inserts_total",
			Help:      "Number of items inserted.",
		}),
		bitsSet: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bits_set_total",
			Help:      "Number of bits newly set by inserts.",
		}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queries_total",
			Help:      "Number of membership queries by result.",
		}, []string{"result"}),
		promotions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "promotions_total",
			Help:      "Number of dense to compressed promotions.",
		}),
		promotedBlocks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "promoted_blocks_total",
			Help:      "Number of populated blocks carried over by promotions.",
		}),
		promotionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "promotion_duration_seconds",
			Help:      "Time spent promoting dense filters.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

// RecordInsert records one inserted item that set newBits previously unset bits.
func (c *Collector) RecordInsert(newBits int) {
	c.inserts.Inc()
	c.bitsSet.Add(float64(newBits))
}

// RecordQuery records a membership query.
func (c *Collector) RecordQuery(hit bool) {
	if hit {
		c.queries.WithLabelValues("hit").Inc()
		return
	}
	c.queries.WithLabelValues("miss").Inc()
}

// RecordPromotion records a promotion carrying blocks populated blocks.
func (c *Collector) RecordPromotion(blocks int, d time.Duration) {
	c.promotions.Inc()
	c.promotedBlocks.Add(float64(blocks))
	c.promotionDuration.Observe(d.Seconds())
}
