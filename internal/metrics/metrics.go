package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock"

// Metrics holds the collectors used by the stock coordinator.
type Metrics struct {
	operations      *prometheus.CounterVec
	lockWait        *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	publishFailures prometheus.Counter
}

// New registers the collectors on reg. A nil reg yields unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Stock operations by operation and result.",
		}, []string{"operation", "result"}),
		lockWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for the per-product lock.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 100},
		}, []string{"acquired"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Remaining-stock cache lookups by outcome.",
		}, []string{"outcome"}),
		publishFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Stock change events that could not be published.",
		}),
	}
}

func (m *Metrics) ObserveOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration, acquired bool) {
	label := "false"
	if acquired {
		label = "true"
	}
	m.lockWait.WithLabelValues(label).Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) PublishFailed() {
	m.publishFailures.Inc()
}
