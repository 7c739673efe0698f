// Package metrics exposes the pool's Prometheus instrumentation. Unlike a
// multi-tenant proxy, pgwire serves a single Config per Pool, so metrics
// carry no tenant label — one Collector belongs to exactly one Pool.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics for one connection pool.
type Collector struct {
	Registry *prometheus.Registry

	connectionsActive *prometheus.GaugeVec
	connectionsIdle   *prometheus.GaugeVec
	connectionsTotal  *prometheus.GaugeVec
	waitingAcquires   prometheus.Gauge
	acquireDuration   prometheus.Histogram
	poolExhausted     prometheus.Counter
	reconnectsTotal   prometheus.Counter
	resetsTotal       *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
}

// New creates and registers a pool's metrics on a fresh, independent
// registry so multiple pools in the same process don't collide.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		Registry: reg,
		connectionsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pgwire_pool_connections_active",
				Help: "Number of connections currently checked out",
			},
			[]string{"pool"},
		),
		connectionsIdle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pgwire_pool_connections_idle",
				Help: "Number of idle connections available for checkout",
			},
			[]string{"pool"},
		),
		connectionsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pgwire_pool_connections_total",
				Help: "Total number of connection slots in the pool",
			},
			[]string{"pool"},
		),
		waitingAcquires: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pgwire_pool_waiting_acquires",
				Help: "Number of goroutines currently blocked in Acquire",
			},
		),
		acquireDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pgwire_pool_acquire_duration_seconds",
				Help:    "Time spent waiting in Acquire",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
		),
		poolExhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pgwire_pool_exhausted_total",
				Help: "Number of Acquire calls that timed out waiting for a slot",
			},
		),
		reconnectsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pgwire_pool_reconnects_total",
				Help: "Number of lazy reconnects performed for Broken slots",
			},
		),
		resetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgwire_pool_resets_total",
				Help: "RESET ALL results on release, by status",
			},
			[]string{"status"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pgwire_query_duration_seconds",
				Help:    "Duration of Simple and Extended query driver runs",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		c.connectionsActive,
		c.connectionsIdle,
		c.connectionsTotal,
		c.waitingAcquires,
		c.acquireDuration,
		c.poolExhausted,
		c.reconnectsTotal,
		c.resetsTotal,
		c.queryDuration,
	)

	return c
}

// SetPoolStats updates the pool's gauge metrics from a point-in-time snapshot.
func (c *Collector) SetPoolStats(poolName string, active, idle, total int) {
	c.connectionsActive.WithLabelValues(poolName).Set(float64(active))
	c.connectionsIdle.WithLabelValues(poolName).Set(float64(idle))
	c.connectionsTotal.WithLabelValues(poolName).Set(float64(total))
}

// AcquireStarted increments the waiting-acquires gauge; the returned func
// decrements it and records the wait duration.
func (c *Collector) AcquireStarted() func() {
	c.waitingAcquires.Inc()
	start := time.Now()
	return func() {
		c.waitingAcquires.Dec()
		c.acquireDuration.Observe(time.Since(start).Seconds())
	}
}

// PoolExhausted increments the acquire-timeout counter.
func (c *Collector) PoolExhausted() {
	c.poolExhausted.Inc()
}

// Reconnected increments the lazy-reconnect counter.
func (c *Collector) Reconnected() {
	c.reconnectsTotal.Inc()
}

// ResetCompleted records a release-time RESET ALL outcome.
func (c *Collector) ResetCompleted(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.resetsTotal.WithLabelValues(status).Inc()
}

// QueryCompleted records a query driver run's duration by result kind.
func (c *Collector) QueryCompleted(kind string, d time.Duration) {
	c.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
}
