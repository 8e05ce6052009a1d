// Package metrics exposes cache and query activity as Prometheus series.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "edu_dashboard"

// Collector implements cache.Metrics and query.Metrics.
type Collector struct {
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheWrites   prometheus.Counter
	staleDiscards prometheus.Counter
	evictions     prometheus.Counter

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	retries       prometheus.Counter
}

// NewRegistry returns a registry carrying the process and Go runtime
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// New creates a Collector and registers its series with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "hits_total",
			Help: "Store lookups that found an entry.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "misses_total",
			Help: "Store lookups that found nothing.",
		}),
		cacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "writes_total",
			Help: "Fetch results committed to the store.",
		}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "stale_discards_total",
			Help: "Fetch results dropped because a newer fetch for the key was issued.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "evictions_total",
			Help: "Entries removed by the janitor.",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "query", Name: "fetches_total",
			Help: "Fetch attempts by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "query", Name: "fetch_duration_seconds",
			Help:    "Duration of successful fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "query", Name: "retries_total",
			Help: "Retries scheduled after a failed fetch.",
		}),
	}
	reg.MustRegister(
		c.cacheHits, c.cacheMisses, c.cacheWrites, c.staleDiscards, c.evictions,
		c.fetches, c.fetchDuration, c.retries,
	)
	return c
}

func (c *Collector) Hit()          { c.cacheHits.Inc() }
func (c *Collector) Miss()         { c.cacheMisses.Inc() }
func (c *Collector) Write()        { c.cacheWrites.Inc() }
func (c *Collector) StaleDiscard() { c.staleDiscards.Inc() }
func (c *Collector) Evict(n int)   { c.evictions.Add(float64(n)) }

func (c *Collector) FetchStarted() { c.fetches.WithLabelValues("started").Inc() }

func (c *Collector) FetchSucceeded(elapsed time.Duration) {
	c.fetches.WithLabelValues("success").Inc()
	c.fetchDuration.Observe(elapsed.Seconds())
}

func (c *Collector) FetchFailed()    { c.fetches.WithLabelValues("error").Inc() }
func (c *Collector) RetryScheduled() { c.retries.Inc() }
