package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"edu-dashboard-api/internal/cache"
	"edu-dashboard-api/internal/query"
)

var (
	_ cache.Metrics = (*Collector)(nil)
	_ query.Metrics = (*Collector)(nil)
)

func TestCollector_CountsStoreActivity(t *testing.T) {
	c := New(prometheus.NewRegistry())
	s := cache.NewStore[int](cache.WithMetrics(c))
	now := time.Unix(0, 0)

	s.Get("missing")
	g1 := s.Begin("k")
	g2 := s.Begin("k")
	s.Commit("k", g2, 2, now, time.Second, cache.CommitLatestIssued)
	s.Commit("k", g1, 1, now, time.Second, cache.CommitLatestIssued)
	s.Get("k")
	s.Sweep(now.Add(time.Minute))

	require.Equal(t, 1.0, promtest.ToFloat64(c.cacheMisses))
	require.Equal(t, 1.0, promtest.ToFloat64(c.cacheHits))
	require.Equal(t, 1.0, promtest.ToFloat64(c.cacheWrites))
	require.Equal(t, 1.0, promtest.ToFloat64(c.staleDiscards))
	require.Equal(t, 1.0, promtest.ToFloat64(c.evictions))
}

func TestCollector_CountsFetchOutcomes(t *testing.T) {
	c := New(prometheus.NewRegistry())
	c.FetchStarted()
	c.FetchStarted()
	c.FetchSucceeded(20 * time.Millisecond)
	c.FetchFailed()
	c.RetryScheduled()

	require.Equal(t, 2.0, promtest.ToFloat64(c.fetches.WithLabelValues("started")))
	require.Equal(t, 1.0, promtest.ToFloat64(c.fetches.WithLabelValues("success")))
	require.Equal(t, 1.0, promtest.ToFloat64(c.fetches.WithLabelValues("error")))
	require.Equal(t, 1.0, promtest.ToFloat64(c.retries))
}

func TestNewRegistry_GathersRuntimeSeries(t *testing.T) {
	reg := NewRegistry()
	New(reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
