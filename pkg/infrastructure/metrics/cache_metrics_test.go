package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomcost/pkg/application/services/cache"
)

func TestCacheMetrics_CountsCacheEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics(reg, "test")

	c := cache.NewVersionedCache[string, int](cache.WithObserver(m))
	compute := func() (int, error) { return 1, nil }

	_, err := c.GetOrCompute("P1", c.Generation(), compute)
	require.NoError(t, err)
	_, err = c.GetOrCompute("P1", c.Generation(), compute)
	require.NoError(t, err)
	c.InvalidateAll()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("miss")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.events.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations))

	count, err := testutil.GatherAndCount(reg, "test_product_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
