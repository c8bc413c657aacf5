package metrics

import (
	"testing"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheObserver(t *testing.T) {
	m := New(prometheus.NewRegistry())
	c := cache.New(cache.WithObserver(m))
	sig := cache.Signature{Entity: "comments", ParentID: "p1"}

	c.Prepend(sig, cache.Record{ID: "c1"})
	c.Patch(sig, "missing", map[string]any{"x": 1})
	c.Patch(sig, "c1", map[string]any{"x": 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheOperationsTotal.WithLabelValues("prepend", "comments", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheOperationsTotal.WithLabelValues("patch", "comments", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheOperationsTotal.WithLabelValues("patch", "comments", "true")))
}

func TestMutationAndReconcile(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Mutation("like", OutcomeCommitted)
	m.Mutation("like", OutcomeCommitted)
	m.Mutation("follow", OutcomeRolledBack)
	m.Reconciled("like", "message")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("like", OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("follow", OutcomeRolledBack)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconciliationTotal.WithLabelValues("like", "message")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Mutation("like", OutcomeCommitted)
		m.CacheOperation("patch", cache.Signature{}, true)
		m.ObserveRemote("feed", 200, time.Millisecond)
		m.LiveMessage("notification")
		m.Reconciled("like", "flip")
	})
}

func TestSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LiveMessage("notification")
	m.ObserveRemote("feed", 200, 20*time.Millisecond)
	m.ObserveRemote("feed", 0, time.Second)

	samples, err := Summary(reg)
	require.NoError(t, err)

	got := map[string]float64{}
	for _, s := range samples {
		got[s.Name+"{"+s.Labels+"}"] = s.Value
	}
	assert.Equal(t, 1.0, got["socialhub_live_messages_total{type=notification}"])
	assert.Equal(t, 1.0, got["socialhub_remote_call_duration_seconds{endpoint=feed,status=200}"])
	assert.Equal(t, 1.0, got["socialhub_remote_call_duration_seconds{endpoint=feed,status=error}"])
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
