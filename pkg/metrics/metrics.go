// Package metrics counts cache operations, optimistic mutation outcomes,
// remote call latency and live messages for one session.
package metrics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation outcomes
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeBenign     = "benign"
)

// Metrics holds the session's Prometheus collectors
type Metrics struct {
	// Cache
	CacheOperationsTotal *prometheus.CounterVec

	// Optimistic mutations
	MutationsTotal      *prometheus.CounterVec
	ReconciliationTotal *prometheus.CounterVec

	// Remote API
	RemoteCallDuration *prometheus.HistogramVec

	// Live updates
	LiveMessagesTotal *prometheus.CounterVec
}

// New registers every collector with reg. Each session passes its own
// registry so sessions never share counters.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "socialhub_cache_operations_total",
				Help: "Total number of cache operations",
			},
			[]string{"operation", "entity", "changed"},
		),
		MutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "socialhub_mutations_total",
				Help: "Optimistic mutations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		ReconciliationTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "socialhub_toggle_reconciliations_total",
				Help: "Toggle responses by rule and the signal that decided them",
			},
			[]string{"rule", "source"},
		),
		RemoteCallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "socialhub_remote_call_duration_seconds",
				Help:    "Remote API call latency in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint", "status"},
		),
		LiveMessagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "socialhub_live_messages_total",
				Help: "Live update messages received by type",
			},
			[]string{"type"},
		),
	}
}

// CacheOperation implements cache.Observer
func (m *Metrics) CacheOperation(op string, sig cache.Signature, changed bool) {
	if m == nil {
		return
	}
	m.CacheOperationsTotal.WithLabelValues(op, sig.Entity, strconv.FormatBool(changed)).Inc()
}

// Mutation records how an optimistic mutation ended
func (m *Metrics) Mutation(kind, outcome string) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(kind, outcome).Inc()
}

// Reconciled records which signal decided a toggle
func (m *Metrics) Reconciled(rule, source string) {
	if m == nil {
		return
	}
	m.ReconciliationTotal.WithLabelValues(rule, source).Inc()
}

// ObserveRemote records the latency of one API call
func (m *Metrics) ObserveRemote(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RemoteCallDuration.WithLabelValues(endpoint, label).Observe(d.Seconds())
}

// LiveMessage counts one received live update
func (m *Metrics) LiveMessage(msgType string) {
	if m == nil {
		return
	}
	m.LiveMessagesTotal.WithLabelValues(msgType).Inc()
}

// Sample is one flattened counter value
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Summary flattens every counter and histogram count in g, sorted by name
func Summary(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				pairs = append(pairs, l.GetName()+"="+l.GetValue())
			}
			s := Sample{Name: fam.GetName(), Labels: strings.Join(pairs, ",")}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				s.Value = float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				s.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}
