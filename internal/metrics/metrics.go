// Package metrics exposes Prometheus collectors for the Borrow Checker server.
//
// A nil *Metrics is valid and records nothing, so components can take one optionally.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "borrowchecker"

// Metrics holds the collectors shared by the service, middleware and session.
type Metrics struct {
	Requests  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Refreshes *prometheus.CounterVec
	Ledgers   prometheus.Gauge
	Mutations *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls handled, by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency, by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Session refreshes, by whether the store had changed.",
		}, []string{"changed"}),
		Ledgers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledgers_loaded",
			Help:      "Ledgers in the current session.",
		}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Write operations, by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(procedure, code).Inc()
	m.Duration.WithLabelValues(procedure).Observe(d.Seconds())
}

// ObserveRefresh records one refresh.
func (m *Metrics) ObserveRefresh(changed bool) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(strconv.FormatBool(changed)).Inc()
}

// SetLedgers records how many ledgers the session holds.
func (m *Metrics) SetLedgers(n int) {
	if m == nil {
		return
	}
	m.Ledgers.Set(float64(n))
}

// ObserveMutation records one write; outcome is "ok" or an error kind.
func (m *Metrics) ObserveMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, outcome).Inc()
}
