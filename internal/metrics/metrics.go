// Package metrics exposes the server's Prometheus collectors: packet and
// dispatch throughput, format-registry ambiguity, active connections and
// sessions, and command outcomes by result variant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the server registers. Callers not wiring
// up a Prometheus registry can still use a zero-value-safe Noop().
type Metrics struct {
	PacketsReceived   prometheus.Counter
	PacketsDispatched prometheus.Counter
	DecodeFailures    prometheus.Counter
	AmbiguousDecodes  prometheus.Counter
	DispatchMisses    prometheus.Counter

	ActiveConnections prometheus.Gauge
	ActiveSessions     prometheus.Gauge

	CommandResults *prometheus.CounterVec
}

// New creates collectors and registers them against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameserver", Name: "packets_received_total",
			Help: "Total packets read off connections.",
		}),
		PacketsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameserver", Name: "packets_dispatched_total",
			Help: "Total packets successfully routed to a handler.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameserver", Name: "decode_failures_total",
			Help: "Total TryDecode failures, one per failing candidate format.",
		}),
		AmbiguousDecodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameserver", Name: "ambiguous_decodes_total",
			Help: "Total packets matched by more than one registered format.",
		}),
		DispatchMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameserver", Name: "dispatch_misses_total",
			Help: "Total messages that fell through to the default handler.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameserver", Name: "active_connections",
			Help: "Current number of open connections.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameserver", Name: "active_sessions",
			Help: "Current number of unexpired sessions.",
		}),
		CommandResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gameserver", Name: "command_results_total",
			Help: "Total command dispatch outcomes by result variant.",
		}, []string{"variant"}),
	}

	if reg != nil {
		reg.MustRegister(m.PacketsReceived, m.PacketsDispatched, m.DecodeFailures,
			m.AmbiguousDecodes, m.DispatchMisses, m.ActiveConnections, m.ActiveSessions,
			m.CommandResults)
	}
	return m
}

// Noop returns a Metrics whose collectors are created but never registered,
// safe to call and increment from components under test.
func Noop() *Metrics { return New(nil) }
