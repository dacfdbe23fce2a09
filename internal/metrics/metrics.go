// Package metrics exposes the server's Prometheus collectors: tick timing,
// session/table occupancy, message-bus backlog and rule-engine event
// counts (§5, §7 — "bounded cardinality" mirrors the teacher's debug
// server conventions).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors carry no per-player labels, same bounded-cardinality
// discipline the teacher's debug server documents — a 64-session server
// should never turn into 64 time series.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hockey_tick_duration_seconds",
		Help:    "Time spent processing one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
	})

	tickOverruns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hockey_tick_overrun_total",
		Help: "Ticks whose processing exceeded the 10ms budget",
	})

	sessionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hockey_session_count",
		Help: "Currently occupied session table slots",
	})

	messageBusBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hockey_message_bus_len",
		Help: "Length of the persistent message bus log",
	})

	udpIngressBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hockey_udp_ingress_bytes_total",
		Help: "Total bytes received on the UDP socket",
	})

	udpEgressBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hockey_udp_egress_bytes_total",
		Help: "Total bytes sent on the UDP socket",
	})

	// ruleEvents is bounded: the label is one of the fixed
	// objmodel.SimulationEventKind names, never a player identifier.
	ruleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_rule_events_total",
		Help: "Simulation events handled by the rule engine, by kind",
	}, []string{"kind"})

	goalsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hockey_goals_total",
		Help: "Goals credited across all matches served by this process",
	})

	adminCommandsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hockey_admin_commands_rejected_total",
		Help: "Admin commands rejected for lack of privilege",
	})
)

// RecordTick records one tick's processing time and flags overruns.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
	if d > 10*time.Millisecond {
		tickOverruns.Inc()
	}
}

// SetSessionCount updates the session-table occupancy gauge.
func SetSessionCount(n int) {
	sessionCount.Set(float64(n))
}

// SetMessageBusLen updates the message-bus backlog gauge.
func SetMessageBusLen(n uint32) {
	messageBusBacklog.Set(float64(n))
}

// AddIngressBytes records bytes read off the UDP socket.
func AddIngressBytes(n int) {
	udpIngressBytes.Add(float64(n))
}

// AddEgressBytes records bytes written to the UDP socket.
func AddEgressBytes(n int) {
	udpEgressBytes.Add(float64(n))
}

// RecordRuleEvent increments the counter for one simulation event kind.
func RecordRuleEvent(kind string) {
	ruleEvents.WithLabelValues(kind).Inc()
}

// RecordGoal increments the lifetime goal counter.
func RecordGoal() {
	goalsScored.Inc()
}

// RecordAdminCommandRejected increments the unprivileged-admin-attempt
// counter (§7).
func RecordAdminCommandRejected() {
	adminCommandsRejected.Inc()
}
