// Package metrics exposes the dispatcher's operational counters via
// prometheus/client_golang, the metrics library caddyserver-caddy wires
// into its admin API (SPEC_FULL.md section 12). None of this is
// protocol-visible; it exists purely so an operator can see CMDU
// throughput, drop reasons, and reassembly/dedup behavior (spec.md
// section 4.4).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry groups every counter/gauge this module emits. A process
// normally has exactly one, registered once at startup; tests construct
// their own with a private prometheus.Registry so parallel tests don't
// collide on the global default registry.
type Registry struct {
	CmdusSent        *prometheus.CounterVec
	CmdusReceived    *prometheus.CounterVec
	CmdusDropped     *prometheus.CounterVec
	ReassemblyTimeouts prometheus.Counter
	DedupHits        prometheus.Counter
	PendingReassembly prometheus.Gauge
	SendRetries      prometheus.Counter
}

// New creates and registers every metric on reg.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		CmdusSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "al1905",
			Name:      "cmdus_sent_total",
			Help:      "CMDUs sent, labeled by message type.",
		}, []string{"message_type"}),
		CmdusReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "al1905",
			Name:      "cmdus_received_total",
			Help:      "CMDUs received and dispatched, labeled by message type.",
		}, []string{"message_type"}),
		CmdusDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "al1905",
			Name:      "cmdus_dropped_total",
			Help:      "CMDUs dropped before dispatch, labeled by reason.",
		}, []string{"reason"}),
		ReassemblyTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "al1905",
			Name:      "reassembly_timeouts_total",
			Help:      "Fragment reassembly buffers discarded after the 10s timeout (spec.md section 4.3).",
		}),
		DedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "al1905",
			Name:      "dedup_hits_total",
			Help:      "Frames dropped as duplicate (src_al_mac, mid, fragment_id) triples (spec.md section 4.4).",
		}),
		PendingReassembly: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "al1905",
			Name:      "reassembly_pending",
			Help:      "CMDUs currently buffered awaiting their last fragment.",
		}),
		SendRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "al1905",
			Name:      "send_retries_total",
			Help:      "Outgoing fragment retries after EAGAIN (spec.md section 4.4 backpressure).",
		}),
	}
	reg.MustRegister(
		m.CmdusSent, m.CmdusReceived, m.CmdusDropped,
		m.ReassemblyTimeouts, m.DedupHits, m.PendingReassembly, m.SendRetries,
	)
	return m
}

// NewForTest returns a Registry backed by a fresh, private
// prometheus.Registry so concurrent tests never collide.
func NewForTest() *Registry {
	return New(prometheus.NewRegistry())
}
