package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewForTestRegistersWithoutPanicking(t *testing.T) {
	require.NotPanics(t, func() {
		r := NewForTest()
		r.CmdusSent.WithLabelValues("topology_discovery").Inc()
		r.DedupHits.Inc()
		r.PendingReassembly.Set(1)
	})
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) }, "registering the same metrics twice on one registerer must panic")
}
