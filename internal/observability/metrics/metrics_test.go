package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.ObserveTurn("awaiting_resolution_feedback", "steps_shown")
	m.ObserveTurn("awaiting_resolution_feedback", "steps_shown")
	m.ObserveAdapterCall("generate", "error")
	m.ObserveDraft("kb_fallback", true)
	m.ObserveApproval("approved")

	assert.Equal(t, float64(2), testutil.ToFloat64(
		m.triageTurns.WithLabelValues("awaiting_resolution_feedback", "steps_shown")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.adapterCalls.WithLabelValues("generate", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.draftsCreated.WithLabelValues("kb_fallback", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.approvals.WithLabelValues("approved")))
}

func TestWorkflowMetricsNilReceiver(t *testing.T) {
	var m *WorkflowMetrics

	// Observations on a nil receiver must be no-ops.
	m.ObserveTurn("fresh", "greeting")
	m.ObserveAdapterCall("classify", "ok")
	m.ObserveDraft("model", false)
	m.ObserveApproval("review_required")
}
