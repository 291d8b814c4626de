package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkflowMetrics exposes counters for the complaint resolution workflow.
type WorkflowMetrics struct {
	triageTurns   *prometheus.CounterVec
	adapterCalls  *prometheus.CounterVec
	draftsCreated *prometheus.CounterVec
	approvals     *prometheus.CounterVec
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		triageTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "triage",
			Name:      "turns_total",
			Help:      "Conversation turns by resulting phase and outcome",
		}, []string{"phase", "outcome"}),
		adapterCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "ai",
			Name:      "adapter_calls_total",
			Help:      "Calls into the AI backend by operation and status",
		}, []string{"operation", "status"}),
		draftsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "approval",
			Name:      "drafts_total",
			Help:      "Reply drafts by source and review flag",
		}, []string{"source", "needs_review"}),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "approval",
			Name:      "decisions_total",
			Help:      "Approval attempts by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.triageTurns, m.adapterCalls, m.draftsCreated, m.approvals)
	return m
}

func (m *WorkflowMetrics) ObserveTurn(phase, outcome string) {
	if m == nil {
		return
	}
	m.triageTurns.WithLabelValues(phase, outcome).Inc()
}

func (m *WorkflowMetrics) ObserveAdapterCall(operation, status string) {
	if m == nil {
		return
	}
	m.adapterCalls.WithLabelValues(operation, status).Inc()
}

func (m *WorkflowMetrics) ObserveDraft(source string, needsReview bool) {
	if m == nil {
		return
	}
	label := "false"
	if needsReview {
		label = "true"
	}
	m.draftsCreated.WithLabelValues(source, label).Inc()
}

func (m *WorkflowMetrics) ObserveApproval(result string) {
	if m == nil {
		return
	}
	m.approvals.WithLabelValues(result).Inc()
}
