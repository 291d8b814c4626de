package triage

// Phase identifies where a conversation is in the self-service flow.
type Phase string

const (
	PhaseFresh               Phase = "fresh"
	PhaseTroubleshooting     Phase = "troubleshooting"
	PhaseAwaitingFeedback    Phase = "awaiting_resolution_feedback"
	PhaseResolved            Phase = "resolved"
	PhaseEscalationRequested Phase = "escalation_requested"
)

// ConversationState is the per-session state round-tripped by the
// caller on every turn. The engine holds no session storage of its
// own; callers echo the state back unchanged between turns and discard
// it once the phase is resolved or a complaint has been created.
type ConversationState struct {
	Phase              Phase    `json:"phase"`
	ProblemDescription string   `json:"problem_description,omitempty"`
	RemainingSteps     []string `json:"remaining_steps,omitempty"`
	StepsShownCount    int      `json:"steps_shown_count"`
}

// normalize repairs client-supplied state so that corruption never
// kills a conversation. An unknown phase degrades to fresh.
func (s ConversationState) normalize() ConversationState {
	switch s.Phase {
	case PhaseFresh, PhaseTroubleshooting, PhaseAwaitingFeedback,
		PhaseResolved, PhaseEscalationRequested:
	default:
		s.Phase = PhaseFresh
	}
	if s.StepsShownCount < 0 {
		s.StepsShownCount = 0
	}
	return s
}

// TurnResult is the outcome of advancing a conversation by one message.
type TurnResult struct {
	Reply           string            `json:"reply"`
	State           ConversationState `json:"state"`
	CreateComplaint bool              `json:"createComplaint"`
}
