package triage

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/northlink/support-ai-platform/internal/ai"
	"github.com/northlink/support-ai-platform/internal/observability/metrics"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

var triageTracer = otel.Tracer("support/triage")

const (
	greetingReply = "Hi! I'm the support assistant. What can I help you with today?"

	describePrompt = "I can help with that. Could you describe the problem you're having in a bit more detail?"

	// Asked after remedies are shown, and re-asked verbatim when the
	// answer is ambiguous.
	resolutionQuestion = "Did these steps resolve your issue? Please reply yes or no."

	closureReply = "Great, glad that's sorted! If anything else comes up, just send a message."

	escalationReply = "I'm sorry the suggestions didn't help. I've raised a complaint ticket with our support team, and an agent will get back to you shortly."

	genericFallbackReply = "I'm here to help, tell me more about what's going on."
)

// Responder generates a free-text reply for input the decision table
// does not cover. Satisfied by *ai.Adapter.
type Responder interface {
	Generate(ctx context.Context, prompt string, snippets []string) (ai.Generation, error)
}

// Engine is the deterministic conversation state machine. It is
// stateless between calls: the caller passes the prior state in and
// echoes the returned state back on the next turn, so two concurrent
// turns for one session must be serialized by the caller.
type Engine struct {
	responder Responder
	logger    *logging.Logger
	metrics   *metrics.WorkflowMetrics
}

// NewEngine creates a triage engine. The responder is the AI fallback
// for input the keyword tables do not cover; it may be nil, in which
// case unmodeled input gets the generic fallback reply.
func NewEngine(responder Responder, m *metrics.WorkflowMetrics, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		responder: responder,
		logger:    logger,
		metrics:   m,
	}
}

// Advance processes one user message against the prior conversation
// state and returns the reply, the next state, and whether a complaint
// should be created. It never returns an error: adapter failures
// degrade to a generic reply with the state unchanged.
func (e *Engine) Advance(ctx context.Context, state *ConversationState, userMessage string) TurnResult {
	ctx, span := triageTracer.Start(ctx, "triage.advance")
	defer span.End()

	var s ConversationState
	if state != nil {
		s = *state
	}
	s = s.normalize()
	phaseIn := s.Phase
	msg := strings.TrimSpace(userMessage)

	// Terminal phases mean the caller should have discarded the state.
	// A new message there starts an unrelated topic from scratch.
	if s.Phase == PhaseResolved || s.Phase == PhaseEscalationRequested {
		s = ConversationState{Phase: PhaseFresh}
	}

	var result TurnResult
	var outcome string
	switch s.Phase {
	case PhaseAwaitingFeedback, PhaseTroubleshooting:
		result, outcome = e.advanceAwaitingFeedback(ctx, s, msg)
	default:
		result, outcome = e.advanceFresh(ctx, s, msg)
	}

	span.SetAttributes(
		attribute.String("triage.phase_in", string(phaseIn)),
		attribute.String("triage.phase_out", string(result.State.Phase)),
		attribute.String("triage.outcome", outcome),
		attribute.Bool("triage.create_complaint", result.CreateComplaint),
	)
	e.metrics.ObserveTurn(string(result.State.Phase), outcome)
	e.logger.Info("conversation turn",
		"phase_in", phaseIn,
		"phase_out", result.State.Phase,
		"outcome", outcome,
		"create_complaint", result.CreateComplaint,
	)

	return result
}

// advanceFresh applies the pre-troubleshooting rules in fixed priority
// order: technical keywords, greeting, describe prompt, explicit
// complaint intent, AI fallback.
func (e *Engine) advanceFresh(ctx context.Context, s ConversationState, msg string) (TurnResult, string) {
	if category, ok := matchTechnicalCategory(msg); ok {
		if s.ProblemDescription == "" {
			s.ProblemDescription = msg
		}
		batch, remaining := takeSteps(remediesFor(category))
		s.Phase = PhaseAwaitingFeedback
		s.RemainingSteps = remaining
		s.StepsShownCount = len(batch)
		return TurnResult{
			Reply: stepsReply(category, batch),
			State: s,
		}, "steps_shown"
	}

	if isGreetingOnly(msg) {
		s.Phase = PhaseFresh
		return TurnResult{Reply: greetingReply, State: s}, "greeting"
	}

	if s.ProblemDescription == "" {
		// First substantive message becomes the problem description;
		// it stays immutable for the rest of the session.
		s.ProblemDescription = msg
		return TurnResult{Reply: describePrompt, State: s}, "describe_prompt"
	}

	if complaintIntentLexicon.matches(msg) {
		s.Phase = PhaseEscalationRequested
		return TurnResult{
			Reply:           escalationReply,
			State:           s,
			CreateComplaint: true,
		}, "escalated"
	}

	return e.aiFallback(ctx, s, msg)
}

// advanceAwaitingFeedback applies the three-way positive / negative /
// ambiguous classification of the resolution answer. Explicit
// complaint intent bypasses the question.
func (e *Engine) advanceAwaitingFeedback(ctx context.Context, s ConversationState, msg string) (TurnResult, string) {
	affirmative := affirmativeLexicon.matches(msg)
	negative := negationLexicon.matches(msg)

	switch {
	case affirmative && !negative:
		s.Phase = PhaseResolved
		return TurnResult{Reply: closureReply, State: s}, "resolved"

	case negative:
		s.Phase = PhaseEscalationRequested
		return TurnResult{
			Reply:           escalationReply,
			State:           s,
			CreateComplaint: true,
		}, "escalated"

	case complaintIntentLexicon.matches(msg) && s.ProblemDescription != "":
		s.Phase = PhaseEscalationRequested
		return TurnResult{
			Reply:           escalationReply,
			State:           s,
			CreateComplaint: true,
		}, "escalated"

	default:
		// Ambiguous answer: re-ask the question verbatim without
		// re-showing the steps.
		s.Phase = PhaseAwaitingFeedback
		return TurnResult{Reply: resolutionQuestion, State: s}, "reask"
	}
}

// aiFallback delegates unmodeled free text to the generation backend.
// Failure never reaches the user: the reply degrades to a generic
// prompt and the state is left unchanged.
func (e *Engine) aiFallback(ctx context.Context, s ConversationState, msg string) (TurnResult, string) {
	if e.responder == nil {
		return TurnResult{Reply: genericFallbackReply, State: s}, "ai_fallback_disabled"
	}

	snippets := []string{
		"Conversation phase: " + string(s.Phase),
	}
	if s.ProblemDescription != "" {
		snippets = append(snippets, "Reported problem: "+s.ProblemDescription)
	}

	gen, err := e.responder.Generate(ctx, msg, snippets)
	if err != nil {
		e.metrics.ObserveAdapterCall("generate", "error")
		e.logger.Warn("ai fallback failed, using generic reply", "error", err)
		return TurnResult{Reply: genericFallbackReply, State: s}, "ai_fallback_error"
	}
	e.metrics.ObserveAdapterCall("generate", "ok")
	return TurnResult{Reply: gen.Text, State: s}, "ai_fallback"
}

var stepIntros = map[RemedyCategory]string{
	CategoryConnectivity: "Sorry to hear your connection is acting up. Let's try a few things:",
	CategoryBroadcast:    "Sorry about the TV trouble. Let's try a few things:",
	CategoryDeviceBoot:   "Sorry your device won't start properly. Let's try a few things:",
	CategoryGeneric:      "Sorry to hear that. Let's try a few things:",
}

// stepsReply formats a remedy batch with the resolution question.
func stepsReply(category RemedyCategory, steps []string) string {
	intro, ok := stepIntros[category]
	if !ok {
		intro = stepIntros[CategoryGeneric]
	}
	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n")
	for i, step := range steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	sb.WriteString("\n")
	sb.WriteString(resolutionQuestion)
	return sb.String()
}
