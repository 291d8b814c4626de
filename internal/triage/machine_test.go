package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlink/support-ai-platform/internal/ai"
)

type stubResponder struct {
	gen    ai.Generation
	err    error
	called bool
	prompt string
}

func (s *stubResponder) Generate(ctx context.Context, prompt string, snippets []string) (ai.Generation, error) {
	s.called = true
	s.prompt = prompt
	return s.gen, s.err
}

func advanceFrom(t *testing.T, e *Engine, state *ConversationState, msg string) TurnResult {
	t.Helper()
	return e.Advance(context.Background(), state, msg)
}

func TestAdvanceTechnicalKeywordShowsThreeRemedies(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	tests := []struct {
		name     string
		message  string
		category RemedyCategory
	}{
		{"connectivity", "My internet is not working", CategoryConnectivity},
		{"broadcast", "the tv picture went black", CategoryBroadcast},
		{"device boot", "my set-top box won't turn on", CategoryDeviceBoot},
		{"generic", "everything is broken since yesterday", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := advanceFrom(t, e, nil, tt.message)

			assert.Equal(t, PhaseAwaitingFeedback, result.State.Phase)
			assert.False(t, result.CreateComplaint)
			assert.Equal(t, 3, result.State.StepsShownCount)
			assert.Equal(t, tt.message, result.State.ProblemDescription)

			// Exactly the first 3 remedies of the matched category.
			for _, step := range remediesFor(tt.category)[:3] {
				assert.Contains(t, result.Reply, step)
			}
			assert.Contains(t, result.Reply, resolutionQuestion)
			assert.Equal(t, remediesFor(tt.category)[3:], result.State.RemainingSteps)
		})
	}
}

func TestAdvanceGreetingStaysFresh(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	result := advanceFrom(t, e, nil, "hi there")

	assert.Equal(t, PhaseFresh, result.State.Phase)
	assert.Equal(t, greetingReply, result.Reply)
	assert.False(t, result.CreateComplaint)
	assert.Empty(t, result.State.ProblemDescription)
}

func TestAdvanceGreetingEmbeddedInProblemReport(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	result := advanceFrom(t, e, nil, "hi, my internet connection keeps dropping every evening")

	assert.Equal(t, PhaseAwaitingFeedback, result.State.Phase)
	assert.Contains(t, result.Reply, remediesFor(CategoryConnectivity)[0])
}

func TestAdvanceRecordsProblemDescriptionAndAsks(t *testing.T) {
	e := NewEngine(nil, nil, nil)

	result := advanceFrom(t, e, nil, "I have a question about my invoice from last month")

	assert.Equal(t, PhaseFresh, result.State.Phase)
	assert.Equal(t, describePrompt, result.Reply)
	assert.Equal(t, "I have a question about my invoice from last month", result.State.ProblemDescription)
}

func TestAdvancePositiveFeedbackResolves(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{
		Phase:              PhaseAwaitingFeedback,
		ProblemDescription: "internet down",
		StepsShownCount:    3,
	}

	for _, msg := range []string{"yes", "yes that fixed it", "it worked, thanks"} {
		result := advanceFrom(t, e, state, msg)
		assert.Equal(t, PhaseResolved, result.State.Phase, "message %q", msg)
		assert.False(t, result.CreateComplaint, "message %q", msg)
		assert.Equal(t, closureReply, result.Reply, "message %q", msg)
	}
}

func TestAdvanceNegativeFeedbackEscalates(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{
		Phase:              PhaseAwaitingFeedback,
		ProblemDescription: "My internet is not working",
		StepsShownCount:    3,
	}

	for _, msg := range []string{"no still broken", "not really", "still the same problem"} {
		result := advanceFrom(t, e, state, msg)
		assert.Equal(t, PhaseEscalationRequested, result.State.Phase, "message %q", msg)
		assert.True(t, result.CreateComplaint, "message %q", msg)
		assert.Equal(t, "My internet is not working", result.State.ProblemDescription)
	}
}

func TestAdvanceMixedFeedbackCountsAsNegative(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{Phase: PhaseAwaitingFeedback, ProblemDescription: "tv broken"}

	result := advanceFrom(t, e, state, "yes I tried but it still doesn't work")

	assert.Equal(t, PhaseEscalationRequested, result.State.Phase)
	assert.True(t, result.CreateComplaint)
}

func TestAdvanceWorkingNowIsNotNegation(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{Phase: PhaseAwaitingFeedback, ProblemDescription: "wifi down"}

	result := advanceFrom(t, e, state, "it's working now")

	assert.Equal(t, PhaseResolved, result.State.Phase)
	assert.False(t, result.CreateComplaint)
}

func TestAdvanceAmbiguousFeedbackReasksVerbatim(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{
		Phase:              PhaseAwaitingFeedback,
		ProblemDescription: "internet down",
		RemainingSteps:     []string{"step four"},
		StepsShownCount:    3,
	}

	for _, msg := range []string{"maybe", "give me a minute", ""} {
		result := advanceFrom(t, e, state, msg)
		assert.Equal(t, PhaseAwaitingFeedback, result.State.Phase, "message %q", msg)
		assert.Equal(t, resolutionQuestion, result.Reply, "message %q", msg)
		assert.False(t, result.CreateComplaint, "message %q", msg)
		// Steps are not re-shown.
		assert.NotContains(t, result.Reply, "step four")
	}
}

func TestAdvanceComplaintIntentBypassesQuestion(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{
		Phase:              PhaseAwaitingFeedback,
		ProblemDescription: "channels missing",
	}

	result := advanceFrom(t, e, state, "just open a ticket please")

	assert.Equal(t, PhaseEscalationRequested, result.State.Phase)
	assert.True(t, result.CreateComplaint)
}

func TestAdvanceComplaintIntentInFreshWithDescription(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{
		Phase:              PhaseFresh,
		ProblemDescription: "billing dispute about roaming charges",
	}

	result := advanceFrom(t, e, state, "I'd like to file a complaint about this")

	assert.Equal(t, PhaseEscalationRequested, result.State.Phase)
	assert.True(t, result.CreateComplaint)
}

func TestAdvanceDelegatesNovelInputToResponder(t *testing.T) {
	responder := &stubResponder{gen: ai.Generation{Text: "Here is what I found about roaming."}}
	e := NewEngine(responder, nil, nil)
	state := &ConversationState{
		Phase:              PhaseFresh,
		ProblemDescription: "roaming question",
	}

	result := advanceFrom(t, e, state, "how does roaming billing work in the EU?")

	require.True(t, responder.called)
	assert.Equal(t, "how does roaming billing work in the EU?", responder.prompt)
	assert.Equal(t, "Here is what I found about roaming.", result.Reply)
	assert.Equal(t, *state, result.State)
	assert.False(t, result.CreateComplaint)
}

func TestAdvanceResponderFailureDegradesGracefully(t *testing.T) {
	responder := &stubResponder{err: errors.New("backend timeout")}
	e := NewEngine(responder, nil, nil)
	state := &ConversationState{
		Phase:              PhaseFresh,
		ProblemDescription: "roaming question",
	}

	result := advanceFrom(t, e, state, "can you check my data usage history?")

	assert.Equal(t, genericFallbackReply, result.Reply)
	assert.Equal(t, *state, result.State)
	assert.False(t, result.CreateComplaint)
}

func TestAdvanceUnknownPhaseTreatedAsFresh(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{Phase: Phase("corrupted")}

	result := advanceFrom(t, e, state, "hello")

	assert.Equal(t, PhaseFresh, result.State.Phase)
	assert.Equal(t, greetingReply, result.Reply)
}

func TestAdvanceTerminalStateStartsOver(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	state := &ConversationState{
		Phase:              PhaseResolved,
		ProblemDescription: "old topic",
		StepsShownCount:    3,
	}

	result := advanceFrom(t, e, state, "now my tv has no sound")

	assert.Equal(t, PhaseAwaitingFeedback, result.State.Phase)
	assert.Equal(t, "now my tv has no sound", result.State.ProblemDescription)
	assert.Contains(t, result.Reply, remediesFor(CategoryBroadcast)[0])
}

func TestScenarioInternetEscalation(t *testing.T) {
	// Full two-turn session: technical report, then negative feedback.
	e := NewEngine(nil, nil, nil)

	first := advanceFrom(t, e, nil, "My internet is not working")
	require.Equal(t, PhaseAwaitingFeedback, first.State.Phase)
	require.Equal(t, 3, strings.Count(first.Reply, "\n")-2) // 3 numbered lines plus intro and blank line

	second := advanceFrom(t, e, &first.State, "no still broken")
	assert.True(t, second.CreateComplaint)
	assert.Equal(t, PhaseEscalationRequested, second.State.Phase)
	assert.Equal(t, "My internet is not working", second.State.ProblemDescription)
}
