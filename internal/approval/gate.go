package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/northlink/support-ai-platform/internal/ai"
	"github.com/northlink/support-ai-platform/internal/complaints"
	"github.com/northlink/support-ai-platform/internal/knowledge"
	"github.com/northlink/support-ai-platform/internal/observability/metrics"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

var gateTracer = otel.Tracer("support/approval-gate")

// AIClient is the slice of the AI adapter the gate needs.
type AIClient interface {
	Classify(ctx context.Context, text string) (ai.Classification, error)
	Generate(ctx context.Context, prompt string, snippets []string) (ai.Generation, error)
}

// Gate drafts AI replies for complaints and enforces the human-approval
// policy before any text becomes customer-visible. Every reply passes
// through Approve; there is no other path that marks a complaint as
// replied-to.
type Gate struct {
	aiClient   AIClient
	drafts     DraftStore
	decisions  DecisionLog
	complaints complaints.Repository
	threshold  float64
	logger     *logging.Logger
	metrics    *metrics.WorkflowMetrics
}

// NewGate creates an approval gate. threshold is the confidence below
// which drafts require human review; out-of-range values reset to the
// 0.8 default.
func NewGate(
	aiClient AIClient,
	drafts DraftStore,
	decisions DecisionLog,
	complaintRepo complaints.Repository,
	threshold float64,
	m *metrics.WorkflowMetrics,
	logger *logging.Logger,
) *Gate {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		aiClient:   aiClient,
		drafts:     drafts,
		decisions:  decisions,
		complaints: complaintRepo,
		threshold:  threshold,
		logger:     logger,
		metrics:    m,
	}
}

// ReviewThreshold returns the configured confidence boundary.
func (g *Gate) ReviewThreshold() float64 {
	return g.threshold
}

// DraftReply produces a candidate reply for a complaint. Adapter
// failure degrades to a deterministic knowledge-base fallback instead
// of an error; the returned draft always satisfies the review
// invariant: needs_human_review is true whenever the confidence is
// below the threshold or the text did not come from the model.
func (g *Gate) DraftReply(ctx context.Context, complaintID, complaintText string, knowledgeContext []string) (*ReplyDraft, error) {
	ctx, span := gateTracer.Start(ctx, "approval.draft_reply")
	defer span.End()

	if strings.TrimSpace(complaintText) == "" {
		return nil, errors.New("approval: complaint text is required")
	}

	category := g.classifyCategory(ctx, complaintText)
	snippets := knowledgeContext
	if len(snippets) == 0 {
		snippets = knowledge.SnippetsFor(category)
	}

	draft := &ReplyDraft{
		ID:          uuid.New().String(),
		ComplaintID: complaintID,
		GeneratedAt: time.Now().UTC(),
	}

	gen, err := g.aiClient.Generate(ctx, complaintText, snippets)
	if err != nil {
		g.metrics.ObserveAdapterCall("generate", "error")
		g.logger.Warn("draft generation failed, using kb fallback",
			"complaint_id", complaintID,
			"category", category,
			"error", err,
		)
		draft.Text = knowledge.FallbackReply(category)
		draft.Confidence = 0.5
		draft.Source = SourceKBFallback
	} else {
		g.metrics.ObserveAdapterCall("generate", "ok")
		draft.Text = gen.Text
		draft.Confidence = gen.Confidence
		draft.Source = SourceModel
	}

	draft.NeedsHumanReview = g.needsReview(draft)

	if err := g.drafts.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("approval: store draft: %w", err)
	}

	span.SetAttributes(
		attribute.String("draft.id", draft.ID),
		attribute.String("draft.source", string(draft.Source)),
		attribute.Float64("draft.confidence", draft.Confidence),
		attribute.Bool("draft.needs_review", draft.NeedsHumanReview),
	)
	g.metrics.ObserveDraft(string(draft.Source), draft.NeedsHumanReview)
	g.logger.Info("reply draft created",
		"complaint_id", complaintID,
		"draft_id", draft.ID,
		"source", draft.Source,
		"confidence", draft.Confidence,
		"needs_review", draft.NeedsHumanReview,
	)

	return draft, nil
}

// Approve records the human decision that releases a draft to the
// customer. finalText, when set, replaces the draft text and counts as
// an agent edit. Low-confidence drafts require either an edit or an
// explicit override acknowledgment.
func (g *Gate) Approve(ctx context.Context, draftID, finalText string, override bool, approvedBy string) (*ApprovalDecision, error) {
	ctx, span := gateTracer.Start(ctx, "approval.approve")
	defer span.End()

	draft, err := g.drafts.Get(ctx, draftID)
	if err != nil {
		g.metrics.ObserveApproval("not_found")
		return nil, err
	}

	edited := finalText != "" && finalText != draft.Text
	if draft.NeedsHumanReview && !edited && !override {
		g.metrics.ObserveApproval("review_required")
		return nil, ErrReviewRequired
	}

	// One decision per complaint: approving a superseded draft after
	// another draft was already released is a duplicate reply.
	if g.decisions != nil {
		decided, err := g.decisions.HasForComplaint(ctx, draft.ComplaintID)
		if err != nil {
			return nil, fmt.Errorf("approval: check prior decision: %w", err)
		}
		if decided {
			g.metrics.ObserveApproval("already_decided")
			return nil, ErrAlreadyDecided
		}
	}

	if err := g.drafts.MarkDecided(ctx, draftID); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			g.metrics.ObserveApproval("already_decided")
		}
		return nil, err
	}

	text := draft.Text
	if finalText != "" {
		text = finalText
	}

	decision := &ApprovalDecision{
		ID:              uuid.New().String(),
		DraftID:         draft.ID,
		ComplaintID:     draft.ComplaintID,
		FinalText:       text,
		AgentEdited:     edited,
		OverrideUsed:    override,
		ApprovedBy:      approvedBy,
		ApprovedAt:      time.Now().UTC(),
		DraftConfidence: draft.Confidence,
		DraftSource:     draft.Source,
	}

	if g.decisions != nil {
		if err := g.decisions.Record(ctx, decision); err != nil {
			return nil, fmt.Errorf("approval: record decision: %w", err)
		}
	}

	if g.complaints != nil {
		if err := g.complaints.MarkReplied(ctx, draft.ComplaintID); err != nil {
			// The decision stands; the status update is retried by ops.
			g.logger.Error("failed to mark complaint replied",
				"complaint_id", draft.ComplaintID,
				"error", err,
			)
		}
	}

	span.SetAttributes(
		attribute.String("decision.draft_id", draft.ID),
		attribute.Bool("decision.agent_edited", decision.AgentEdited),
		attribute.Bool("decision.override", decision.OverrideUsed),
	)
	g.metrics.ObserveApproval("approved")
	g.logger.Info("reply approved",
		"complaint_id", draft.ComplaintID,
		"draft_id", draft.ID,
		"agent_edited", decision.AgentEdited,
		"override", decision.OverrideUsed,
		"approved_by", approvedBy,
	)

	return decision, nil
}

// needsReview applies the review invariant in one place.
func (g *Gate) needsReview(draft *ReplyDraft) bool {
	return draft.Confidence < g.threshold || draft.Source == SourceKBFallback
}

// classifyCategory is best-effort: classification failure falls back to
// the general category rather than failing the draft.
func (g *Gate) classifyCategory(ctx context.Context, text string) string {
	result, err := g.aiClient.Classify(ctx, text)
	if err != nil {
		g.metrics.ObserveAdapterCall("classify", "error")
		g.logger.Warn("complaint classification failed", "error", err)
		return "other"
	}
	g.metrics.ObserveAdapterCall("classify", "ok")
	return result.Category
}
