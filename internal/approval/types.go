package approval

import "time"

// DraftSource records where a draft's text came from.
type DraftSource string

const (
	// SourceModel marks text generated by the AI backend.
	SourceModel DraftSource = "model"
	// SourceKBFallback marks deterministic canned text used when the
	// backend was unavailable. Fallback content is never auto-trusted.
	SourceKBFallback DraftSource = "kb_fallback"
)

// ReplyDraft is an AI-produced candidate reply for one complaint. It is
// not customer-visible until an ApprovalDecision authorizes it.
type ReplyDraft struct {
	ID               string      `json:"id"`
	ComplaintID      string      `json:"complaint_id"`
	Text             string      `json:"text"`
	Confidence       float64     `json:"confidence"`
	NeedsHumanReview bool        `json:"needs_human_review"`
	Source           DraftSource `json:"source"`
	GeneratedAt      time.Time   `json:"generated_at"`
}

// ApprovalDecision is the only record that makes text customer-visible.
// It snapshots the originating draft's confidence and source so that
// historical stats survive draft expiry.
type ApprovalDecision struct {
	ID              string      `json:"id"`
	DraftID         string      `json:"draft_id"`
	ComplaintID     string      `json:"complaint_id"`
	FinalText       string      `json:"final_text"`
	AgentEdited     bool        `json:"agent_edited"`
	OverrideUsed    bool        `json:"override_used"`
	ApprovedBy      string      `json:"approved_by"`
	ApprovedAt      time.Time   `json:"approved_at"`
	DraftConfidence float64     `json:"draft_confidence"`
	DraftSource     DraftSource `json:"draft_source"`
}
