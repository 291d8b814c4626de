package approval

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/northlink/support-ai-platform/internal/complaints"
	"github.com/northlink/support-ai-platform/internal/http/middleware"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

const defaultStatsWindow = 24 * time.Hour

// Handler exposes the approval gate over HTTP.
type Handler struct {
	gate       *Gate
	complaints complaints.Repository
	decisions  DecisionLog
	logger     *logging.Logger
}

// NewHandler creates an approval HTTP handler.
func NewHandler(gate *Gate, repo complaints.Repository, decisions DecisionLog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		gate:       gate,
		complaints: repo,
		decisions:  decisions,
		logger:     logger,
	}
}

// DraftReplyRequest optionally carries agent-supplied knowledge
// snippets to ground the draft on.
type DraftReplyRequest struct {
	KnowledgeContext []string `json:"knowledgeContext,omitempty"`
}

// ApproveRequest is the agent's release decision for a draft.
type ApproveRequest struct {
	DraftID   string `json:"draftId"`
	FinalText string `json:"finalText,omitempty"`
	Override  bool   `json:"override,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// DraftReply handles POST /complaints/{complaintID}/draft-reply.
func (h *Handler) DraftReply(w http.ResponseWriter, r *http.Request) {
	complaintID := chi.URLParam(r, "complaintID")
	if complaintID == "" {
		writeError(w, http.StatusBadRequest, "missing complaint id", "")
		return
	}

	// Body is optional; an empty body means no agent-supplied context.
	var req DraftReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error(), "")
		return
	}

	complaint, err := h.complaints.GetByID(r.Context(), complaintID)
	if err != nil {
		if errors.Is(err, complaints.ErrNotFound) {
			writeError(w, http.StatusNotFound, "complaint not found", "")
			return
		}
		h.logger.Error("failed to load complaint", "complaint_id", complaintID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load complaint", "")
		return
	}

	draft, err := h.gate.DraftReply(r.Context(), complaint.ID, complaint.Description, req.KnowledgeContext)
	if err != nil {
		h.logger.Error("failed to draft reply", "complaint_id", complaintID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to draft reply", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(draft)
}

// ApproveReply handles POST /complaints/{complaintID}/approve-reply.
func (h *Handler) ApproveReply(w http.ResponseWriter, r *http.Request) {
	complaintID := chi.URLParam(r, "complaintID")

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error(), "")
		return
	}
	if req.DraftID == "" {
		writeError(w, http.StatusBadRequest, "draftId is required", "")
		return
	}

	decision, err := h.gate.Approve(r.Context(), req.DraftID, req.FinalText, req.Override, middleware.AgentID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, ErrDraftNotFound):
			writeError(w, http.StatusNotFound, "draft not found", "")
		case errors.Is(err, ErrReviewRequired):
			writeError(w, http.StatusConflict, "draft requires human review: edit the text or set override", "review_required")
		case errors.Is(err, ErrAlreadyDecided):
			writeError(w, http.StatusConflict, "a reply was already released for this complaint", "already_decided")
		default:
			h.logger.Error("failed to approve reply",
				"complaint_id", complaintID,
				"draft_id", req.DraftID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "failed to approve reply", "")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// AIPerformance handles GET /metrics/ai-performance?window=24h.
func (h *Handler) AIPerformance(w http.ResponseWriter, r *http.Request) {
	window := defaultStatsWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid window duration", "")
			return
		}
		window = parsed
	}

	now := time.Now().UTC()
	since := now.Add(-window)

	decisions, err := h.decisions.ListSince(r.Context(), since)
	if err != nil {
		h.logger.Error("failed to list decisions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute metrics", "")
		return
	}

	record := ComputeStats(decisions, h.gate.ReviewThreshold())
	record.WindowStart = since
	record.WindowEnd = now

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg, Code: code})
}
