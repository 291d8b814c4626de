package triage

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/northlink/support-ai-platform/internal/complaints"
	"github.com/northlink/support-ai-platform/internal/events"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

// Handler exposes the conversation engine over HTTP.
type Handler struct {
	engine     *Engine
	complaints complaints.Repository
	publisher  *events.Publisher
	logger     *logging.Logger
}

// NewHandler creates a triage HTTP handler. The publisher may be nil
// when event publishing is disabled.
func NewHandler(engine *Engine, repo complaints.Repository, publisher *events.Publisher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:     engine,
		complaints: repo,
		publisher:  publisher,
		logger:     logger,
	}
}

// TurnRequest is the POST /conversation/turn payload. State is the
// value returned by the previous turn, or absent for a new session.
type TurnRequest struct {
	UserID  string             `json:"userId"`
	Message string             `json:"message"`
	State   *ConversationState `json:"state,omitempty"`
}

// TurnResponse echoes the reply and the state to send back next turn.
type TurnResponse struct {
	Reply           string            `json:"reply"`
	State           ConversationState `json:"state"`
	CreateComplaint bool              `json:"createComplaint"`
	ComplaintID     string            `json:"complaintId,omitempty"`
}

// Turn handles POST /conversation/turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	result := h.engine.Advance(r.Context(), req.State, req.Message)

	resp := TurnResponse{
		Reply:           result.Reply,
		State:           result.State,
		CreateComplaint: result.CreateComplaint,
	}

	if result.CreateComplaint && h.complaints != nil {
		complaint, err := h.complaints.Create(r.Context(), &complaints.CreateComplaintRequest{
			UserID:      req.UserID,
			Description: complaintDescription(result.State, req.Message),
			Category:    complaintCategory(result.State, req.Message),
		})
		if err != nil {
			// The user already got the escalation reply; losing the
			// ticket is the one thing we cannot hide.
			h.logger.Error("failed to create complaint", "user_id", req.UserID, "error", err)
			http.Error(w, "failed to create complaint", http.StatusInternalServerError)
			return
		}
		resp.ComplaintID = complaint.ID
		h.publisher.PublishComplaintCreated(r.Context(), complaint)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// complaintDescription prefers the recorded problem description over
// the escalating message itself.
func complaintDescription(s ConversationState, msg string) string {
	if s.ProblemDescription != "" {
		return s.ProblemDescription
	}
	return msg
}

// complaintCategory re-runs the keyword match on the recorded
// description so the ticket carries the detected category when one
// exists.
func complaintCategory(s ConversationState, msg string) string {
	if category, ok := matchTechnicalCategory(complaintDescription(s, msg)); ok && category != CategoryGeneric {
		return string(category)
	}
	return ""
}
