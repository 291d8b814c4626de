package complaints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northlink/support-ai-platform/pkg/logging"
)

// Handler exposes complaint lookups over HTTP.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a complaints HTTP handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /complaints/{complaintID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintID")
	if id == "" {
		http.Error(w, "missing complaint id", http.StatusBadRequest)
		return
	}

	complaint, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "complaint not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load complaint", "complaint_id", id, "error", err)
		http.Error(w, "failed to load complaint", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(complaint)
}
