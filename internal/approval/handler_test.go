package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlink/support-ai-platform/internal/ai"
	"github.com/northlink/support-ai-platform/internal/complaints"
)

func newTestServer(t *testing.T, client *stubAI) (*chi.Mux, *complaints.InMemoryRepository, *InMemoryDecisionLog) {
	t.Helper()
	repo := complaints.NewInMemoryRepository()
	decisions := NewInMemoryDecisionLog()
	gate := NewGate(client, NewInMemoryDraftStore(), decisions, repo, 0.8, nil, nil)
	handler := NewHandler(gate, repo, decisions, nil)

	r := chi.NewRouter()
	r.Post("/complaints/{complaintID}/draft-reply", handler.DraftReply)
	r.Post("/complaints/{complaintID}/approve-reply", handler.ApproveReply)
	r.Get("/metrics/ai-performance", handler.AIPerformance)
	return r, repo, decisions
}

func createComplaint(t *testing.T, repo *complaints.InMemoryRepository) *complaints.Complaint {
	t.Helper()
	complaint, err := repo.Create(context.Background(), &complaints.CreateComplaintRequest{
		UserID:      "u-1",
		Description: "internet was down all week",
		Category:    "connectivity",
	})
	require.NoError(t, err)
	return complaint
}

func TestDraftReplyEndpoint(t *testing.T) {
	client := &stubAI{
		classification: ai.Classification{Category: "connectivity", Confidence: 0.9},
		generation:     ai.Generation{Text: "We have credited your account.", Confidence: 0.95},
	}
	router, repo, _ := newTestServer(t, client)
	complaint := createComplaint(t, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/complaints/"+complaint.ID+"/draft-reply", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var draft ReplyDraft
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&draft))
	assert.Equal(t, complaint.ID, draft.ComplaintID)
	assert.Equal(t, SourceModel, draft.Source)
	assert.False(t, draft.NeedsHumanReview)
	assert.NotEmpty(t, draft.ID)
}

func TestDraftReplyUnknownComplaint(t *testing.T) {
	router, _, _ := newTestServer(t, &stubAI{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/complaints/missing/draft-reply", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveReplyEndpoint(t *testing.T) {
	client := &stubAI{
		generation: ai.Generation{Text: "We have credited your account.", Confidence: 0.95},
	}
	router, repo, _ := newTestServer(t, client)
	complaint := createComplaint(t, repo)

	draft := draftVia(t, router, complaint.ID)

	body, _ := json.Marshal(ApproveRequest{DraftID: draft.ID})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/complaints/"+complaint.ID+"/approve-reply", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var decision ApprovalDecision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decision))
	assert.Equal(t, draft.ID, decision.DraftID)
	assert.Equal(t, "We have credited your account.", decision.FinalText)
	assert.False(t, decision.AgentEdited)
	assert.Equal(t, "agent", decision.ApprovedBy)

	updated, err := repo.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaints.StatusReplied, updated.Status)
}

func TestApproveReplyConflicts(t *testing.T) {
	client := &stubAI{
		generation: ai.Generation{Text: "Maybe try restarting?", Confidence: 0.4},
	}
	router, repo, _ := newTestServer(t, client)
	complaint := createComplaint(t, repo)
	draft := draftVia(t, router, complaint.ID)

	approve := func(req ApproveRequest) (*httptest.ResponseRecorder, errorResponse) {
		body, _ := json.Marshal(req)
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/complaints/"+complaint.ID+"/approve-reply", bytes.NewReader(body))
		router.ServeHTTP(rec, r)
		var er errorResponse
		json.NewDecoder(rec.Body).Decode(&er)
		return rec, er
	}

	// Low-confidence draft without edit or override is refused.
	rec, er := approve(ApproveRequest{DraftID: draft.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "review_required", er.Code)

	// Override releases it.
	rec, _ = approve(ApproveRequest{DraftID: draft.ID, Override: true})
	assert.Equal(t, http.StatusOK, rec.Code)

	// A second approval for the same complaint is a duplicate.
	rec, er = approve(ApproveRequest{DraftID: draft.ID, Override: true})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_decided", er.Code)

	// Unknown drafts are 404.
	rec, _ = approve(ApproveRequest{DraftID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing draftId is a client error.
	rec, _ = approve(ApproveRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAIPerformanceEndpoint(t *testing.T) {
	router, _, decisions := newTestServer(t, &stubAI{})

	now := time.Now().UTC()
	for i, conf := range []float64{0.9, 0.7, 0.95} {
		err := decisions.Record(context.Background(), &ApprovalDecision{
			ID:              "d-" + string(rune('a'+i)),
			ComplaintID:     "c-" + string(rune('a'+i)),
			DraftConfidence: conf,
			AgentEdited:     i == 1,
			ApprovedAt:      now.Add(-time.Minute),
		})
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics/ai-performance?window=1h", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var record MetricsRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, 3, record.Total)
	assert.Equal(t, 1, record.Edited)
	assert.Equal(t, 1, record.LowConfidence)
	require.NotNil(t, record.AcceptanceRate)
	assert.InDelta(t, 2.0/3.0, *record.AcceptanceRate, 1e-9)
	assert.False(t, record.WindowStart.IsZero())
}

func TestAIPerformanceEmptyWindow(t *testing.T) {
	router, _, _ := newTestServer(t, &stubAI{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics/ai-performance", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Rates must serialize as JSON null when there were no decisions.
	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Equal(t, float64(0), raw["total_assisted_replies"])
	assert.Nil(t, raw["acceptance_rate"])
	assert.Nil(t, raw["mean_confidence"])
}

func TestAIPerformanceBadWindow(t *testing.T) {
	router, _, _ := newTestServer(t, &stubAI{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics/ai-performance?window=banana", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func draftVia(t *testing.T, router *chi.Mux, complaintID string) ReplyDraft {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/complaints/"+complaintID+"/draft-reply", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var draft ReplyDraft
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&draft))
	return draft
}
