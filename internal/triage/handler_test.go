package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlink/support-ai-platform/internal/complaints"
)

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, req *complaints.CreateComplaintRequest) (*complaints.Complaint, error) {
	return nil, errors.New("db down")
}

func (failingRepo) GetByID(ctx context.Context, id string) (*complaints.Complaint, error) {
	return nil, complaints.ErrNotFound
}

func (failingRepo) MarkReplied(ctx context.Context, id string) error {
	return complaints.ErrNotFound
}

func postTurn(t *testing.T, h *Handler, req TurnRequest) (*httptest.ResponseRecorder, TurnResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/conversation/turn", bytes.NewReader(body))
	h.Turn(rec, r)

	var resp TurnResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}
	return rec, resp
}

func TestTurnTechnicalMessageShowsSteps(t *testing.T) {
	h := NewHandler(NewEngine(nil, nil, nil), complaints.NewInMemoryRepository(), nil, nil)

	rec, resp := postTurn(t, h, TurnRequest{UserID: "u-1", Message: "my internet is not working"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, PhaseAwaitingFeedback, resp.State.Phase)
	assert.Contains(t, resp.Reply, "1.")
	assert.False(t, resp.CreateComplaint)
	assert.Empty(t, resp.ComplaintID)
}

func TestTurnEscalationCreatesComplaint(t *testing.T) {
	repo := complaints.NewInMemoryRepository()
	h := NewHandler(NewEngine(nil, nil, nil), repo, nil, nil)

	// First turn reports the problem, second turn says the steps failed.
	_, first := postTurn(t, h, TurnRequest{UserID: "u-1", Message: "my internet keeps dropping"})
	require.Equal(t, PhaseAwaitingFeedback, first.State.Phase)

	state := first.State
	rec, second := postTurn(t, h, TurnRequest{UserID: "u-1", Message: "no, still broken", State: &state})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, second.CreateComplaint)
	require.NotEmpty(t, second.ComplaintID)

	complaint, err := repo.GetByID(context.Background(), second.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, "u-1", complaint.UserID)
	assert.Equal(t, "my internet keeps dropping", complaint.Description)
	assert.Equal(t, "connectivity", complaint.Category)
	assert.Equal(t, complaints.StatusOpen, complaint.Status)
}

func TestTurnRepositoryFailureIs500(t *testing.T) {
	h := NewHandler(NewEngine(nil, nil, nil), failingRepo{}, nil, nil)

	state := ConversationState{
		Phase:              PhaseAwaitingFeedback,
		ProblemDescription: "tv channels missing",
	}
	rec, _ := postTurn(t, h, TurnRequest{UserID: "u-1", Message: "no", State: &state})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTurnValidation(t *testing.T) {
	h := NewHandler(NewEngine(nil, nil, nil), complaints.NewInMemoryRepository(), nil, nil)

	t.Run("empty message", func(t *testing.T) {
		rec, _ := postTurn(t, h, TurnRequest{UserID: "u-1", Message: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/conversation/turn", bytes.NewReader([]byte("{not json")))
		h.Turn(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestComplaintCategoryFallsBackToEmpty(t *testing.T) {
	state := ConversationState{ProblemDescription: "I am very unhappy with your service"}
	assert.Equal(t, "", complaintCategory(state, "I want to file a complaint"))
}
