package approval

import (
	"context"
	"sync"
)

// DraftStore holds drafts awaiting a decision. MarkDecided must be
// atomic so that two concurrent approvals of one draft cannot both
// succeed.
type DraftStore interface {
	Put(ctx context.Context, draft *ReplyDraft) error
	Get(ctx context.Context, id string) (*ReplyDraft, error)
	// MarkDecided flips the draft to decided exactly once. A second
	// call returns ErrAlreadyDecided.
	MarkDecided(ctx context.Context, id string) error
}

type draftRecord struct {
	draft   ReplyDraft
	decided bool
}

// InMemoryDraftStore is a DraftStore backed by a mutex-guarded map.
type InMemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*draftRecord
}

// NewInMemoryDraftStore creates an empty in-memory draft store.
func NewInMemoryDraftStore() *InMemoryDraftStore {
	return &InMemoryDraftStore{drafts: make(map[string]*draftRecord)}
}

func (s *InMemoryDraftStore) Put(ctx context.Context, draft *ReplyDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = &draftRecord{draft: *draft}
	return nil
}

func (s *InMemoryDraftStore) Get(ctx context.Context, id string) (*ReplyDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	draft := rec.draft
	return &draft, nil
}

func (s *InMemoryDraftStore) MarkDecided(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.drafts[id]
	if !ok {
		return ErrDraftNotFound
	}
	if rec.decided {
		return ErrAlreadyDecided
	}
	rec.decided = true
	return nil
}
