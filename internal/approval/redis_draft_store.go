package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix   = "draft:"
	decidedKeySuffix = ":decided"
)

// RedisDraftStore keeps drafts in Redis with a TTL. Drafts are
// ephemeral working state, so losing them on expiry only forces the
// agent to request a fresh draft.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore creates a Redis-backed draft store. A
// non-positive TTL defaults to 24 hours.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if client == nil {
		panic("approval: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(id string) string   { return draftKeyPrefix + id }
func decidedKey(id string) string { return draftKeyPrefix + id + decidedKeySuffix }

func (s *RedisDraftStore) Put(ctx context.Context, draft *ReplyDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("approval: marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(draft.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("approval: store draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Get(ctx context.Context, id string) (*ReplyDraft, error) {
	payload, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("approval: load draft: %w", err)
	}
	var draft ReplyDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("approval: unmarshal draft: %w", err)
	}
	return &draft, nil
}

// MarkDecided uses SETNX on a marker key so only the first approval of
// a draft wins, even across processes.
func (s *RedisDraftStore) MarkDecided(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, draftKey(id)).Result()
	if err != nil {
		return fmt.Errorf("approval: check draft: %w", err)
	}
	if exists == 0 {
		return ErrDraftNotFound
	}

	ok, err := s.client.SetNX(ctx, decidedKey(id), "1", s.ttl).Result()
	if err != nil {
		return fmt.Errorf("approval: mark decided: %w", err)
	}
	if !ok {
		return ErrAlreadyDecided
	}
	return nil
}
