package ai

import (
	"context"
	"time"
)

// TimeoutClient bounds every completion with a deadline so a slow
// backend degrades to the caller's fallback path instead of hanging
// the conversation.
type TimeoutClient struct {
	inner   LLMClient
	timeout time.Duration
}

// NewTimeoutClient wraps an LLMClient with a per-call timeout.
// A non-positive timeout defaults to 10 seconds.
func NewTimeoutClient(inner LLMClient, timeout time.Duration) *TimeoutClient {
	if inner == nil {
		panic("ai: timeout client requires an inner client")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TimeoutClient{inner: inner, timeout: timeout}
}

func (c *TimeoutClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Complete(ctx, req)
}
