package ai

import "errors"

var (
	// ErrUnavailable indicates the generation backend could not be
	// reached (transport, auth, or timeout). Callers fall back to
	// deterministic replies when they see this.
	ErrUnavailable = errors.New("ai backend unavailable")

	// ErrEmptyCompletion indicates the backend responded but produced
	// no usable text. Distinct from ErrUnavailable so callers can tell
	// "service down" from "model returned empty".
	ErrEmptyCompletion = errors.New("ai backend returned empty completion")
)
