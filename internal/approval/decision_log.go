package approval

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DecisionLog is the append-only record of approval decisions. Stats
// are recomputed from it on demand rather than kept as live counters,
// so corrections in the underlying records never drift out of sync.
type DecisionLog interface {
	Record(ctx context.Context, decision *ApprovalDecision) error
	ListSince(ctx context.Context, since time.Time) ([]ApprovalDecision, error)
	HasForComplaint(ctx context.Context, complaintID string) (bool, error)
}

// InMemoryDecisionLog is a DecisionLog backed by a slice, used in
// development and tests.
type InMemoryDecisionLog struct {
	mu        sync.RWMutex
	decisions []ApprovalDecision
}

func NewInMemoryDecisionLog() *InMemoryDecisionLog {
	return &InMemoryDecisionLog{}
}

func (l *InMemoryDecisionLog) Record(ctx context.Context, decision *ApprovalDecision) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisions = append(l.decisions, *decision)
	return nil
}

func (l *InMemoryDecisionLog) ListSince(ctx context.Context, since time.Time) ([]ApprovalDecision, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []ApprovalDecision
	for _, d := range l.decisions {
		if !d.ApprovedAt.Before(since) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApprovedAt.Before(out[j].ApprovedAt) })
	return out, nil
}

func (l *InMemoryDecisionLog) HasForComplaint(ctx context.Context, complaintID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, d := range l.decisions {
		if d.ComplaintID == complaintID {
			return true, nil
		}
	}
	return false, nil
}

// SQLDecisionLog persists decisions through database/sql (Postgres via
// lib/pq in production).
type SQLDecisionLog struct {
	db *sql.DB
}

func NewSQLDecisionLog(db *sql.DB) *SQLDecisionLog {
	if db == nil {
		panic("approval: sql db required for decision log")
	}
	return &SQLDecisionLog{db: db}
}

func (l *SQLDecisionLog) Record(ctx context.Context, decision *ApprovalDecision) error {
	const query = `INSERT INTO approval_decisions
		(id, draft_id, complaint_id, final_text, agent_edited, override_used,
		 approved_by, approved_at, draft_confidence, draft_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := l.db.ExecContext(ctx, query,
		decision.ID, decision.DraftID, decision.ComplaintID,
		decision.FinalText, decision.AgentEdited, decision.OverrideUsed,
		decision.ApprovedBy, decision.ApprovedAt,
		decision.DraftConfidence, string(decision.DraftSource),
	)
	if err != nil {
		return fmt.Errorf("approval: record decision: %w", err)
	}
	return nil
}

func (l *SQLDecisionLog) ListSince(ctx context.Context, since time.Time) ([]ApprovalDecision, error) {
	const query = `SELECT id, draft_id, complaint_id, final_text, agent_edited,
		override_used, approved_by, approved_at, draft_confidence, draft_source
		FROM approval_decisions WHERE approved_at >= $1 ORDER BY approved_at`

	rows, err := l.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("approval: list decisions: %w", err)
	}
	defer rows.Close()

	var out []ApprovalDecision
	for rows.Next() {
		var d ApprovalDecision
		var source string
		if err := rows.Scan(
			&d.ID, &d.DraftID, &d.ComplaintID, &d.FinalText, &d.AgentEdited,
			&d.OverrideUsed, &d.ApprovedBy, &d.ApprovedAt,
			&d.DraftConfidence, &source,
		); err != nil {
			return nil, fmt.Errorf("approval: scan decision: %w", err)
		}
		d.DraftSource = DraftSource(source)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("approval: iterate decisions: %w", err)
	}
	return out, nil
}

func (l *SQLDecisionLog) HasForComplaint(ctx context.Context, complaintID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM approval_decisions WHERE complaint_id = $1)`

	var exists bool
	if err := l.db.QueryRowContext(ctx, query, complaintID).Scan(&exists); err != nil {
		return false, fmt.Errorf("approval: check complaint decision: %w", err)
	}
	return exists, nil
}
