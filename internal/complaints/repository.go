package complaints

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for complaint storage
type Repository interface {
	Create(ctx context.Context, req *CreateComplaintRequest) (*Complaint, error)
	GetByID(ctx context.Context, id string) (*Complaint, error)
	MarkReplied(ctx context.Context, id string) error
}

// InMemoryRepository is a Repository backed by a mutex-guarded map,
// used in development and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	complaints map[string]*Complaint
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		complaints: make(map[string]*Complaint),
	}
}

// Create stores a new complaint in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateComplaintRequest) (*Complaint, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	complaint := &Complaint{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Description: req.Description,
		Category:    req.Category,
		Status:      StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.complaints[complaint.ID] = complaint
	r.mu.Unlock()

	return complaint, nil
}

// GetByID retrieves a complaint by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	complaint, ok := r.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}

	copy := *complaint
	return &copy, nil
}

// MarkReplied transitions a complaint to replied status.
func (r *InMemoryRepository) MarkReplied(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	complaint, ok := r.complaints[id]
	if !ok {
		return ErrNotFound
	}
	complaint.Status = StatusReplied
	return nil
}
