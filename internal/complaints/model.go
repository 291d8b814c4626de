package complaints

import "time"

// Status tracks a complaint through its lifecycle.
type Status string

const (
	StatusOpen    Status = "open"
	StatusReplied Status = "replied"
	StatusClosed  Status = "closed"
)

// Complaint is an escalated, unresolved issue handed off by triage.
type Complaint struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateComplaintRequest carries the payload from a triage escalation.
type CreateComplaintRequest struct {
	UserID      string
	Description string
	Category    string
}

// Validate checks the minimum fields for complaint creation.
func (r *CreateComplaintRequest) Validate() error {
	if r.Description == "" {
		return ErrMissingDescription
	}
	return nil
}
