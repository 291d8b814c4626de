package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"

	"github.com/northlink/support-ai-platform/internal/complaints"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

// ComplaintCreated is emitted when triage escalates a conversation.
// The ticketing system consumes it downstream.
type ComplaintCreated struct {
	ComplaintID string    `json:"complaint_id"`
	UserID      string    `json:"user_id,omitempty"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// envelope wraps an event with transport metadata.
type envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends complaint events to an SQS queue. A nil Publisher or
// an empty queue URL disables publishing, so callers never branch.
type Publisher struct {
	client   sqsAPI
	queueURL string
	logger   *logging.Logger
}

// NewPublisher creates an SQS-backed event publisher.
func NewPublisher(client sqsAPI, queueURL string, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{client: client, queueURL: queueURL, logger: logger}
}

// PublishComplaintCreated sends a complaint.created event. Failures
// are logged and swallowed: event delivery must never break the
// conversation flow that created the complaint.
func (p *Publisher) PublishComplaintCreated(ctx context.Context, complaint *complaints.Complaint) {
	if p == nil || p.client == nil || p.queueURL == "" {
		return
	}

	if err := p.send(ctx, "complaint.created", ComplaintCreated{
		ComplaintID: complaint.ID,
		UserID:      complaint.UserID,
		Description: complaint.Description,
		Category:    complaint.Category,
		OccurredAt:  complaint.CreatedAt,
	}); err != nil {
		p.logger.Error("failed to publish complaint.created",
			"complaint_id", complaint.ID,
			"error", err,
		)
		return
	}
	p.logger.Info("published complaint.created", "complaint_id", complaint.ID)
}

func (p *Publisher) send(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	msg, err := json.Marshal(envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload:   body,
	})
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(msg)),
	})
	if err != nil {
		return fmt.Errorf("events: send message: %w", err)
	}
	return nil
}
