package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/northlink/support-ai-platform/pkg/logging"
)

// Classification is the structured judgment returned for a piece of
// customer text.
type Classification struct {
	Category   string  `json:"category"`
	Sentiment  string  `json:"sentiment"`
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// Generation is a drafted piece of text plus the backend's own
// confidence in it. Confidence is a policy input, not a correctness
// guarantee.
type Generation struct {
	Text       string
	Confidence float64
	Model      string
}

const classifyPrompt = `Classify this customer support message. Respond with JSON only.

Categories: connectivity, broadcast_service, device, billing, account, other
Sentiment: positive, neutral, negative
Priority: low, medium, high

Message: %s

Respond with: {"category": "<category>", "sentiment": "<sentiment>", "priority": "<priority>", "confidence": <0.0-1.0>}`

const generatePrompt = `You are a customer support agent drafting a reply to a complaint.
Write a concise, empathetic reply that addresses the complaint using only the
reference notes provided. Do not promise refunds or timelines not present in
the notes. Rate your own confidence that the reply fully addresses the
complaint.

Complaint:
%s

Reference notes:
%s

Respond with JSON only: {"reply": "<reply text>", "confidence": <0.0-1.0>}`

// Adapter exposes the classify/generate contract over any LLMClient.
// It owns prompt construction and tolerant parsing of model output.
type Adapter struct {
	client    LLMClient
	modelID   string
	maxTokens int32
	logger    *logging.Logger
}

// NewAdapter creates an adapter over the given completion client.
func NewAdapter(client LLMClient, modelID string, maxTokens int32, logger *logging.Logger) *Adapter {
	if client == nil {
		panic("ai: adapter requires an LLM client")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Classify returns a structured judgment for the given text.
func (a *Adapter) Classify(ctx context.Context, text string) (Classification, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Classification{}, errors.New("ai: classify requires non-empty text")
	}

	resp, err := a.complete(ctx, fmt.Sprintf(classifyPrompt, text), 200)
	if err != nil {
		return Classification{}, err
	}

	var result Classification
	if err := json.Unmarshal(extractJSON(resp.Text), &result); err != nil {
		return Classification{}, fmt.Errorf("ai: unparseable classification: %w", err)
	}
	result.Confidence = clamp01(result.Confidence)
	if result.Category == "" {
		result.Category = "other"
	}
	return result, nil
}

// Generate drafts text for the given prompt with supporting context
// snippets. The returned confidence is the model's self-assessment.
func (a *Adapter) Generate(ctx context.Context, prompt string, snippets []string) (Generation, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Generation{}, errors.New("ai: generate requires a non-empty prompt")
	}

	notes := "(none provided)"
	if len(snippets) > 0 {
		notes = "- " + strings.Join(snippets, "\n- ")
	}

	resp, err := a.complete(ctx, fmt.Sprintf(generatePrompt, prompt, notes), a.maxTokens)
	if err != nil {
		return Generation{}, err
	}

	var result struct {
		Reply      string  `json:"reply"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(extractJSON(resp.Text), &result); err != nil {
		// Some models ignore the JSON instruction and answer in prose.
		// Treat the whole completion as the reply with middling confidence.
		a.logger.Warn("generation was not valid JSON, using raw text", "error", err)
		return Generation{Text: resp.Text, Confidence: 0.5, Model: a.modelID}, nil
	}
	if strings.TrimSpace(result.Reply) == "" {
		return Generation{}, ErrEmptyCompletion
	}
	return Generation{
		Text:       strings.TrimSpace(result.Reply),
		Confidence: clamp01(result.Confidence),
		Model:      a.modelID,
	}, nil
}

func (a *Adapter) complete(ctx context.Context, prompt string, maxTokens int32) (LLMResponse, error) {
	resp, err := a.client.Complete(ctx, LLMRequest{
		Model:       a.modelID,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: -1,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCompletion) {
			return LLMResponse{}, err
		}
		return LLMResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return LLMResponse{}, ErrEmptyCompletion
	}
	return resp, nil
}

// extractJSON pulls the first {...} object out of a completion that may
// carry extra prose around it.
func extractJSON(text string) []byte {
	content := strings.TrimSpace(text)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return []byte(content)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
