package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("llm provider not configured")

// DraftRequest is one reply-drafting call
type DraftRequest struct {
	SystemPrompt string
	UserMessage  string
	// Alternatives is the number of candidates wanted, 1 to 5
	Alternatives int
	// User identifies the requesting agent to the API provider
	User string
}

// LLMProvider drafts candidate replies
type LLMProvider interface {
	Draft(ctx context.Context, req DraftRequest) ([]string, error)
	GetProviderName() string
}

// ProviderConfig untuk create provider
type ProviderConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint (OpenAI-compatible gateways, tests)
	BaseURL string

	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider returns an OpenAI-compatible provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", ErrNotConfigured)
	}
	return NewOpenAIProvider(cfg), nil
}
