package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
	defaultMaxTokens   = 300
	maxAlternatives    = 5
)

// OpenAIProvider talks to the OpenAI chat API or any gateway speaking it
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIProvider(cfg *ProviderConfig) *OpenAIProvider {
	p := &OpenAIProvider{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.temperature == 0 {
		p.temperature = defaultTemperature
	}
	if p.maxTokens == 0 {
		p.maxTokens = defaultMaxTokens
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	p.client = openai.NewClientWithConfig(clientCfg)
	return p
}

func (p *OpenAIProvider) GetProviderName() string {
	return "OpenAI"
}

// Draft asks for req.Alternatives candidate replies in one completion call.
// Blank candidates are dropped; a response without any usable text is an error.
func (p *OpenAIProvider) Draft(ctx context.Context, req DraftRequest) ([]string, error) {
	n := clampAlternatives(req.Alternatives)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		N:           n,
		User:        req.User,
	})
	if err != nil {
		return nil, fmt.Errorf("openai error: %w", err)
	}

	drafts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			drafts = append(drafts, text)
		}
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}
	return drafts, nil
}

func clampAlternatives(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxAlternatives {
		return maxAlternatives
	}
	return n
}
