package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service wraps LLM provider untuk dependency injection.
// A Service without provider answers every call with ErrNotConfigured.
type Service struct {
	provider LLMProvider
}

// NewService builds the provider from cfg; a missing key leaves the service disabled
func NewService(cfg *ProviderConfig) *Service {
	provider, err := NewProvider(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ LLM disabled, reply suggestions will not work")
		return &Service{}
	}

	log.Info().Str("provider", provider.GetProviderName()).Str("model", cfg.Model).Msg("🤖 LLM provider ready")
	return &Service{provider: provider}
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Draft returns at least one candidate reply
func (s *Service) Draft(ctx context.Context, req DraftRequest) ([]string, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	drafts, err := s.provider.Draft(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%s returned no draft", s.provider.GetProviderName())
	}
	return drafts, nil
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}
