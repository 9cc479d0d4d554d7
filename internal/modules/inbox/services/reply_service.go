package services

import (
	"context"
	"fmt"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
)

// ReplySuggestion is a drafted answer the agent can edit before sending
type ReplySuggestion struct {
	ConversationID string   `json:"conversation_id"`
	Suggestion     string   `json:"suggestion"`
	Alternatives   []string `json:"alternatives,omitempty"`
	Provider       string   `json:"provider"`
}

// SuggestOptions tunes one Suggest call. Zero values ask for a single draft.
type SuggestOptions struct {
	Alternatives int
	Agent        models.User
}

// ReplyService drafts replies from the conversation context
type ReplyService struct {
	conversations repositories.ConversationRepo
	llm           *llm.Service
}

func NewReplyService(conversations repositories.ConversationRepo, llmSvc *llm.Service) *ReplyService {
	return &ReplyService{conversations: conversations, llm: llmSvc}
}

func (s *ReplyService) Suggest(ctx context.Context, conversationID string, opts SuggestOptions) (ReplySuggestion, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return ReplySuggestion{}, err
	}
	if conv.LastMessage == "" {
		return ReplySuggestion{}, fmt.Errorf("%w: conversation has no messages yet", ErrEmptyMessage)
	}

	rc := &llm.ReplyContext{
		CustomerName: conv.Name,
		LastMessage:  conv.LastMessage,
		Status:       string(conv.Status),
	}
	for _, l := range conv.Labels {
		rc.Labels = append(rc.Labels, l.DisplayName())
	}
	for _, n := range conv.InternalNotes {
		rc.Notes = append(rc.Notes, n.Message)
	}

	drafts, err := s.llm.Draft(ctx, llm.DraftRequest{
		SystemPrompt: llm.BuildReplySystemPrompt(rc),
		UserMessage:  llm.BuildReplyUserMessage(rc),
		Alternatives: opts.Alternatives,
		User:         opts.Agent.ID,
	})
	if err != nil {
		return ReplySuggestion{}, fmt.Errorf("failed to draft reply: %w", err)
	}

	return ReplySuggestion{
		ConversationID: conv.ID,
		Suggestion:     drafts[0],
		Alternatives:   drafts[1:],
		Provider:       s.llm.GetProviderName(),
	}, nil
}
