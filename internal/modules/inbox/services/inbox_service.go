package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/phone"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/webhook"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	entityConversation = "conversation"
	eventTimeout       = 10 * time.Second
)

// InboxService owns conversation state: it folds webhook events into conversations
// and applies agent commands. Every read-modify-write of a conversation runs under
// its lock, so concurrent webhooks and commands never overwrite each other.
// The locks are per process; run a single instance per database.
type InboxService struct {
	conversations repositories.ConversationRepo
	audit         *audit.Service
	locks         *conversationLocks
	now           func() time.Time
}

// NewInboxService creates the service. auditSvc may be nil to skip activity logging.
func NewInboxService(conversations repositories.ConversationRepo, auditSvc *audit.Service) *InboxService {
	return &InboxService{
		conversations: conversations,
		audit:         auditSvc,
		locks:         newConversationLocks(),
		now:           time.Now,
	}
}

// CreateConversationRequest is the input of Create
type CreateConversationRequest struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// HandleEvent is a webhook.Hub subscriber
func (s *InboxService) HandleEvent(evt webhook.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch evt.Kind {
	case webhook.KindMessage:
		if err := s.ingestMessage(ctx, evt); err != nil {
			log.Error().Err(err).Str("message_id", evt.Message.MessageIDValue()).Msg("❌ Failed to ingest message")
		}
	case webhook.KindStatus:
		log.Debug().
			Str("message_id", evt.Status.MessageID).
			Str("status", evt.Status.Status).
			Str("recipient", evt.Status.RecipientID).
			Msg("📬 Delivery status update")
	}
}

func (s *InboxService) ingestMessage(ctx context.Context, evt webhook.Event) error {
	msg := evt.Message
	if msg == nil {
		return nil
	}

	// Outgoing messages belong to the customer they were sent to
	counterpart := msg.FromValue()
	if msg.FromMe() && msg.To != nil {
		counterpart = *msg.To
	}
	number := phone.FromJID(counterpart)
	if !phone.IsValid(number) {
		log.Warn().Str("from", counterpart).Msg("⚠️ Ignoring message without a valid sender number")
		return nil
	}

	at := msg.SentAt()
	if at.IsZero() {
		at = evt.ReceivedAt
	}

	unlockPhone := s.locks.byPhone(number)
	defer unlockPhone()

	conv, err := s.conversations.GetByPhone(ctx, number)
	created := false
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		conv = s.newConversation(number, phone.FormatForDisplay(number), "")
		created = true
	case err != nil:
		return err
	default:
		// Agent commands lock by id only; re-read once we hold it
		unlockID := s.locks.byID(conv.ID)
		defer unlockID()
		if conv, err = s.conversations.GetByID(ctx, conv.ID); err != nil {
			return err
		}
	}

	conv = conv.ReceivingMessage(msg.TextValue(), at, msg.FromMe())
	if msg.AIReply() && conv.HandlerKind != models.HandlerAI {
		conv = conv.AssigningHandler(models.AIUser, at)
	}

	if created {
		if err := s.conversations.Create(ctx, conv); err != nil {
			return err
		}
		metrics.ConversationsCreated.Inc()
		log.Info().Str("conversation_id", conv.ID).Str("phone", number).Msg("💬 New conversation")
		s.logActivity(ctx, audit.SystemActor, "conversation.create", conv.ID, nil, conv.PhoneNumber)
		return nil
	}
	return s.conversations.Save(ctx, conv)
}

func (s *InboxService) newConversation(number, name, image string) models.Conversation {
	return models.Conversation{
		ID:            uuid.NewString(),
		Name:          name,
		PhoneNumber:   number,
		ProfileImage:  image,
		LastMessageAt: s.now(),
		HandlerKind:   models.HandlerHuman,
		Labels:        []models.Label{},
		SeenBy:        []models.SeenByRecord{},
		InternalNotes: []models.InternalNote{},
	}
}

func (s *InboxService) List(ctx context.Context, filter repositories.ConversationFilter) ([]models.Conversation, error) {
	return s.conversations.List(ctx, filter)
}

func (s *InboxService) Get(ctx context.Context, id string) (models.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

// Create opens a conversation manually; an existing number returns the existing thread
func (s *InboxService) Create(ctx context.Context, actor models.User, req CreateConversationRequest) (models.Conversation, bool, error) {
	if !phone.IsValid(req.PhoneNumber) {
		return models.Conversation{}, false, fmt.Errorf("%w: %q", ErrInvalidPhone, req.PhoneNumber)
	}
	number := phone.Normalize(req.PhoneNumber)

	unlock := s.locks.byPhone(number)
	defer unlock()

	existing, err := s.conversations.GetByPhone(ctx, number)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.Conversation{}, false, err
	}

	name := req.Name
	if name == "" {
		name = phone.FormatForDisplay(number)
	}
	conv := s.newConversation(number, name, req.ProfileImage)
	if err := s.conversations.Create(ctx, conv); err != nil {
		return models.Conversation{}, false, err
	}
	metrics.ConversationsCreated.Inc()
	s.logActivity(ctx, toActor(actor), "conversation.create", conv.ID, nil, conv.PhoneNumber)
	return conv, true, nil
}

func (s *InboxService) SetLabels(ctx context.Context, actor models.User, id string, labels []models.Label) (models.Conversation, error) {
	return s.mutate(ctx, actor, id, "labels.set", labelsOf, func(c models.Conversation) models.Conversation {
		return c.UpdatingLabels(labels)
	})
}

func (s *InboxService) AddLabels(ctx context.Context, actor models.User, id string, labels []models.Label) (models.Conversation, error) {
	return s.mutate(ctx, actor, id, "labels.add", labelsOf, func(c models.Conversation) models.Conversation {
		return c.AddingLabels(labels...)
	})
}

func (s *InboxService) RemoveLabel(ctx context.Context, actor models.User, id string, label models.Label) (models.Conversation, error) {
	return s.mutate(ctx, actor, id, "labels.remove", labelsOf, func(c models.Conversation) models.Conversation {
		return c.RemovingLabel(label)
	})
}

func (s *InboxService) ClearLabels(ctx context.Context, actor models.User, id string) (models.Conversation, error) {
	return s.mutate(ctx, actor, id, "labels.clear", labelsOf, func(c models.Conversation) models.Conversation {
		return c.ClearingLabels()
	})
}

// SetStatus tags the conversation. Setting a status counts as evaluating it.
func (s *InboxService) SetStatus(ctx context.Context, actor models.User, id string, status models.Status) (models.Conversation, error) {
	now := s.now()
	return s.mutate(ctx, actor, id, "status.set", statusOf, func(c models.Conversation) models.Conversation {
		return c.UpdatingStatus(status).With(func(n *models.Conversation) {
			n.EvaluatedAt = &now
			if status == models.StatusResolved {
				n.ResolvedAt = &now
			}
		})
	})
}

// MarkSeen records that user opened the conversation and clears the unread count
func (s *InboxService) MarkSeen(ctx context.Context, user models.User, id string) (models.Conversation, error) {
	if user.ID == "" {
		return models.Conversation{}, ErrInvalidUser
	}
	return s.mutate(ctx, user, id, "conversation.seen", unreadOf, func(c models.Conversation) models.Conversation {
		return c.AddingSeenByRecord(models.SeenByRecord{User: user, SeenAt: s.now()}).MarkingRead()
	})
}

// Assign hands the conversation to handler; models.AIUser hands it to the assistant
func (s *InboxService) Assign(ctx context.Context, actor models.User, id string, handler models.User) (models.Conversation, error) {
	if handler.ID == "" {
		return models.Conversation{}, ErrInvalidUser
	}
	return s.mutate(ctx, actor, id, "conversation.assign", handlerOf, func(c models.Conversation) models.Conversation {
		return c.AssigningHandler(handler, s.now())
	})
}

// Activity returns the audit trail of a conversation, newest first
func (s *InboxService) Activity(ctx context.Context, id string, limit int) ([]audit.AuditLog, error) {
	if _, err := s.conversations.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []audit.AuditLog{}, nil
	}
	return s.audit.GetEntityHistory(ctx, entityConversation, id, limit)
}

func (s *InboxService) mutate(
	ctx context.Context,
	actor models.User,
	id, action string,
	field func(models.Conversation) interface{},
	change func(models.Conversation) models.Conversation,
) (models.Conversation, error) {
	unlock := s.locks.byID(id)
	defer unlock()

	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return models.Conversation{}, err
	}

	next := change(conv)
	if err := s.conversations.Save(ctx, next); err != nil {
		return models.Conversation{}, err
	}

	s.logActivity(ctx, toActor(actor), action, id, field(conv), field(next))
	return next, nil
}

// notesChanged records a new note list on the conversation, which resets its evaluation
func (s *InboxService) notesChanged(ctx context.Context, id string, notes []models.InternalNote) error {
	unlock := s.locks.byID(id)
	defer unlock()

	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.conversations.Save(ctx, conv.UpdatingInternalNotes(notes))
}

func (s *InboxService) logActivity(ctx context.Context, actor audit.Actor, action, id string, oldValue, newValue interface{}) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogChange(ctx, actor, action, entityConversation, id, oldValue, newValue); err != nil {
		log.Warn().Err(err).Str("action", action).Str("conversation_id", id).Msg("⚠️ Failed to write activity log")
	}
}

func toActor(u models.User) audit.Actor {
	if u.ID == "" {
		return audit.SystemActor
	}
	return audit.Actor{ID: u.ID, Name: u.Name}
}

func labelsOf(c models.Conversation) interface{}  { return c.Labels }
func statusOf(c models.Conversation) interface{}  { return c.Status }
func unreadOf(c models.Conversation) interface{}  { return c.UnreadCount }
func handlerOf(c models.Conversation) interface{} { return c.HandledBy }
