package services

import (
	"context"
	"strings"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/metrics"
	"github.com/rs/zerolog/log"
)

const entityNote = "note"

// NoteService serves the HTTP API. Each call runs one NoteSession to completion,
// so a failed write leaves no trace in the store.
// Any change to a conversation's notes means it needs evaluating again.
type NoteService struct {
	notes repositories.NoteRepo
	inbox *InboxService
	audit *audit.Service
}

func NewNoteService(notes repositories.NoteRepo, inbox *InboxService, auditSvc *audit.Service) *NoteService {
	return &NoteService{
		notes: notes,
		inbox: inbox,
		audit: auditSvc,
	}
}

// Session opens an optimistic working copy over the same store
func (s *NoteService) Session(conversationID string, author models.User) *NoteSession {
	return NewNoteSession(conversationID, author, s.notes)
}

func (s *NoteService) List(ctx context.Context, conversationID string) ([]models.InternalNote, error) {
	if _, err := s.inbox.Get(ctx, conversationID); err != nil {
		return nil, err
	}
	notes, err := s.notes.FetchNotes(ctx, conversationID)
	metrics.RecordNoteOperation("load", err)
	return notes, err
}

func (s *NoteService) Create(ctx context.Context, conversationID string, author models.User, message string) (models.InternalNote, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.InternalNote{}, ErrEmptyMessage
	}
	if author.ID == "" {
		return models.InternalNote{}, ErrInvalidUser
	}
	if _, err := s.inbox.Get(ctx, conversationID); err != nil {
		return models.InternalNote{}, err
	}

	session := s.Session(conversationID, author)
	if err := session.Send(message).Wait(ctx); err != nil {
		return models.InternalNote{}, err
	}
	notes := session.Notes()
	note := notes[len(notes)-1]

	s.resetEvaluation(ctx, conversationID)
	s.logActivity(ctx, author, "note.create", note.ID, nil, note.Message)
	return note, nil
}

// Update replaces the message of a note and refreshes its timestamp
func (s *NoteService) Update(ctx context.Context, conversationID, noteID string, actor models.User, message string) (models.InternalNote, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.InternalNote{}, ErrEmptyMessage
	}

	session, current, err := s.open(ctx, conversationID, noteID, actor)
	if err != nil {
		return models.InternalNote{}, err
	}

	session.StartEditing(current)
	if err := session.Send(message).Wait(ctx); err != nil {
		return models.InternalNote{}, err
	}
	updated, _ := findNote(session.Notes(), noteID)

	s.resetEvaluation(ctx, conversationID)
	s.logActivity(ctx, actor, "note.update", noteID, current.Message, updated.Message)
	return updated, nil
}

func (s *NoteService) Delete(ctx context.Context, conversationID, noteID string, actor models.User) error {
	session, current, err := s.open(ctx, conversationID, noteID, actor)
	if err != nil {
		return err
	}

	if err := session.Delete(current).Wait(ctx); err != nil {
		return err
	}

	s.resetEvaluation(ctx, conversationID)
	s.logActivity(ctx, actor, "note.delete", noteID, current.Message, nil)
	return nil
}

// open loads a session for the conversation and looks up noteID in it
func (s *NoteService) open(ctx context.Context, conversationID, noteID string, actor models.User) (*NoteSession, models.InternalNote, error) {
	if _, err := s.inbox.Get(ctx, conversationID); err != nil {
		return nil, models.InternalNote{}, err
	}

	session := s.Session(conversationID, actor)
	if err := session.Load().Wait(ctx); err != nil {
		return nil, models.InternalNote{}, err
	}
	note, ok := findNote(session.Notes(), noteID)
	if !ok {
		return nil, models.InternalNote{}, repositories.ErrNotFound
	}
	return session, note, nil
}

func (s *NoteService) resetEvaluation(ctx context.Context, conversationID string) {
	notes, err := s.notes.FetchNotes(ctx, conversationID)
	if err == nil {
		err = s.inbox.notesChanged(ctx, conversationID, notes)
	}
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("⚠️ Notes saved but evaluation flag not reset")
	}
}

func (s *NoteService) logActivity(ctx context.Context, actor models.User, action, noteID string, oldValue, newValue interface{}) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogChange(ctx, toActor(actor), action, entityNote, noteID, oldValue, newValue); err != nil {
		log.Warn().Err(err).Str("action", action).Str("note_id", noteID).Msg("⚠️ Failed to write activity log")
	}
}

func findNote(notes []models.InternalNote, id string) (models.InternalNote, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return models.InternalNote{}, false
}
