package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NoteSession is the working copy of one conversation's notes as an agent sees it.
// Mutations apply locally first and persist in the background; a failed write is
// rolled back and reported through LastError. Writes are not queued, the last one
// to complete wins.
type NoteSession struct {
	conversationID string
	author         models.User
	repo           repositories.NoteRepo

	mu      sync.Mutex
	notes   []models.InternalNote
	editing *models.InternalNote
	lastErr error
}

func NewNoteSession(conversationID string, author models.User, repo repositories.NoteRepo) *NoteSession {
	return &NoteSession{
		conversationID: conversationID,
		author:         author,
		repo:           repo,
	}
}

// Notes returns a snapshot of the visible list
func (s *NoteSession) Notes() []models.InternalNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.InternalNote(nil), s.notes...)
}

// LastError is the most recent user-visible failure, nil after a success
func (s *NoteSession) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// EditingTarget returns the note being edited, if any
func (s *NoteSession) EditingTarget() (models.InternalNote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return models.InternalNote{}, false
	}
	return *s.editing, true
}

// StartEditing replaces any previous edit target
func (s *NoteSession) StartEditing(note models.InternalNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = &note
}

func (s *NoteSession) CancelEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
}

// Send creates a note, or commits the edit when one is in progress.
// Blank messages are ignored.
func (s *NoteSession) Send(message string) *Task {
	message = strings.TrimSpace(message)
	if message == "" {
		return completedTask()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing != nil {
		previous := *s.editing
		updated := previous.Updating(message)
		s.editing = nil
		s.replace(previous.ID, updated)

		return s.run("update", func(ctx context.Context) error {
			return s.repo.UpdateNote(ctx, updated)
		}, func() {
			s.replace(updated.ID, previous)
		})
	}

	note := models.InternalNote{
		ID:             uuid.NewString(),
		ConversationID: s.conversationID,
		Author:         s.author,
		Message:        message,
		CreatedAt:      time.Now(),
	}
	s.notes = append(s.notes, note)

	return s.run("create", func(ctx context.Context) error {
		return s.repo.AddNote(ctx, note)
	}, func() {
		s.remove(note.ID)
	})
}

// Delete removes a note; on failure it comes back in timestamp order.
// A note that was not visible is deleted from the store only and never reappears.
func (s *NoteSession) Delete(note models.InternalNote) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing != nil && s.editing.ID == note.ID {
		s.editing = nil
	}
	removed, visible := s.remove(note.ID)

	return s.run("delete", func(ctx context.Context) error {
		return s.repo.DeleteNote(ctx, s.conversationID, note.ID)
	}, func() {
		if !visible {
			return
		}
		if _, exists := s.find(removed.ID); exists {
			return
		}
		s.notes = append(s.notes, removed)
		sort.SliceStable(s.notes, func(i, j int) bool {
			return s.notes[i].CreatedAt.Before(s.notes[j].CreatedAt)
		})
	})
}

// Load replaces the visible list with what the store holds
func (s *NoteSession) Load() *Task {
	task := newTask()
	go func() {
		notes, err := s.repo.FetchNotes(context.Background(), s.conversationID)
		metrics.RecordNoteOperation("load", err)

		s.mu.Lock()
		if err != nil {
			log.Error().Err(err).Str("conversation_id", s.conversationID).Msg("❌ Failed to load notes")
			s.lastErr = err
		} else {
			s.notes = notes
			s.lastErr = nil
		}
		s.mu.Unlock()

		task.finish(err)
	}()
	return task
}

// run persists in the background. Called with s.mu held; rollback runs with s.mu held.
// The call is not cancellable once started.
func (s *NoteSession) run(op string, persist func(context.Context) error, rollback func()) *Task {
	task := newTask()
	go func() {
		err := persist(context.Background())
		metrics.RecordNoteOperation(op, err)

		s.mu.Lock()
		if err != nil {
			log.Error().Err(err).Str("conversation_id", s.conversationID).Str("operation", op).Msg("❌ Note persistence failed, rolling back")
			rollback()
			s.lastErr = err
		} else {
			s.lastErr = nil
		}
		s.mu.Unlock()

		task.finish(err)
	}()
	return task
}

func (s *NoteSession) find(id string) (int, bool) {
	for i, n := range s.notes {
		if n.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *NoteSession) replace(id string, note models.InternalNote) {
	if i, ok := s.find(id); ok {
		next := append([]models.InternalNote(nil), s.notes...)
		next[i] = note
		s.notes = next
	}
}

func (s *NoteSession) remove(id string) (models.InternalNote, bool) {
	i, ok := s.find(id)
	if !ok {
		return models.InternalNote{}, false
	}
	removed := s.notes[i]
	next := make([]models.InternalNote, 0, len(s.notes)-1)
	next = append(next, s.notes[:i]...)
	next = append(next, s.notes[i+1:]...)
	s.notes = next
	return removed, true
}
