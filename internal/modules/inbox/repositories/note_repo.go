package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"gorm.io/gorm"
)

// NoteRepo stores internal notes keyed by conversation id
type NoteRepo interface {
	FetchNotes(ctx context.Context, conversationID string) ([]models.InternalNote, error)
	AddNote(ctx context.Context, note models.InternalNote) error
	UpdateNote(ctx context.Context, note models.InternalNote) error
	DeleteNote(ctx context.Context, conversationID, noteID string) error
}

type noteRepo struct {
	db *gorm.DB
}

func NewNoteRepo(db *gorm.DB) NoteRepo {
	return &noteRepo{db: db}
}

func (r *noteRepo) FetchNotes(ctx context.Context, conversationID string) ([]models.InternalNote, error) {
	var recs []NoteRecord
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}

	notes := make([]models.InternalNote, 0, len(recs))
	for i := range recs {
		notes = append(notes, recs[i].toModel())
	}
	return notes, nil
}

func (r *noteRepo) AddNote(ctx context.Context, note models.InternalNote) error {
	if err := r.db.WithContext(ctx).Create(toNoteRecord(note)).Error; err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}
	return nil
}

// UpdateNote replaces the message and timestamp; author and conversation never change
func (r *noteRepo) UpdateNote(ctx context.Context, note models.InternalNote) error {
	res := r.db.WithContext(ctx).Model(&NoteRecord{}).
		Where("id = ? AND conversation_id = ?", note.ID, note.ConversationID).
		Updates(map[string]interface{}{
			"message":    note.Message,
			"created_at": note.CreatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepo) DeleteNote(ctx context.Context, conversationID, noteID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND conversation_id = ?", noteID, conversationID).
		Delete(&NoteRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// memoryNoteRepo keeps notes in process. Each conversation has its own lock,
// so calls for different conversations never wait on each other.
type memoryNoteRepo struct {
	mu      sync.Mutex
	buckets map[string]*noteBucket
	latency time.Duration
}

type noteBucket struct {
	mu    sync.Mutex
	notes []models.InternalNote
}

// NewMemoryNoteRepo returns an in-memory store; latency simulates a slow backend
func NewMemoryNoteRepo(latency time.Duration) NoteRepo {
	return &memoryNoteRepo{
		buckets: make(map[string]*noteBucket),
		latency: latency,
	}
}

func (r *memoryNoteRepo) bucket(conversationID string) *noteBucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[conversationID]
	if !ok {
		b = &noteBucket{}
		r.buckets[conversationID] = b
	}
	return b
}

func (r *memoryNoteRepo) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(r.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *memoryNoteRepo) FetchNotes(ctx context.Context, conversationID string) ([]models.InternalNote, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	b := r.bucket(conversationID)
	b.mu.Lock()
	defer b.mu.Unlock()

	notes := append([]models.InternalNote(nil), b.notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes, nil
}

func (r *memoryNoteRepo) AddNote(ctx context.Context, note models.InternalNote) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	b := r.bucket(note.ConversationID)
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.notes {
		if n.ID == note.ID {
			return fmt.Errorf("note %s already exists", note.ID)
		}
	}
	b.notes = append(b.notes, note)
	return nil
}

func (r *memoryNoteRepo) UpdateNote(ctx context.Context, note models.InternalNote) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	b := r.bucket(note.ConversationID)
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.notes {
		if n.ID == note.ID {
			b.notes[i] = note
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryNoteRepo) DeleteNote(ctx context.Context, conversationID, noteID string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	b := r.bucket(conversationID)
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.notes {
		if n.ID == noteID {
			b.notes = append(b.notes[:i], b.notes[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type unimplementedNoteRepo struct{}

// NewUnimplementedNoteRepo is a placeholder backend: every call fails with ErrNotImplemented
func NewUnimplementedNoteRepo() NoteRepo {
	return unimplementedNoteRepo{}
}

func (unimplementedNoteRepo) FetchNotes(context.Context, string) ([]models.InternalNote, error) {
	return nil, ErrNotImplemented
}

func (unimplementedNoteRepo) AddNote(context.Context, models.InternalNote) error {
	return ErrNotImplemented
}

func (unimplementedNoteRepo) UpdateNote(context.Context, models.InternalNote) error {
	return ErrNotImplemented
}

func (unimplementedNoteRepo) DeleteNote(context.Context, string, string) error {
	return ErrNotImplemented
}
