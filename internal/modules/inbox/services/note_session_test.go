package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
)

var errStoreDown = errors.New("store down")

// flakyNoteRepo wraps a memory repo; writes fail while failing is set and
// block until release is closed when gate is set
type flakyNoteRepo struct {
	repositories.NoteRepo

	mu      sync.Mutex
	failing bool
	gate    chan struct{}
}

func newFlakyNoteRepo() *flakyNoteRepo {
	return &flakyNoteRepo{NoteRepo: repositories.NewMemoryNoteRepo(0)}
}

func (r *flakyNoteRepo) setFailing(v bool) {
	r.mu.Lock()
	r.failing = v
	r.mu.Unlock()
}

func (r *flakyNoteRepo) before() error {
	r.mu.Lock()
	gate, failing := r.gate, r.failing
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if failing {
		return errStoreDown
	}
	return nil
}

func (r *flakyNoteRepo) AddNote(ctx context.Context, n models.InternalNote) error {
	if err := r.before(); err != nil {
		return err
	}
	return r.NoteRepo.AddNote(ctx, n)
}

func (r *flakyNoteRepo) UpdateNote(ctx context.Context, n models.InternalNote) error {
	if err := r.before(); err != nil {
		return err
	}
	return r.NoteRepo.UpdateNote(ctx, n)
}

func (r *flakyNoteRepo) DeleteNote(ctx context.Context, convID, noteID string) error {
	if err := r.before(); err != nil {
		return err
	}
	return r.NoteRepo.DeleteNote(ctx, convID, noteID)
}

func waitTask(t *testing.T, task *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := task.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("task did not finish in time")
	}
	return err
}

var agent = models.User{ID: "u1", Name: "Sari"}

func TestNoteSession_SendBlankIsNoOp(t *testing.T) {
	s := NewNoteSession("c1", agent, newFlakyNoteRepo())

	for _, msg := range []string{"", "   ", "\n\t"} {
		task := s.Send(msg)
		select {
		case <-task.Done():
		default:
			t.Fatalf("Send(%q) task not completed", msg)
		}
		if err := task.Err(); err != nil {
			t.Fatalf("Send(%q) error = %v", msg, err)
		}
	}
	if got := len(s.Notes()); got != 0 {
		t.Fatalf("Notes() has %d notes, want 0", got)
	}
}

func TestNoteSession_SendPersists(t *testing.T) {
	repo := newFlakyNoteRepo()
	s := NewNoteSession("c1", agent, repo)

	if err := waitTask(t, s.Send("  cek nomor seri  ")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	notes := s.Notes()
	if len(notes) != 1 || notes[0].Message != "cek nomor seri" || notes[0].Author != agent {
		t.Fatalf("Notes() = %+v", notes)
	}
	stored, _ := repo.FetchNotes(context.Background(), "c1")
	if len(stored) != 1 || stored[0].ID != notes[0].ID {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestNoteSession_SendIsOptimistic(t *testing.T) {
	repo := newFlakyNoteRepo()
	repo.gate = make(chan struct{})
	s := NewNoteSession("c1", agent, repo)

	task := s.Send("halo")
	if got := len(s.Notes()); got != 1 {
		t.Fatalf("Notes() before persistence = %d, want 1", got)
	}
	close(repo.gate)
	if err := waitTask(t, task); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestNoteSession_SendRollsBack(t *testing.T) {
	repo := newFlakyNoteRepo()
	repo.setFailing(true)
	s := NewNoteSession("c1", agent, repo)

	err := waitTask(t, s.Send("halo"))
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("Send() error = %v, want errStoreDown", err)
	}
	if got := len(s.Notes()); got != 0 {
		t.Fatalf("Notes() after rollback = %d, want 0", got)
	}
	if !errors.Is(s.LastError(), errStoreDown) {
		t.Fatalf("LastError() = %v", s.LastError())
	}
}

func TestNoteSession_Edit(t *testing.T) {
	repo := newFlakyNoteRepo()
	s := NewNoteSession("c1", agent, repo)
	waitTask(t, s.Send("versi satu"))
	original := s.Notes()[0]

	s.StartEditing(original)
	if target, ok := s.EditingTarget(); !ok || target.ID != original.ID {
		t.Fatalf("EditingTarget() = %+v, %v", target, ok)
	}

	if err := waitTask(t, s.Send("versi dua")); err != nil {
		t.Fatalf("Send(edit) error = %v", err)
	}
	if _, ok := s.EditingTarget(); ok {
		t.Fatal("edit target not cleared after commit")
	}
	notes := s.Notes()
	if len(notes) != 1 || notes[0].ID != original.ID || notes[0].Message != "versi dua" {
		t.Fatalf("Notes() = %+v", notes)
	}
	if notes[0].CreatedAt.Before(original.CreatedAt) {
		t.Fatalf("edit did not refresh timestamp")
	}
}

func TestNoteSession_EditRollsBack(t *testing.T) {
	repo := newFlakyNoteRepo()
	s := NewNoteSession("c1", agent, repo)
	waitTask(t, s.Send("versi satu"))
	original := s.Notes()[0]

	repo.setFailing(true)
	s.StartEditing(original)
	if err := waitTask(t, s.Send("versi dua")); !errors.Is(err, errStoreDown) {
		t.Fatalf("Send(edit) error = %v", err)
	}
	notes := s.Notes()
	if len(notes) != 1 || !notes[0].Equal(original) {
		t.Fatalf("Notes() = %+v, want original restored", notes)
	}
}

func TestNoteSession_CancelEditing(t *testing.T) {
	s := NewNoteSession("c1", agent, newFlakyNoteRepo())
	s.StartEditing(models.InternalNote{ID: "a"})
	s.StartEditing(models.InternalNote{ID: "b"})
	if target, _ := s.EditingTarget(); target.ID != "b" {
		t.Fatalf("EditingTarget() = %s, want b", target.ID)
	}
	s.CancelEditing()
	if _, ok := s.EditingTarget(); ok {
		t.Fatal("EditingTarget() still set after CancelEditing")
	}
}

func TestNoteSession_DeleteClearsEditTarget(t *testing.T) {
	s := NewNoteSession("c1", agent, newFlakyNoteRepo())
	waitTask(t, s.Send("hapus saya"))
	note := s.Notes()[0]

	s.StartEditing(note)
	task := s.Delete(note)
	if _, ok := s.EditingTarget(); ok {
		t.Fatal("Delete() kept the edit target")
	}
	if err := waitTask(t, task); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := len(s.Notes()); got != 0 {
		t.Fatalf("Notes() = %d, want 0", got)
	}
}

func TestNoteSession_DeleteRollsBackInOrder(t *testing.T) {
	repo := newFlakyNoteRepo()
	s := NewNoteSession("c1", agent, repo)
	for _, msg := range []string{"satu", "dua", "tiga"} {
		waitTask(t, s.Send(msg))
		time.Sleep(2 * time.Millisecond)
	}
	middle := s.Notes()[1]

	repo.setFailing(true)
	if err := waitTask(t, s.Delete(middle)); !errors.Is(err, errStoreDown) {
		t.Fatalf("Delete() error = %v", err)
	}

	notes := s.Notes()
	if len(notes) != 3 {
		t.Fatalf("Notes() = %d, want 3", len(notes))
	}
	for i, want := range []string{"satu", "dua", "tiga"} {
		if notes[i].Message != want {
			t.Fatalf("Notes()[%d] = %q, want %q", i, notes[i].Message, want)
		}
	}
}

func TestNoteSession_DeleteFailureOfHiddenNote(t *testing.T) {
	repo := newFlakyNoteRepo()
	s := NewNoteSession("c1", agent, repo)
	waitTask(t, s.Send("terlihat"))

	hidden := models.InternalNote{ID: "elsewhere", ConversationID: "c1", Message: "tidak terlihat", CreatedAt: time.Now()}
	repo.setFailing(true)
	if err := waitTask(t, s.Delete(hidden)); !errors.Is(err, errStoreDown) {
		t.Fatalf("Delete() error = %v", err)
	}

	notes := s.Notes()
	if len(notes) != 1 || notes[0].Message != "terlihat" {
		t.Fatalf("Notes() = %+v, want only the visible note", notes)
	}
	if !errors.Is(s.LastError(), errStoreDown) {
		t.Fatalf("LastError() = %v", s.LastError())
	}
}

func TestNoteSession_Load(t *testing.T) {
	repo := newFlakyNoteRepo()
	ctx := context.Background()
	now := time.Now()
	repo.NoteRepo.AddNote(ctx, models.InternalNote{ID: "n2", ConversationID: "c1", Message: "b", CreatedAt: now.Add(time.Second)})
	repo.NoteRepo.AddNote(ctx, models.InternalNote{ID: "n1", ConversationID: "c1", Message: "a", CreatedAt: now})

	s := NewNoteSession("c1", agent, repo)
	if err := waitTask(t, s.Load()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	notes := s.Notes()
	if len(notes) != 2 || notes[0].ID != "n1" {
		t.Fatalf("Notes() = %+v", notes)
	}
}

func TestNoteSession_LoadFailure(t *testing.T) {
	s := NewNoteSession("c1", agent, repositories.NewUnimplementedNoteRepo())
	if err := waitTask(t, s.Load()); !errors.Is(err, repositories.ErrNotImplemented) {
		t.Fatalf("Load() error = %v", err)
	}
	if !errors.Is(s.LastError(), repositories.ErrNotImplemented) {
		t.Fatalf("LastError() = %v", s.LastError())
	}
}
