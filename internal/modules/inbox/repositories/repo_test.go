package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/database"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	return db.GORM
}

func testConversation(id, phone string) models.Conversation {
	return models.Conversation{
		ID:            id,
		Name:          "Pelanggan " + id,
		PhoneNumber:   phone,
		LastMessageAt: time.Now().UTC().Truncate(time.Second),
		HandlerKind:   models.HandlerHuman,
		Labels:        []models.Label{models.LabelService},
	}
}

func TestConversationRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))

	c := testConversation("c1", "6281234567890")
	agent := models.User{ID: "u1", Name: "Sari"}
	c = c.AssigningHandler(agent, time.Now().UTC()).AddingSeenByRecord(models.SeenByRecord{User: agent, SeenAt: time.Now().UTC()})

	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PhoneNumber != c.PhoneNumber || !got.HasLabel(models.LabelService) {
		t.Fatalf("GetByID() = %+v", got)
	}
	if got.HandledBy == nil || got.HandledBy.Name != "Sari" {
		t.Fatalf("HandledBy = %+v, want Sari", got.HandledBy)
	}
	if len(got.SeenBy) != 1 || got.SeenBy[0].User.ID != "u1" {
		t.Fatalf("SeenBy = %+v", got.SeenBy)
	}

	byPhone, err := repo.GetByPhone(ctx, "6281234567890")
	if err != nil || byPhone.ID != "c1" {
		t.Fatalf("GetByPhone() = %v, %v", byPhone.ID, err)
	}
}

func TestConversationRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Save(ctx, testConversation("missing", "628111")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save() error = %v, want ErrNotFound", err)
	}
}

func TestConversationRepo_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))

	c := testConversation("c1", "6281234567890")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated := c.UpdatingLabels([]models.Label{models.LabelPayment}).UpdatingStatus(models.StatusResolved)
	if err := repo.Save(ctx, updated); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != models.StatusResolved || !got.IsEvaluated {
		t.Fatalf("got status %q evaluated %v", got.Status, got.IsEvaluated)
	}
	if got.HasLabel(models.LabelService) || !got.HasLabel(models.LabelPayment) {
		t.Fatalf("labels = %v, want [payment]", got.Labels)
	}
}

func TestConversationRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))

	a := testConversation("a", "62811").AddingLabel(models.LabelWarranty)
	b := testConversation("b", "62822").UpdatingStatus(models.StatusOpen)
	b.Name = "Andi Bengkel"
	b.LastMessageAt = a.LastMessageAt.Add(time.Minute)
	for _, c := range []models.Conversation{a, b} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create(%s) error = %v", c.ID, err)
		}
	}

	open := models.StatusOpen
	tests := []struct {
		name   string
		filter ConversationFilter
		want   []string
	}{
		{"all newest first", ConversationFilter{}, []string{"b", "a"}},
		{"by status", ConversationFilter{Status: &open}, []string{"b"}},
		{"by label", ConversationFilter{Label: models.LabelWarranty}, []string{"a"}},
		{"by search", ConversationFilter{Search: "bengkel"}, []string{"b"}},
		{"limit", ConversationFilter{Limit: 1}, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d conversations, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("List()[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestNoteRepo_Lifecycle(t *testing.T) {
	db := openTestDB(t)

	repos := map[string]NoteRepo{
		"gorm":   NewNoteRepo(db),
		"memory": NewMemoryNoteRepo(0),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			author := models.User{ID: "u1", Name: "Sari"}

			second := models.InternalNote{ID: name + "-n2", ConversationID: "c1", Author: author, Message: "kedua", CreatedAt: base.Add(time.Minute)}
			first := models.InternalNote{ID: name + "-n1", ConversationID: "c1", Author: author, Message: "pertama", CreatedAt: base}
			for _, n := range []models.InternalNote{second, first} {
				if err := repo.AddNote(ctx, n); err != nil {
					t.Fatalf("AddNote(%s) error = %v", n.ID, err)
				}
			}

			notes, err := repo.FetchNotes(ctx, "c1")
			if err != nil {
				t.Fatalf("FetchNotes() error = %v", err)
			}
			if len(notes) != 2 || notes[0].ID != first.ID || notes[1].ID != second.ID {
				t.Fatalf("FetchNotes() = %+v, want ascending by CreatedAt", notes)
			}
			if notes[0].Author.Name != "Sari" {
				t.Fatalf("Author = %+v", notes[0].Author)
			}

			edited := first.Updating("pertama (revisi)")
			if err := repo.UpdateNote(ctx, edited); err != nil {
				t.Fatalf("UpdateNote() error = %v", err)
			}
			if err := repo.DeleteNote(ctx, "c1", second.ID); err != nil {
				t.Fatalf("DeleteNote() error = %v", err)
			}

			notes, err = repo.FetchNotes(ctx, "c1")
			if err != nil {
				t.Fatalf("FetchNotes() error = %v", err)
			}
			if len(notes) != 1 || notes[0].Message != "pertama (revisi)" {
				t.Fatalf("FetchNotes() = %+v", notes)
			}

			if err := repo.DeleteNote(ctx, "c1", second.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("DeleteNote(twice) error = %v, want ErrNotFound", err)
			}
			if err := repo.UpdateNote(ctx, second); !errors.Is(err, ErrNotFound) {
				t.Fatalf("UpdateNote(deleted) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMemoryNoteRepo_ConversationsDoNotBlockEachOther(t *testing.T) {
	repo := NewMemoryNoteRepo(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			convID := string(rune('a' + i))
			note := models.InternalNote{ID: "n", ConversationID: convID, Message: "x", CreatedAt: time.Now()}
			if err := repo.AddNote(ctx, note); err != nil {
				t.Errorf("AddNote(%s) error = %v", convID, err)
			}
		}(i)
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Fatalf("8 conversations took %v, want concurrent progress", elapsed)
	}
}

func TestUnimplementedNoteRepo(t *testing.T) {
	repo := NewUnimplementedNoteRepo()
	ctx := context.Background()

	if _, err := repo.FetchNotes(ctx, "c1"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("FetchNotes() error = %v", err)
	}
	if err := repo.AddNote(ctx, models.InternalNote{}); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("AddNote() error = %v", err)
	}
	if err := repo.UpdateNote(ctx, models.InternalNote{}); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("UpdateNote() error = %v", err)
	}
	if err := repo.DeleteNote(ctx, "c1", "n1"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("DeleteNote() error = %v", err)
	}
}
