package services

import (
	"path/filepath"
	"testing"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/database"
)

type fixture struct {
	conversations repositories.ConversationRepo
	notes         repositories.NoteRepo
	audit         *audit.Service
	inbox         *InboxService
	noteSvc       *NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	models := append(repositories.Models(), &audit.AuditLog{})
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}

	f := &fixture{
		conversations: repositories.NewConversationRepo(db.GORM),
		notes:         repositories.NewNoteRepo(db.GORM),
		audit:         audit.NewService(db.GORM),
	}
	f.inbox = NewInboxService(f.conversations, f.audit)
	f.noteSvc = NewNoteService(f.notes, f.inbox, f.audit)
	return f
}
