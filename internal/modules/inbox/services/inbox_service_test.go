package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/webhook"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
)

func decodeEvent(t *testing.T, raw string) webhook.Event {
	t.Helper()
	evt, err := webhook.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode(%s) error = %v", raw, err)
	}
	return evt
}

func TestHandleEvent_CreatesConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.inbox.HandleEvent(decodeEvent(t, `{"from":"6281234567890@c.us","text":"halo, AC saya rusak","timestamp":1700000000}`))
	f.inbox.HandleEvent(decodeEvent(t, `{"from":"6281234567890@c.us","text":"tolong dicek"}`))

	conv, err := f.conversations.GetByPhone(ctx, "6281234567890")
	if err != nil {
		t.Fatalf("GetByPhone() error = %v", err)
	}
	if conv.UnreadCount != 2 || conv.LastMessage != "tolong dicek" || !conv.IsOnChannel {
		t.Fatalf("conversation = %+v", conv)
	}
	if conv.Name != "+62 812-3456-7890" {
		t.Fatalf("Name = %q, want formatted phone", conv.Name)
	}
	if conv.HandlerKind != models.HandlerHuman {
		t.Fatalf("HandlerKind = %q, want human", conv.HandlerKind)
	}

	logs, _ := f.inbox.Activity(ctx, conv.ID, 0)
	if len(logs) != 1 || logs[0].Action != "conversation.create" {
		t.Fatalf("Activity() = %+v", logs)
	}
}

func TestHandleEvent_OutgoingAndAIReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.inbox.HandleEvent(decodeEvent(t, `{"from":"081234567890","text":"halo"}`))
	f.inbox.HandleEvent(decodeEvent(t, `{"from":"6280000000000","to":"6281234567890","isFromMe":true,"isAIReply":true,"text":"Halo kak, ada yang bisa dibantu?"}`))

	conv, err := f.conversations.GetByPhone(ctx, "6281234567890")
	if err != nil {
		t.Fatalf("GetByPhone() error = %v", err)
	}
	if conv.UnreadCount != 1 {
		t.Fatalf("UnreadCount = %d, want 1", conv.UnreadCount)
	}
	if conv.HandlerKind != models.HandlerAI || conv.HandledBy == nil || conv.HandledBy.ID != models.AIUser.ID {
		t.Fatalf("handler = %q by %+v, want ai", conv.HandlerKind, conv.HandledBy)
	}
}

func TestHandleEvent_IgnoresInvalidAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.inbox.HandleEvent(decodeEvent(t, `{"text":"no sender"}`))
	f.inbox.HandleEvent(decodeEvent(t, `{"from":"12","text":"too short"}`))
	f.inbox.HandleEvent(decodeEvent(t, `{"type":"status","messageId":"m1","status":"read","timestamp":"t","recipientId":"r1"}`))

	convs, err := f.inbox.List(ctx, repositories.ConversationFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(convs) != 0 {
		t.Fatalf("List() = %d conversations, want 0", len(convs))
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := models.User{ID: "u1", Name: "Sari"}

	conv, created, err := f.inbox.Create(ctx, agent, CreateConversationRequest{Name: "Budi", PhoneNumber: "0812-3456-7890"})
	if err != nil || !created {
		t.Fatalf("Create() = %v, %v", created, err)
	}
	if conv.PhoneNumber != "6281234567890" {
		t.Fatalf("PhoneNumber = %q", conv.PhoneNumber)
	}

	again, created, err := f.inbox.Create(ctx, agent, CreateConversationRequest{PhoneNumber: "+62 812 3456 7890"})
	if err != nil || created || again.ID != conv.ID {
		t.Fatalf("Create(duplicate) = %s, %v, %v", again.ID, created, err)
	}

	if _, _, err := f.inbox.Create(ctx, agent, CreateConversationRequest{PhoneNumber: "123"}); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("Create(invalid) error = %v, want ErrInvalidPhone", err)
	}
}

func TestLabelsAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := models.User{ID: "u1", Name: "Sari"}

	conv, _, err := f.inbox.Create(ctx, agent, CreateConversationRequest{PhoneNumber: "6281234567890"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	conv, err = f.inbox.SetStatus(ctx, agent, conv.ID, models.StatusResolved)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if !conv.IsEvaluated || conv.EvaluatedAt == nil || conv.ResolvedAt == nil {
		t.Fatalf("after SetStatus: evaluated %v at %v resolved %v", conv.IsEvaluated, conv.EvaluatedAt, conv.ResolvedAt)
	}

	conv, err = f.inbox.AddLabels(ctx, agent, conv.ID, []models.Label{models.LabelPayment, models.LabelWarranty, models.LabelPayment})
	if err != nil {
		t.Fatalf("AddLabels() error = %v", err)
	}
	if conv.LabelCount() != 2 || conv.IsEvaluated {
		t.Fatalf("after AddLabels: labels %v evaluated %v", conv.Labels, conv.IsEvaluated)
	}

	conv, err = f.inbox.RemoveLabel(ctx, agent, conv.ID, models.LabelPayment)
	if err != nil || conv.HasLabel(models.LabelPayment) {
		t.Fatalf("RemoveLabel() = %v, %v", conv.Labels, err)
	}

	conv, err = f.inbox.SetLabels(ctx, agent, conv.ID, []models.Label{models.LabelService})
	if err != nil || conv.LabelCount() != 1 || !conv.HasLabel(models.LabelService) {
		t.Fatalf("SetLabels() = %v, %v", conv.Labels, err)
	}

	conv, err = f.inbox.ClearLabels(ctx, agent, conv.ID)
	if err != nil || conv.LabelCount() != 0 {
		t.Fatalf("ClearLabels() = %v, %v", conv.Labels, err)
	}

	stored, err := f.inbox.Get(ctx, conv.ID)
	if err != nil || stored.LabelCount() != 0 || stored.Status != models.StatusResolved {
		t.Fatalf("Get() = %+v, %v", stored, err)
	}

	logs, err := f.inbox.Activity(ctx, conv.ID, 0)
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	// create, status, add, remove, set, clear
	if len(logs) != 6 {
		t.Fatalf("Activity() = %d entries, want 6", len(logs))
	}
}

func TestMarkSeenAndAssign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := models.User{ID: "u1", Name: "Sari"}

	f.inbox.HandleEvent(decodeEvent(t, `{"from":"6281234567890","text":"halo"}`))
	conv, err := f.conversations.GetByPhone(ctx, "6281234567890")
	if err != nil {
		t.Fatalf("GetByPhone() error = %v", err)
	}

	conv, err = f.inbox.MarkSeen(ctx, agent, conv.ID)
	if err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}
	if conv.UnreadCount != 0 || len(conv.SeenBy) != 1 || conv.SeenBy[0].User.ID != "u1" {
		t.Fatalf("after MarkSeen: unread %d seen %+v", conv.UnreadCount, conv.SeenBy)
	}

	at := time.Now().Add(-time.Second)
	conv, err = f.inbox.Assign(ctx, agent, conv.ID, agent)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if conv.HandledBy == nil || conv.HandledBy.ID != "u1" || conv.HandledAt.Before(at) {
		t.Fatalf("after Assign: %+v at %v", conv.HandledBy, conv.HandledAt)
	}

	if _, err := f.inbox.MarkSeen(ctx, models.User{}, conv.ID); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("MarkSeen(no user) error = %v", err)
	}
}

func TestMutate_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.inbox.SetStatus(ctx, models.User{ID: "u1"}, "missing", models.StatusOpen); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("SetStatus() error = %v, want ErrNotFound", err)
	}
	if _, err := f.inbox.Activity(ctx, "missing", 0); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("Activity() error = %v, want ErrNotFound", err)
	}
}

func TestActivity_AfterMarkSeen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := models.User{ID: "u1", Name: "Sari"}

	f.inbox.HandleEvent(decodeEvent(t, `{"from":"6281234567890","text":"halo"}`))
	conv, err := f.conversations.GetByPhone(ctx, "6281234567890")
	if err != nil {
		t.Fatalf("GetByPhone() error = %v", err)
	}
	if _, err := f.inbox.MarkSeen(ctx, agent, conv.ID); err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}

	logs, err := f.inbox.Activity(ctx, conv.ID, 0)
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	if len(logs) != 2 || logs[0].Action != "conversation.seen" {
		t.Fatalf("Activity() = %+v", logs)
	}
	if string(logs[0].OldValue) != `{"value":1}` || string(logs[0].NewValue) != `{"value":0}` {
		t.Fatalf("seen change = %s -> %s", logs[0].OldValue, logs[0].NewValue)
	}
}

func TestHandleEvent_ConcurrentMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := models.User{ID: "u1", Name: "Sari"}

	f.inbox.HandleEvent(decodeEvent(t, `{"from":"6281234567890","text":"halo"}`))
	conv, err := f.conversations.GetByPhone(ctx, "6281234567890")
	if err != nil {
		t.Fatalf("GetByPhone() error = %v", err)
	}

	const n = 20
	events := make([]webhook.Event, n)
	for i := range events {
		events[i] = decodeEvent(t, fmt.Sprintf(`{"from":"6281234567890","text":"pesan %d"}`, i))
	}

	var wg sync.WaitGroup
	for _, evt := range events {
		wg.Add(1)
		go func(evt webhook.Event) {
			defer wg.Done()
			f.inbox.HandleEvent(evt)
		}(evt)
	}
	for _, l := range models.AllLabels() {
		wg.Add(1)
		go func(l models.Label) {
			defer wg.Done()
			if _, err := f.inbox.AddLabels(ctx, agent, conv.ID, []models.Label{l}); err != nil {
				t.Errorf("AddLabels(%s) error = %v", l, err)
			}
		}(l)
	}
	wg.Wait()

	stored, err := f.inbox.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.UnreadCount != n+1 {
		t.Fatalf("UnreadCount = %d, want %d", stored.UnreadCount, n+1)
	}
	if !stored.HasAllLabels(models.AllLabels()...) {
		t.Fatalf("labels = %v, want all labels", stored.Labels)
	}
	if got := f.inbox.locks.size(); got != 0 {
		t.Fatalf("locks held after completion = %d, want 0", got)
	}
}

func TestHandleEvent_ConcurrentFirstContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	evt := decodeEvent(t, `{"from":"6289876543210@c.us","text":"halo"}`)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.inbox.HandleEvent(evt)
		}()
	}
	wg.Wait()

	convs, err := f.inbox.List(ctx, repositories.ConversationFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("List() = %d conversations, want 1", len(convs))
	}
	if convs[0].UnreadCount != n {
		t.Fatalf("UnreadCount = %d, want %d", convs[0].UnreadCount, n)
	}
}
