package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidStatus is returned for statuses outside pending/open/resolved
var ErrInvalidStatus = errors.New("invalid status")

// HandlerKind tells whether a human agent or the AI assistant handles the thread
type HandlerKind string

const (
	HandlerHuman HandlerKind = "human"
	HandlerAI    HandlerKind = "ai"
)

// Status is an independent tag, not a strict lifecycle.
// StatusNone means the conversation was never triaged.
type Status string

const (
	StatusNone     Status = ""
	StatusPending  Status = "pending"
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// ParseStatus accepts "", "none", pending, open and resolved
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusNone, "none":
		return StatusNone, nil
	case StatusPending, StatusOpen, StatusResolved:
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Conversation represents one customer thread.
// Values are snapshots: every transform returns a fresh copy with its own slices.
type Conversation struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	LastMessage   string         `json:"last_message"`
	LastMessageAt time.Time      `json:"last_message_at"`
	ProfileImage  string         `json:"profile_image,omitempty"`
	UnreadCount   int            `json:"unread_count"`
	IsOnChannel   bool           `json:"is_on_channel"`
	PhoneNumber   string         `json:"phone_number"`
	HandlerKind   HandlerKind    `json:"handler_kind"`
	Status        Status         `json:"status"`
	Labels        []Label        `json:"labels"`
	HandledBy     *User          `json:"handled_by,omitempty"`
	HandledAt     *time.Time     `json:"handled_at,omitempty"`
	IsEvaluated   bool           `json:"is_evaluated"`
	EvaluatedAt   *time.Time     `json:"evaluated_at,omitempty"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
	SeenBy        []SeenByRecord `json:"seen_by"`
	InternalNotes []InternalNote `json:"internal_notes"`
}

// Clone returns a deep copy
func (c Conversation) Clone() Conversation {
	out := c
	out.Labels = append([]Label(nil), c.Labels...)
	out.SeenBy = append([]SeenByRecord(nil), c.SeenBy...)
	out.InternalNotes = append([]InternalNote(nil), c.InternalNotes...)
	if c.HandledBy != nil {
		u := *c.HandledBy
		out.HandledBy = &u
	}
	out.HandledAt = cloneTime(c.HandledAt)
	out.EvaluatedAt = cloneTime(c.EvaluatedAt)
	out.ResolvedAt = cloneTime(c.ResolvedAt)
	return out
}

// With is the general copy-with-changes constructor: it deep-copies the receiver
// and applies each change to the copy in order.
func (c Conversation) With(changes ...func(*Conversation)) Conversation {
	out := c.Clone()
	for _, change := range changes {
		change(&out)
	}
	return out
}

// --- Labels ---

func (c Conversation) UpdatingLabels(labels []Label) Conversation {
	return c.With(func(n *Conversation) {
		n.Labels = dedupLabels(labels)
		n.IsEvaluated = false
	})
}

func (c Conversation) AddingLabel(label Label) Conversation {
	return c.AddingLabels(label)
}

// AddingLabels appends the missing labels. When none is missing the result is a
// plain copy and the evaluation flag is left alone.
func (c Conversation) AddingLabels(labels ...Label) Conversation {
	next := append([]Label(nil), c.Labels...)
	for _, l := range labels {
		if !containsLabel(next, l) {
			next = append(next, l)
		}
	}
	if len(next) == len(c.Labels) {
		return c.Clone()
	}
	return c.UpdatingLabels(next)
}

func (c Conversation) RemovingLabel(label Label) Conversation {
	return c.RemovingLabels(label)
}

// RemovingLabels drops the given labels; removing absent labels changes nothing
func (c Conversation) RemovingLabels(labels ...Label) Conversation {
	next := make([]Label, 0, len(c.Labels))
	for _, l := range c.Labels {
		if !containsLabel(labels, l) {
			next = append(next, l)
		}
	}
	if len(next) == len(c.Labels) {
		return c.Clone()
	}
	return c.UpdatingLabels(next)
}

func (c Conversation) ClearingLabels() Conversation {
	return c.UpdatingLabels(nil)
}

func (c Conversation) HasLabel(label Label) bool {
	return containsLabel(c.Labels, label)
}

// HasAnyLabel reports whether the label set intersects the query
func (c Conversation) HasAnyLabel(labels ...Label) bool {
	for _, l := range labels {
		if c.HasLabel(l) {
			return true
		}
	}
	return false
}

// HasAllLabels reports whether the query is a subset of the label set
func (c Conversation) HasAllLabels(labels ...Label) bool {
	for _, l := range labels {
		if !c.HasLabel(l) {
			return false
		}
	}
	return true
}

func (c Conversation) LabelCount() int {
	return len(c.Labels)
}

// --- Status ---

// UpdatingStatus marks the copy as evaluated; label, note and seen-by changes undo that
func (c Conversation) UpdatingStatus(status Status) Conversation {
	return c.With(func(n *Conversation) {
		n.Status = status
		n.IsEvaluated = true
	})
}

// --- Seen by ---

func (c Conversation) UpdatingSeenBy(records []SeenByRecord) Conversation {
	return c.With(func(n *Conversation) {
		n.SeenBy = append([]SeenByRecord(nil), records...)
		n.IsEvaluated = false
	})
}

func (c Conversation) AddingSeenByRecord(record SeenByRecord) Conversation {
	return c.UpdatingSeenBy(append(append([]SeenByRecord(nil), c.SeenBy...), record))
}

// --- Internal notes ---

func (c Conversation) UpdatingInternalNotes(notes []InternalNote) Conversation {
	return c.With(func(n *Conversation) {
		n.InternalNotes = append([]InternalNote(nil), notes...)
		n.IsEvaluated = false
	})
}

func (c Conversation) AddingInternalNote(note InternalNote) Conversation {
	return c.UpdatingInternalNotes(append(append([]InternalNote(nil), c.InternalNotes...), note))
}

// --- Inbox bookkeeping ---

// AssigningHandler records who took over the thread and when
func (c Conversation) AssigningHandler(user User, at time.Time) Conversation {
	return c.With(func(n *Conversation) {
		n.HandledBy = &user
		n.HandledAt = &at
		if user.ID == AIUser.ID {
			n.HandlerKind = HandlerAI
		} else {
			n.HandlerKind = HandlerHuman
		}
	})
}

func (c Conversation) MarkingRead() Conversation {
	return c.With(func(n *Conversation) {
		n.UnreadCount = 0
	})
}

// ReceivingMessage updates the preview; messages sent by us never raise the unread count
func (c Conversation) ReceivingMessage(text string, at time.Time, fromMe bool) Conversation {
	return c.With(func(n *Conversation) {
		if text != "" {
			n.LastMessage = text
		}
		if !at.IsZero() {
			n.LastMessageAt = at
		}
		if !fromMe {
			n.UnreadCount++
		}
		n.IsOnChannel = true
	})
}

func containsLabel(labels []Label, l Label) bool {
	for _, x := range labels {
		if x == l {
			return true
		}
	}
	return false
}

func dedupLabels(labels []Label) []Label {
	out := make([]Label, 0, len(labels))
	for _, l := range labels {
		if !containsLabel(out, l) {
			out = append(out, l)
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
