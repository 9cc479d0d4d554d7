package models

import "time"

// InternalNote is an agent-only annotation on a conversation, never shown to the customer
type InternalNote struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Author         User      `json:"author"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Updating returns a copy carrying the new message and a refreshed timestamp.
// Edits replace the note, they never patch it.
func (n InternalNote) Updating(message string) InternalNote {
	n.Message = message
	n.CreatedAt = time.Now()
	return n
}

// Equal compares every field
func (n InternalNote) Equal(other InternalNote) bool {
	return n.ID == other.ID &&
		n.ConversationID == other.ConversationID &&
		n.Author == other.Author &&
		n.Message == other.Message &&
		n.CreatedAt.Equal(other.CreatedAt)
}

// SeenByRecord marks that a user viewed a conversation at a given time
type SeenByRecord struct {
	User   User      `json:"user"`
	SeenAt time.Time `json:"seen_at"`
}
