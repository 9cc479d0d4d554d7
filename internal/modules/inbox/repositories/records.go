package repositories

import (
	"encoding/json"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"gorm.io/datatypes"
)

// ConversationRecord is the persisted form of models.Conversation.
// Internal notes live in their own table.
type ConversationRecord struct {
	ID            string         `gorm:"type:text;primaryKey"`
	Name          string         `gorm:"type:text"`
	LastMessage   string         `gorm:"type:text"`
	LastMessageAt time.Time      `gorm:"index"`
	ProfileImage  string         `gorm:"type:text"`
	UnreadCount   int            `gorm:"default:0"`
	IsOnChannel   bool           `gorm:"default:false"`
	PhoneNumber   string         `gorm:"type:text;uniqueIndex"`
	HandlerKind   string         `gorm:"type:text;index"`
	Status        string         `gorm:"type:text;index"`
	Labels        datatypes.JSON `gorm:"column:labels"`
	HandledBy     datatypes.JSON `gorm:"column:handled_by"`
	HandledAt     *time.Time     `gorm:"column:handled_at"`
	IsEvaluated   bool           `gorm:"default:false"`
	EvaluatedAt   *time.Time     `gorm:"column:evaluated_at"`
	ResolvedAt    *time.Time     `gorm:"column:resolved_at"`
	SeenBy        datatypes.JSON `gorm:"column:seen_by"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ConversationRecord) TableName() string {
	return "inbox_conversations"
}

// NoteRecord is the persisted form of models.InternalNote
type NoteRecord struct {
	ID              string    `gorm:"type:text;primaryKey"`
	ConversationID  string    `gorm:"type:text;not null;index"`
	AuthorID        string    `gorm:"type:text"`
	AuthorName      string    `gorm:"type:text"`
	AuthorAvatarURL string    `gorm:"type:text"`
	AuthorEmail     string    `gorm:"type:text"`
	Message         string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"index"`
}

func (NoteRecord) TableName() string {
	return "inbox_internal_notes"
}

// Models lists the tables owned by this package, for AutoMigrate
func Models() []interface{} {
	return []interface{}{&ConversationRecord{}, &NoteRecord{}}
}

func toConversationRecord(c models.Conversation) (*ConversationRecord, error) {
	labels, err := toJSON(c.Labels)
	if err != nil {
		return nil, err
	}
	seenBy, err := toJSON(c.SeenBy)
	if err != nil {
		return nil, err
	}
	var handledBy datatypes.JSON
	if c.HandledBy != nil {
		if handledBy, err = toJSON(c.HandledBy); err != nil {
			return nil, err
		}
	}

	return &ConversationRecord{
		ID:            c.ID,
		Name:          c.Name,
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt,
		ProfileImage:  c.ProfileImage,
		UnreadCount:   c.UnreadCount,
		IsOnChannel:   c.IsOnChannel,
		PhoneNumber:   c.PhoneNumber,
		HandlerKind:   string(c.HandlerKind),
		Status:        string(c.Status),
		Labels:        labels,
		HandledBy:     handledBy,
		HandledAt:     c.HandledAt,
		IsEvaluated:   c.IsEvaluated,
		EvaluatedAt:   c.EvaluatedAt,
		ResolvedAt:    c.ResolvedAt,
		SeenBy:        seenBy,
	}, nil
}

func (r *ConversationRecord) toModel() (models.Conversation, error) {
	c := models.Conversation{
		ID:            r.ID,
		Name:          r.Name,
		LastMessage:   r.LastMessage,
		LastMessageAt: r.LastMessageAt,
		ProfileImage:  r.ProfileImage,
		UnreadCount:   r.UnreadCount,
		IsOnChannel:   r.IsOnChannel,
		PhoneNumber:   r.PhoneNumber,
		HandlerKind:   models.HandlerKind(r.HandlerKind),
		Status:        models.Status(r.Status),
		HandledAt:     r.HandledAt,
		IsEvaluated:   r.IsEvaluated,
		EvaluatedAt:   r.EvaluatedAt,
		ResolvedAt:    r.ResolvedAt,
	}
	if err := fromJSON(r.Labels, &c.Labels); err != nil {
		return c, err
	}
	if err := fromJSON(r.SeenBy, &c.SeenBy); err != nil {
		return c, err
	}
	if len(r.HandledBy) > 0 && string(r.HandledBy) != "null" {
		var u models.User
		if err := json.Unmarshal(r.HandledBy, &u); err != nil {
			return c, err
		}
		c.HandledBy = &u
	}
	return c, nil
}

func toNoteRecord(n models.InternalNote) *NoteRecord {
	return &NoteRecord{
		ID:              n.ID,
		ConversationID:  n.ConversationID,
		AuthorID:        n.Author.ID,
		AuthorName:      n.Author.Name,
		AuthorAvatarURL: n.Author.AvatarURL,
		AuthorEmail:     n.Author.Email,
		Message:         n.Message,
		CreatedAt:       n.CreatedAt,
	}
}

func (r *NoteRecord) toModel() models.InternalNote {
	return models.InternalNote{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Author: models.User{
			ID:        r.AuthorID,
			Name:      r.AuthorName,
			AvatarURL: r.AuthorAvatarURL,
			Email:     r.AuthorEmail,
		},
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func fromJSON(raw datatypes.JSON, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
