package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"gorm.io/gorm"
)

// ConversationFilter narrows List. Zero values match everything.
type ConversationFilter struct {
	Status  *models.Status
	Label   models.Label
	Handler models.HandlerKind
	Search  string // matches name or phone number
	Limit   int
}

type ConversationRepo interface {
	Create(ctx context.Context, c models.Conversation) error
	GetByID(ctx context.Context, id string) (models.Conversation, error)
	GetByPhone(ctx context.Context, phone string) (models.Conversation, error)
	List(ctx context.Context, filter ConversationFilter) ([]models.Conversation, error)
	Save(ctx context.Context, c models.Conversation) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(ctx context.Context, c models.Conversation) error {
	rec, err := toConversationRecord(c)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (models.Conversation, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *conversationRepo) GetByPhone(ctx context.Context, phone string) (models.Conversation, error) {
	return r.first(ctx, "phone_number = ?", phone)
}

func (r *conversationRepo) first(ctx context.Context, query string, arg interface{}) (models.Conversation, error) {
	var rec ConversationRecord
	err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Conversation{}, ErrNotFound
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}

	c, err := rec.toModel()
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to decode conversation %s: %w", rec.ID, err)
	}

	notes, err := r.notesFor(ctx, []string{c.ID})
	if err != nil {
		return models.Conversation{}, err
	}
	c.InternalNotes = notes[c.ID]
	return c, nil
}

func (r *conversationRepo) List(ctx context.Context, filter ConversationFilter) ([]models.Conversation, error) {
	query := r.db.WithContext(ctx).Model(&ConversationRecord{})

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Handler != "" {
		query = query.Where("handler_kind = ?", string(filter.Handler))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone_number LIKE ?", like, like)
	}

	var recs []ConversationRecord
	if err := query.Order("last_message_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	// Labels are a JSON column, filtered here to stay portable across postgres and sqlite
	out := make([]models.Conversation, 0, len(recs))
	ids := make([]string, 0, len(recs))
	for i := range recs {
		c, err := recs[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode conversation %s: %w", recs[i].ID, err)
		}
		if filter.Label != "" && !c.HasLabel(filter.Label) {
			continue
		}
		out = append(out, c)
		ids = append(ids, c.ID)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}

	notes, err := r.notesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].InternalNotes = notes[out[i].ID]
	}
	return out, nil
}

// Save overwrites every column of an existing conversation
func (r *conversationRepo) Save(ctx context.Context, c models.Conversation) error {
	rec, err := toConversationRecord(c)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}

	res := r.db.WithContext(ctx).Model(&ConversationRecord{}).
		Where("id = ?", c.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("failed to save conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *conversationRepo) notesFor(ctx context.Context, ids []string) (map[string][]models.InternalNote, error) {
	out := make(map[string][]models.InternalNote, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var recs []NoteRecord
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", ids).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	for i := range recs {
		out[recs[i].ConversationID] = append(out[recs[i].ConversationID], recs[i].toModel())
	}
	return out, nil
}
