package audit

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is one recorded change made by an agent or the system
type AuditLog struct {
	ID string `json:"id" gorm:"type:text;primaryKey"`

	// Who
	ActorID   string `json:"actor_id" gorm:"type:text;index"`
	ActorName string `json:"actor_name,omitempty" gorm:"type:text"`

	// Action details
	Action   string `json:"action" gorm:"type:text;not null;index"` // labels.set, status.set, note.create, ...
	Entity   string `json:"entity" gorm:"type:text;not null;index"` // conversation, note
	EntityID string `json:"entity_id" gorm:"type:text;index"`

	// Change tracking
	OldValue datatypes.JSON `json:"old_value,omitempty"`
	NewValue datatypes.JSON `json:"new_value,omitempty"`

	Description string `json:"description,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Actor identifies who performed an action
type Actor struct {
	ID   string
	Name string
}

// SystemActor is used for changes driven by inbound webhooks
var SystemActor = Actor{ID: "system", Name: "System"}
