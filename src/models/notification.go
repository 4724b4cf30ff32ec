package models

import (
	"tourbook/src/types"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID              `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type        types.NotificationType `json:"type"`
	ActorID     uint                   `json:"actor_id,omitempty"`
	RecipientID uint                   `json:"recipient_id"`
	TargetType  string                 `json:"target_type,omitempty"`
	TargetID    string                 `json:"target_id,omitempty"`
	Message     string                 `json:"message"`
	ActionURL   *string                `json:"action_url,omitempty"`
	IsRead      bool                   `gorm:"default:false" json:"is_read"`

	types.Timestamps
}
