package models

import "time"

// WebhookModel defines an outbound webhook endpoint subscribed to article
// lifecycle events. Hooks belong to one owner; deliveries never cross owners.
type WebhookModel struct {
	Base
	OwnerUserID string      `json:"owner_user_id" gorm:"index;not null"`
	PayloadURL  string      `json:"payload_url"   gorm:"not null"`
	Events      StringArray `json:"events"        gorm:"type:json;serializer:json"`
	Enabled     bool        `json:"enabled"       gorm:"default:true"`
	Secret      string      `json:"-"             gorm:"not null"`

	EventLogs []WebhookEventModel `json:"event_logs,omitempty" gorm:"foreignKey:HookID"`
}

func (WebhookModel) TableName() string { return "webhooks" }

// WebhookEventModel is the audit trail of webhook deliveries.
type WebhookEventModel struct {
	Base
	HookID    string                 `json:"hook_id"   gorm:"index;not null"`
	Event     string                 `json:"event"     gorm:"not null"`
	Payload   map[string]interface{} `json:"payload"   gorm:"type:longtext;serializer:json"`
	Response  map[string]interface{} `json:"response"  gorm:"type:longtext;serializer:json"`
	Success   bool                   `json:"success"`
	Status    int                    `json:"status"`
	Timestamp time.Time              `json:"timestamp" gorm:"index"`
}

func (WebhookEventModel) TableName() string { return "webhook_events" }
