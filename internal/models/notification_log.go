package models

import "gorm.io/datatypes"

// Notification delivery results recorded by the chat relay.
const (
	DeliveryDelivered      = "delivered"
	DeliveryMissingChannel = "missing_channel"
	DeliveryFailed         = "failed"
)

// NotificationLog records one best-effort chat delivery attempt. The workflow
// never reads these back; they exist for operators chasing missing messages.
type NotificationLog struct {
	BaseModel

	UserID  string         `gorm:"type:uuid;index" json:"user_id"`
	ChatID  string         `json:"chat_id,omitempty"`
	Result  string         `gorm:"type:varchar(32);not null;index" json:"result"`
	Reason  string         `gorm:"type:text" json:"reason,omitempty"`
	Payload datatypes.JSON `json:"payload,omitempty"`
}
