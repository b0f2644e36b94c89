package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile describes a community member. The ID doubles as the authentication
// identity, so sessions and ownership references all point at the same value.
type Profile struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FullName   string  `json:"full_name"`
	LocationID *string `gorm:"type:uuid;index" json:"location_id"`

	// External chat identity used by the notification relay. Both are optional;
	// a profile without a chat id simply never receives chat messages.
	ChatID     string `json:"chat_id,omitempty"`
	ChatHandle string `json:"chat_handle,omitempty"`

	// IsMember gates member-only routes. It does not gate reads at the storage
	// layer; route middleware is the only enforcement point.
	IsMember bool `gorm:"default:false;index" json:"is_member"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	Location *CommunityLocation `gorm:"constraint:OnDelete:SET NULL" json:"location,omitempty"`
	Items    []Item             `gorm:"foreignKey:OwnerID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// DisplayName prefers the username and falls back to the full name.
func (p *Profile) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.FullName
}
