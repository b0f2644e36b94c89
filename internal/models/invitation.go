package models

import "time"

// Invitation represents an admin-issued signup invitation. The raw token is
// only ever handed to the invitee; the database stores its SHA-256 hash.
type Invitation struct {
	BaseModel

	Email     string     `gorm:"not null;index" json:"email"`
	TokenHash string     `gorm:"not null;uniqueIndex" json:"-"`
	CreatedBy string     `gorm:"type:uuid" json:"created_by"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}

// Used reports whether the invitation has been consumed by a signup.
func (i *Invitation) Used() bool {
	return i.UsedAt != nil
}
