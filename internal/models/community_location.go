package models

// CommunityLocation is an admin-managed pickup point referenced by profiles
// and items as a soft foreign key.
type CommunityLocation struct {
	BaseModel

	Name    string `gorm:"not null;uniqueIndex" json:"name"`
	Address string `gorm:"type:text" json:"address"`
}
