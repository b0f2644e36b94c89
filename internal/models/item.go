package models

import "strings"

// Item categories form a fixed allow-list. Values outside it render as
// CategoryOther without failing.
const (
	CategoryTools       = "tools"
	CategoryKitchen     = "kitchen"
	CategoryElectronics = "electronics"
	CategorySports      = "sports"
	CategoryGarden      = "garden"
	CategoryCamping     = "camping"
	CategoryBooks       = "books"
	CategoryGames       = "games"
	CategoryKids        = "kids"
	CategoryOther       = "other"
)

// Availability tags for weekday/weekend time slots. Unrecognized raw values
// are echoed back unchanged rather than coerced.
const (
	AvailabilityMorning     = "morning"
	AvailabilityAfternoon   = "afternoon"
	AvailabilityEvening     = "evening"
	AvailabilityAnytime     = "anytime"
	AvailabilityUnavailable = "unavailable"
)

var itemCategories = map[string]struct{}{
	CategoryTools:       {},
	CategoryKitchen:     {},
	CategoryElectronics: {},
	CategorySports:      {},
	CategoryGarden:      {},
	CategoryCamping:     {},
	CategoryBooks:       {},
	CategoryGames:       {},
	CategoryKids:        {},
	CategoryOther:       {},
}

var availabilitySlots = map[string]struct{}{
	AvailabilityMorning:     {},
	AvailabilityAfternoon:   {},
	AvailabilityEvening:     {},
	AvailabilityAnytime:     {},
	AvailabilityUnavailable: {},
}

// Item is a shareable belonging listed by a member.
type Item struct {
	BaseModel

	OwnerID     string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string `gorm:"not null" json:"name"`
	Category    string `gorm:"type:varchar(32);not null;index" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`
	Condition   string `gorm:"type:varchar(32)" json:"condition,omitempty"`

	WeekdayAvailability string `gorm:"type:varchar(32);default:'anytime'" json:"weekday_availability"`
	WeekendAvailability string `gorm:"type:varchar(32);default:'anytime'" json:"weekend_availability"`

	LocationID *string            `gorm:"type:uuid;index" json:"location_id,omitempty"`
	Location   *CommunityLocation `gorm:"constraint:OnDelete:SET NULL" json:"location,omitempty"`

	Owner *Profile `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
}

// NormalizeCategory coerces values outside the allow-list to CategoryOther.
func NormalizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := itemCategories[category]; ok {
		return category
	}
	return CategoryOther
}

// NormalizeAvailability lower-cases known slots and echoes unknown values
// back unchanged.
func NormalizeAvailability(raw string) string {
	slot := strings.ToLower(strings.TrimSpace(raw))
	if slot == "" {
		return AvailabilityAnytime
	}
	if _, ok := availabilitySlots[slot]; ok {
		return slot
	}
	return raw
}

// Categories returns the fixed category allow-list.
func Categories() []string {
	return []string{
		CategoryTools,
		CategoryKitchen,
		CategoryElectronics,
		CategorySports,
		CategoryGarden,
		CategoryCamping,
		CategoryBooks,
		CategoryGames,
		CategoryKids,
		CategoryOther,
	}
}
