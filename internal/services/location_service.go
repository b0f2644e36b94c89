package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
)

var (
	// ErrLocationNotFound indicates the community location does not exist.
	ErrLocationNotFound = errors.New("location: not found")
	// ErrLocationExists signals a duplicate location name.
	ErrLocationExists = errors.New("location: name already exists")
)

// LocationService manages admin-curated community pickup locations.
type LocationService struct {
	db *gorm.DB
}

// NewLocationService constructs a LocationService.
func NewLocationService(db *gorm.DB) (*LocationService, error) {
	if db == nil {
		return nil, errors.New("location service: db is required")
	}
	return &LocationService{db: db}, nil
}

// ListLocations returns all community locations ordered by name.
func (s *LocationService) ListLocations(ctx context.Context) ([]models.CommunityLocation, error) {
	ctx = ensureContext(ctx)

	var locations []models.CommunityLocation
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("location service: list locations: %w", err)
	}
	return locations, nil
}

// GetLocation fetches a single location.
func (s *LocationService) GetLocation(ctx context.Context, id string) (*models.CommunityLocation, error) {
	ctx = ensureContext(ctx)

	var location models.CommunityLocation
	if err := s.db.WithContext(ctx).First(&location, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("location service: get location: %w", err)
	}
	return &location, nil
}

// CreateLocation adds a new community location. Names are unique.
func (s *LocationService) CreateLocation(ctx context.Context, name, address string) (*models.CommunityLocation, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("location service: name is required")
	}

	location := models.CommunityLocation{Name: name, Address: strings.TrimSpace(address)}
	if err := s.db.WithContext(ctx).Create(&location).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrLocationExists
		}
		return nil, fmt.Errorf("location service: create location: %w", err)
	}
	return &location, nil
}

// UpdateLocation renames a location or changes its address.
func (s *LocationService) UpdateLocation(ctx context.Context, id string, name, address *string) (*models.CommunityLocation, error) {
	ctx = ensureContext(ctx)

	location, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, errors.New("location service: name cannot be empty")
		}
		updates["name"] = trimmed
	}
	if address != nil {
		updates["address"] = strings.TrimSpace(*address)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(location).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrLocationExists
			}
			return nil, fmt.Errorf("location service: update location: %w", err)
		}
	}
	return s.GetLocation(ctx, id)
}

// DeleteLocation removes a location. Profiles and items keep working; their
// location reference is nulled by the foreign key constraint.
func (s *LocationService) DeleteLocation(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	location, err := s.GetLocation(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).
			Where("location_id = ?", location.ID).
			Update("location_id", nil).Error; err != nil {
			return fmt.Errorf("detach profiles: %w", err)
		}
		if err := tx.Model(&models.Item{}).
			Where("location_id = ?", location.ID).
			Update("location_id", nil).Error; err != nil {
			return fmt.Errorf("detach items: %w", err)
		}
		if err := tx.Delete(location).Error; err != nil {
			return fmt.Errorf("delete location: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("location service: delete location: %w", err)
	}
	return nil
}
