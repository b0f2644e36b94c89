package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/cache"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/internal/realtime"
	"github.com/wollyshare/wollyshare/pkg/logger"
)

var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item: not found")
	// ErrNotOwner signals that the acting user does not own the item.
	ErrNotOwner = errors.New("item: not owned by user")
)

// Broadcaster pushes realtime change events to connected clients. The hub
// satisfies it; tests substitute a recording fake.
type Broadcaster interface {
	BroadcastStream(stream string, message realtime.Message)
	BroadcastToUser(stream, userID string, message realtime.Message)
}

const (
	statsCacheKey   = "stats:catalog"
	defaultStatsTTL = 30 * time.Second
)

// ItemOption customises ItemService behaviour.
type ItemOption func(*ItemService)

// WithItemCache enables caching of catalog statistics.
func WithItemCache(store cache.Store, ttl time.Duration) ItemOption {
	return func(s *ItemService) {
		s.cache = store
		if ttl > 0 {
			s.statsTTL = ttl
		}
	}
}

// WithItemBroadcaster wires realtime change events for item mutations.
func WithItemBroadcaster(b Broadcaster) ItemOption {
	return func(s *ItemService) {
		s.broadcaster = b
	}
}

// ItemService manages the shared item catalog.
type ItemService struct {
	db          *gorm.DB
	cache       cache.Store
	statsTTL    time.Duration
	broadcaster Broadcaster
	log         *zap.Logger
}

// NewItemService constructs an ItemService.
func NewItemService(db *gorm.DB, opts ...ItemOption) (*ItemService, error) {
	if db == nil {
		return nil, errors.New("item service: db is required")
	}

	service := &ItemService{
		db:       db,
		statsTTL: defaultStatsTTL,
		log:      logger.WithModule("items"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateItemInput carries the listing fields a member submits.
type CreateItemInput struct {
	Name                string  `json:"name" validate:"required,max=200"`
	Category            string  `json:"category"`
	Description         string  `json:"description"`
	ImageURL            string  `json:"image_url"`
	Condition           string  `json:"condition"`
	WeekdayAvailability string  `json:"weekday_availability"`
	WeekendAvailability string  `json:"weekend_availability"`
	LocationID          *string `json:"location_id"`
}

// CreateItem lists a new item for the owner. Category and availability values
// are normalized on write so the catalog never stores unknown categories.
func (s *ItemService) CreateItem(ctx context.Context, ownerID string, input CreateItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("item service: owner id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("item service: name is required")
	}

	item := models.Item{
		OwnerID:             ownerID,
		Name:                strings.TrimSpace(input.Name),
		Category:            models.NormalizeCategory(input.Category),
		Description:         input.Description,
		ImageURL:            strings.TrimSpace(input.ImageURL),
		Condition:           strings.TrimSpace(input.Condition),
		WeekdayAvailability: models.NormalizeAvailability(input.WeekdayAvailability),
		WeekendAvailability: models.NormalizeAvailability(input.WeekendAvailability),
		LocationID:          input.LocationID,
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("item service: create item: %w", err)
	}

	s.invalidateStats(ctx)
	s.broadcast(realtime.EventInsert, &item)
	return &item, nil
}

// UpdateItemInput carries optional field updates; nil fields are untouched.
type UpdateItemInput struct {
	Name                *string `json:"name" validate:"omitempty,max=200"`
	Category            *string `json:"category"`
	Description         *string `json:"description"`
	ImageURL            *string `json:"image_url"`
	Condition           *string `json:"condition"`
	WeekdayAvailability *string `json:"weekday_availability"`
	WeekendAvailability *string `json:"weekend_availability"`
	LocationID          *string `json:"location_id"`
}

// UpdateItem applies partial changes to an item owned by actorID.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID string, input UpdateItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)

	item, err := s.ownedItem(ctx, actorID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New("item service: name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Category != nil {
		updates["category"] = models.NormalizeCategory(*input.Category)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*input.ImageURL)
	}
	if input.Condition != nil {
		updates["condition"] = strings.TrimSpace(*input.Condition)
	}
	if input.WeekdayAvailability != nil {
		updates["weekday_availability"] = models.NormalizeAvailability(*input.WeekdayAvailability)
	}
	if input.WeekendAvailability != nil {
		updates["weekend_availability"] = models.NormalizeAvailability(*input.WeekendAvailability)
	}
	if input.LocationID != nil {
		updates["location_id"] = input.LocationID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("item service: update item: %w", err)
		}
		if err := s.db.WithContext(ctx).First(item, "id = ?", item.ID).Error; err != nil {
			return nil, fmt.Errorf("item service: reload item: %w", err)
		}
	}

	s.invalidateStats(ctx)
	s.broadcast(realtime.EventUpdate, item)
	return item, nil
}

// DeleteItem removes an item along with its borrow requests. Owners may
// delete their own items; admins may delete any item.
func (s *ItemService) DeleteItem(ctx context.Context, actorID, itemID string, actorIsAdmin bool) error {
	ctx = ensureContext(ctx)

	item, err := s.ownedItem(ctx, actorID, itemID)
	if errors.Is(err, ErrNotOwner) && actorIsAdmin {
		err = nil
	}
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.BorrowRequest{}).Error; err != nil {
			return fmt.Errorf("delete borrow requests: %w", err)
		}
		if err := tx.Delete(item).Error; err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("item service: delete item: %w", err)
	}

	s.invalidateStats(ctx)
	s.broadcast(realtime.EventDelete, item)
	return nil
}

// GetItem fetches a single item with its owner and location attached.
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	ctx = ensureContext(ctx)

	var item models.Item
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Location").
		First(&item, "id = ?", strings.TrimSpace(itemID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item service: get item: %w", err)
	}
	return &item, nil
}

// ItemFilter narrows catalog listings.
type ItemFilter struct {
	Category   string
	OwnerID    string
	LocationID string
	Search     string
}

// ListItems returns catalog items matching the filter, newest first. Owners
// and locations are attached in batched preload queries rather than per row.
func (s *ItemService) ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Model(&models.Item{}).
		Preload("Owner").
		Preload("Location").
		Order("created_at DESC")

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", models.NormalizeCategory(category))
	}
	if ownerID := strings.TrimSpace(filter.OwnerID); ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if locationID := strings.TrimSpace(filter.LocationID); locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("item service: list items: %w", err)
	}
	return items, nil
}

// CatalogStats summarises the shared catalog for the community dashboard.
type CatalogStats struct {
	ItemCount   int64            `json:"item_count"`
	MemberCount int64            `json:"member_count"`
	PerCategory map[string]int64 `json:"per_category"`
}

// Stats computes catalog statistics, serving from cache when fresh.
func (s *ItemService) Stats(ctx context.Context) (*CatalogStats, error) {
	ctx = ensureContext(ctx)

	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, statsCacheKey); err == nil && ok {
			var cached CatalogStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	stats := CatalogStats{PerCategory: make(map[string]int64)}

	if err := s.db.WithContext(ctx).Model(&models.Item{}).Count(&stats.ItemCount).Error; err != nil {
		return nil, fmt.Errorf("item service: count items: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("is_member = ?", true).
		Count(&stats.MemberCount).Error; err != nil {
		return nil, fmt.Errorf("item service: count members: %w", err)
	}

	type categoryCount struct {
		Category string
		Count    int64
	}
	var rows []categoryCount
	if err := s.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("item service: count categories: %w", err)
	}
	for _, row := range rows {
		stats.PerCategory[row.Category] = row.Count
	}

	if s.cache != nil {
		if raw, err := json.Marshal(&stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, raw, s.statsTTL); err != nil {
				s.log.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return &stats, nil
}

func (s *ItemService) ownedItem(ctx context.Context, actorID, itemID string) (*models.Item, error) {
	actorID = strings.TrimSpace(actorID)
	itemID = strings.TrimSpace(itemID)
	if actorID == "" {
		return nil, errors.New("item service: actor id is required")
	}

	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item service: load item: %w", err)
	}
	if item.OwnerID != actorID {
		return &item, ErrNotOwner
	}
	return &item, nil
}

func (s *ItemService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (s *ItemService) broadcast(event string, item *models.Item) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToUser(realtime.StreamItems, item.OwnerID, realtime.Message{
		Event: event,
		Data:  item,
	})
	s.broadcaster.BroadcastStream(realtime.StreamCatalog, realtime.Message{
		Event: event,
		Data:  map[string]string{"item_id": item.ID, "category": item.Category},
	})
}
