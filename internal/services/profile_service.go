package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/backoff"
)

var (
	// ErrProfileNotFound indicates the profile does not exist.
	ErrProfileNotFound = errors.New("profile: not found")
	// ErrProfileConflict signals a username or email collision.
	ErrProfileConflict = errors.New("profile: username or email already taken")
)

// ProfileOption customises ProfileService behaviour.
type ProfileOption func(*ProfileService)

// WithProfileRetry overrides the retry policy used by fetch-with-retry reads.
func WithProfileRetry(attempts int, baseDelay time.Duration, opts ...backoff.Option) ProfileOption {
	return func(s *ProfileService) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		if baseDelay > 0 {
			s.retryBaseDelay = baseDelay
		}
		s.retryOpts = opts
	}
}

// ProfileService manages member profiles.
type ProfileService struct {
	db             *gorm.DB
	retryAttempts  int
	retryBaseDelay time.Duration
	retryOpts      []backoff.Option
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB, opts ...ProfileOption) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}

	service := &ProfileService{
		db:             db,
		retryAttempts:  backoff.DefaultAttempts,
		retryBaseDelay: backoff.DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// GetProfile fetches a profile with its location attached.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	err := s.db.WithContext(ctx).
		Preload("Location").
		First(&profile, "id = ?", strings.TrimSpace(userID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile service: get profile: %w", err)
	}
	return &profile, nil
}

// GetProfileWithRetry fetches a profile, retrying transient storage errors
// with exponential backoff. Missing profiles are not retried; the read is
// idempotent so repeating it on infrastructure errors is safe.
func (s *ProfileService) GetProfileWithRetry(ctx context.Context, userID string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile *models.Profile
	err := backoff.Do(ctx, func(ctx context.Context) error {
		result, err := s.GetProfile(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		profile = result
		return nil
	}, s.retryAttempts, s.retryBaseDelay, s.retryOpts...)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfileByUsername resolves a profile by its unique username.
func (s *ProfileService) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	err := s.db.WithContext(ctx).
		First(&profile, "username = ?", strings.ToLower(strings.TrimSpace(username))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile service: get by username: %w", err)
	}
	return &profile, nil
}

// UpdateProfileInput carries optional profile updates; nil fields are untouched.
type UpdateProfileInput struct {
	FullName   *string `json:"full_name"`
	LocationID *string `json:"location_id"`
	ChatID     *string `json:"chat_id"`
	ChatHandle *string `json:"chat_handle"`
}

// UpdateProfile applies partial changes to the user's own profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.LocationID != nil {
		updates["location_id"] = input.LocationID
	}
	if input.ChatID != nil {
		updates["chat_id"] = strings.TrimSpace(*input.ChatID)
	}
	if input.ChatHandle != nil {
		updates["chat_handle"] = strings.TrimSpace(*input.ChatHandle)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrProfileConflict
			}
			return nil, fmt.Errorf("profile service: update profile: %w", err)
		}
		return s.GetProfile(ctx, userID)
	}
	return profile, nil
}
