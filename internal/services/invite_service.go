package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/crypto"
)

const (
	defaultInviteExpiry     = 7 * 24 * time.Hour
	defaultInviteTokenBytes = 48
	inviteQRSize            = 256
)

var (
	// ErrInviteNotFound indicates no invitation matches the provided token.
	ErrInviteNotFound = errors.New("invite: not found")
	// ErrInviteExpired indicates the invitation token has expired.
	ErrInviteExpired = errors.New("invite: expired")
	// ErrInviteAlreadyUsed signals that the invitation has already been consumed.
	ErrInviteAlreadyUsed = errors.New("invite: already used")
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to build signup links.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInviteExpiry overrides the invitation token lifetime.
func WithInviteExpiry(d time.Duration) InviteOption {
	return func(s *InviteService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteTokenSize adjusts the random token length in bytes.
func WithInviteTokenSize(size int) InviteOption {
	return func(s *InviteService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InviteService manages generation and consumption of signup invitations.
// Raw tokens are never stored; only their SHA-256 hashes reach the database.
type InviteService struct {
	db          *gorm.DB
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
}

// NewInviteService constructs an InviteService.
func NewInviteService(db *gorm.DB, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}

	service := &InviteService{
		db:          db,
		expiry:      defaultInviteExpiry,
		tokenLength: defaultInviteTokenBytes,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateInvitation issues an invitation for the email address and returns the
// raw token alongside the stored record and a signup link.
func (s *InviteService) CreateInvitation(ctx context.Context, email, createdBy string) (token, link string, invitation *models.Invitation, err error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", "", nil, errors.New("invite service: email is required")
	}

	rawToken, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return "", "", nil, fmt.Errorf("invite service: generate token: %w", err)
	}

	invite := models.Invitation{
		Email:     email,
		TokenHash: inviteTokenHash(rawToken),
		CreatedBy: strings.TrimSpace(createdBy),
		ExpiresAt: s.now().Add(s.expiry),
	}
	if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return "", "", nil, fmt.Errorf("invite service: create invitation: %w", err)
	}

	return rawToken, s.inviteLink(rawToken), &invite, nil
}

// VerifyToken checks a raw token without consuming it, so signup forms can
// validate before the user commits.
func (s *InviteService) VerifyToken(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	invite, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Used() {
		return nil, ErrInviteAlreadyUsed
	}
	if invite.ExpiresAt.Before(s.now()) {
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// ConsumeToken validates the token and marks the invitation as used. Each
// invitation admits exactly one signup.
func (s *InviteService) ConsumeToken(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	invite, err := s.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// Guard used_at in the WHERE clause so two concurrent signups cannot both
	// consume the same invitation.
	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND used_at IS NULL", invite.ID).
		Update("used_at", now)
	if result.Error != nil {
		return nil, fmt.Errorf("invite service: mark used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrInviteAlreadyUsed
	}

	invite.UsedAt = &now
	return invite, nil
}

// ListInvitations returns all invitations, newest first.
func (s *InviteService) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invites []models.Invitation
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("invite service: list invitations: %w", err)
	}
	return invites, nil
}

// RevokeInvitation deletes an unused invitation.
func (s *InviteService) RevokeInvitation(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var invite models.Invitation
	if err := s.db.WithContext(ctx).First(&invite, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("invite service: load invitation: %w", err)
	}
	if invite.Used() {
		return ErrInviteAlreadyUsed
	}

	if err := s.db.WithContext(ctx).Delete(&invite).Error; err != nil {
		return fmt.Errorf("invite service: revoke invitation: %w", err)
	}
	return nil
}

// QRCode renders the signup link for a raw token as a PNG image.
func (s *InviteService) QRCode(token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("invite service: token is required")
	}

	png, err := qrcode.Encode(s.inviteLink(token), qrcode.Medium, inviteQRSize)
	if err != nil {
		return nil, fmt.Errorf("invite service: encode qr: %w", err)
	}
	return png, nil
}

// SweepExpired deletes expired, never-used invitations and reports how many
// rows were removed.
func (s *InviteService) SweepExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("expires_at < ? AND used_at IS NULL", s.now()).
		Delete(&models.Invitation{})
	if result.Error != nil {
		return 0, fmt.Errorf("invite service: sweep expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *InviteService) findByToken(ctx context.Context, token string) (*models.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("invite service: token is required")
	}

	var invite models.Invitation
	if err := s.db.WithContext(ctx).
		Where("token_hash = ?", inviteTokenHash(token)).
		First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("invite service: find invitation: %w", err)
	}
	return &invite, nil
}

func (s *InviteService) inviteLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/signup?invite=%s", s.baseURL, token)
}

func inviteTokenHash(token string) string {
	checksum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(checksum[:])
}
