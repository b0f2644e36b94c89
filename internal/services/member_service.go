package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/crypto"
)

// ErrLastAdmin signals an attempt to remove or demote the only admin.
var ErrLastAdmin = errors.New("member: cannot remove the last admin")

// MemberService implements admin management of community members.
type MemberService struct {
	db *gorm.DB
}

// NewMemberService constructs a MemberService.
func NewMemberService(db *gorm.DB) (*MemberService, error) {
	if db == nil {
		return nil, errors.New("member service: db is required")
	}
	return &MemberService{db: db}, nil
}

// MemberSummary is a member row enriched with the member's item count.
type MemberSummary struct {
	models.Profile
	ItemCount int64 `json:"item_count"`
}

// ListMembers returns every member with locations attached and item counts
// computed in one grouped query instead of one count per member.
func (s *MemberService) ListMembers(ctx context.Context) ([]MemberSummary, error) {
	ctx = ensureContext(ctx)

	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Preload("Location").
		Where("is_member = ?", true).
		Order("username ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("member service: list members: %w", err)
	}

	type ownerCount struct {
		OwnerID string
		Count   int64
	}
	var counts []ownerCount
	err = s.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("owner_id, COUNT(*) AS count").
		Group("owner_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("member service: count items: %w", err)
	}

	countByOwner := make(map[string]int64, len(counts))
	for _, c := range counts {
		countByOwner[c.OwnerID] = c.Count
	}

	summaries := make([]MemberSummary, 0, len(profiles))
	for _, profile := range profiles {
		summaries = append(summaries, MemberSummary{
			Profile:   profile,
			ItemCount: countByOwner[profile.ID],
		})
	}
	return summaries, nil
}

// AddMemberInput carries the fields for a directly-added member, bypassing
// the invitation flow.
type AddMemberInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// AddMember creates a member account directly.
func (s *MemberService) AddMember(ctx context.Context, input AddMemberInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("member service: hash password: %w", err)
	}

	profile := models.Profile{
		Username: strings.ToLower(strings.TrimSpace(input.Username)),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		FullName: strings.TrimSpace(input.FullName),
		IsMember: true,
		IsAdmin:  input.IsAdmin,
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrProfileConflict
		}
		return nil, fmt.Errorf("member service: create member: %w", err)
	}
	return &profile, nil
}

// SetAdmin grants or revokes the admin flag. The last remaining admin cannot
// be demoted.
func (s *MemberService) SetAdmin(ctx context.Context, userID string, isAdmin bool) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", strings.TrimSpace(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("member service: load member: %w", err)
	}

	if profile.IsAdmin && !isAdmin {
		if err := s.ensureNotLastAdmin(ctx, profile.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(&profile).Update("is_admin", isAdmin).Error; err != nil {
		return nil, fmt.Errorf("member service: set admin: %w", err)
	}
	profile.IsAdmin = isAdmin
	return &profile, nil
}

// RemoveMember strips a member of everything attached to them: their items,
// every borrow request they participate in, notification logs, and unused
// invitations they issued. The profile row itself survives with the
// membership and admin flags cleared, since the identity is shared with the
// auth layer. The whole removal runs in one transaction.
func (s *MemberService) RemoveMember(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)

	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("member service: load member: %w", err)
	}

	if profile.IsAdmin {
		if err := s.ensureNotLastAdmin(ctx, profile.ID); err != nil {
			return err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("borrower_id = ? OR owner_id = ?", userID, userID).
			Delete(&models.BorrowRequest{}).Error; err != nil {
			return fmt.Errorf("delete borrow requests: %w", err)
		}
		if err := tx.Where("owner_id = ?", userID).Delete(&models.Item{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.NotificationLog{}).Error; err != nil {
			return fmt.Errorf("delete notification logs: %w", err)
		}
		if err := tx.Where("created_by = ? AND used_at IS NULL", userID).
			Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("delete pending invitations: %w", err)
		}
		if err := tx.Model(&profile).
			Updates(map[string]any{"is_member": false, "is_admin": false}).Error; err != nil {
			return fmt.Errorf("clear membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("member service: remove member: %w", err)
	}
	return nil
}

func (s *MemberService) ensureNotLastAdmin(ctx context.Context, excludeID string) error {
	var admins int64
	if err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("is_admin = ? AND id <> ?", true, excludeID).
		Count(&admins).Error; err != nil {
		return fmt.Errorf("member service: count admins: %w", err)
	}
	if admins == 0 {
		return ErrLastAdmin
	}
	return nil
}
