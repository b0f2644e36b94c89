package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/auth"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/crypto"
)

// ErrInvalidCredentials signals a failed username/password check.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// AuthService implements invitation-gated signup and password login.
type AuthService struct {
	db      *gorm.DB
	jwt     *auth.JWTService
	invites *InviteService
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, jwtService *auth.JWTService, invites *InviteService) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	if invites == nil {
		return nil, errors.New("auth service: invite service is required")
	}
	return &AuthService{db: db, jwt: jwtService, invites: invites}, nil
}

// SignupInput carries the invitation token and the new member's credentials.
type SignupInput struct {
	Token    string `json:"token" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

// AuthResult bundles the signed token with the authenticated profile.
type AuthResult struct {
	AccessToken string          `json:"access_token"`
	Profile     *models.Profile `json:"profile"`
}

// Signup consumes an invitation and creates the member account in a single
// transaction, so a failed profile insert never burns the invitation. The
// signup email must match the invited address.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	profile := models.Profile{
		Username: strings.ToLower(strings.TrimSpace(input.Username)),
		Email:    email,
		Password: hash,
		FullName: strings.TrimSpace(input.FullName),
		IsMember: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invite, err := s.invites.withDB(tx).VerifyToken(ctx, input.Token)
		if err != nil {
			return err
		}
		if invite.Email != email {
			return fmt.Errorf("%w: email does not match invitation", ErrInviteNotFound)
		}

		if _, err := s.invites.withDB(tx).ConsumeToken(ctx, input.Token); err != nil {
			return err
		}

		if err := tx.Create(&profile).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrProfileConflict
			}
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) || errors.Is(err, ErrInviteExpired) ||
			errors.Is(err, ErrInviteAlreadyUsed) || errors.Is(err, ErrProfileConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("auth service: signup: %w", err)
	}

	return s.issueToken(&profile)
}

// Login verifies the credentials and issues an access token. Username and
// email are both accepted as the login identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: load profile: %w", err)
	}

	if !crypto.VerifyPassword(profile.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(&profile)
}

func (s *AuthService) issueToken(profile *models.Profile) (*AuthResult, error) {
	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:   profile.ID,
		Username: profile.Username,
		IsMember: profile.IsMember,
		IsAdmin:  profile.IsAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: sign token: %w", err)
	}
	return &AuthResult{AccessToken: token, Profile: profile}, nil
}

// withDB returns a shallow copy of the invite service bound to tx so invite
// reads and the used_at update join the caller's transaction.
func (s *InviteService) withDB(tx *gorm.DB) *InviteService {
	clone := *s
	clone.db = tx
	return &clone
}
