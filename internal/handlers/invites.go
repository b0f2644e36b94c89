package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/middleware"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/internal/services"
	appErrors "github.com/wollyshare/wollyshare/pkg/errors"
	"github.com/wollyshare/wollyshare/pkg/response"
)

// InviteHandler exposes admin invitation management plus the public token
// info endpoint used by the signup form.
type InviteHandler struct {
	invites *services.InviteService
}

// NewInviteHandler constructs an InviteHandler.
func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type inviteDTO struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedBy string     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	Status    string     `json:"status"`
}

type inviteCreatedResponse struct {
	Invite inviteDTO `json:"invite"`
	Token  string    `json:"token"`
	Link   string    `json:"link,omitempty"`
}

// POST /api/admin/invites
func (h *InviteHandler) Create(c *gin.Context) {
	if h.invites == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, link, invite, err := h.invites.CreateInvitation(requestContext(c), req.Email, userID)
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusCreated, inviteCreatedResponse{
		Invite: toInviteDTO(invite, time.Now()),
		Token:  token,
		Link:   link,
	})
}

// GET /api/admin/invites
func (h *InviteHandler) List(c *gin.Context) {
	if h.invites == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	invites, err := h.invites.ListInvitations(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	now := time.Now()
	items := make([]inviteDTO, 0, len(invites))
	for i := range invites {
		items = append(items, toInviteDTO(&invites[i], now))
	}

	response.Success(c, http.StatusOK, gin.H{"invites": items})
}

// DELETE /api/admin/invites/:id
func (h *InviteHandler) Revoke(c *gin.Context) {
	if h.invites == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	if err := h.invites.RevokeInvitation(requestContext(c), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrInviteNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrInviteAlreadyUsed):
			response.Error(c, appErrors.NewBadRequest("Invitation has already been used"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/admin/invites/qr?token=...
//
// The QR image encodes the signup link for a raw token the admin just
// received from Create; tokens are not recoverable from storage.
func (h *InviteHandler) QR(c *gin.Context) {
	if h.invites == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.NewBadRequest("Invitation token is required"))
		return
	}

	png, err := h.invites.QRCode(token)
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/auth/invite?token=...
func (h *InviteHandler) Info(c *gin.Context) {
	if h.invites == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.NewBadRequest("Invitation token is required"))
		return
	}

	invite, err := h.invites.VerifyToken(requestContext(c), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInviteNotFound):
			response.Error(c, appErrors.NewBadRequest("Invitation token is invalid"))
		case errors.Is(err, services.ErrInviteExpired):
			response.Error(c, appErrors.NewBadRequest("Invitation token has expired"))
		case errors.Is(err, services.ErrInviteAlreadyUsed):
			response.Error(c, appErrors.NewBadRequest("Invitation has already been used"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"email":      invite.Email,
		"expires_at": invite.ExpiresAt,
	})
}

func toInviteDTO(invite *models.Invitation, now time.Time) inviteDTO {
	status := "pending"
	switch {
	case invite.Used():
		status = "used"
	case invite.ExpiresAt.Before(now):
		status = "expired"
	}

	return inviteDTO{
		ID:        invite.ID,
		Email:     invite.Email,
		CreatedBy: invite.CreatedBy,
		CreatedAt: invite.CreatedAt,
		ExpiresAt: invite.ExpiresAt,
		UsedAt:    invite.UsedAt,
		Status:    status,
	}
}
