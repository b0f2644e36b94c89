package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/middleware"
	"github.com/wollyshare/wollyshare/internal/services"
	appErrors "github.com/wollyshare/wollyshare/pkg/errors"
	"github.com/wollyshare/wollyshare/pkg/response"
)

// MemberHandler exposes admin member management.
type MemberHandler struct {
	members *services.MemberService
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// GET /api/admin/members
func (h *MemberHandler) List(c *gin.Context) {
	if h.members == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	members, err := h.members.ListMembers(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"members": members})
}

// POST /api/admin/members
func (h *MemberHandler) Add(c *gin.Context) {
	if h.members == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req services.AddMemberInput
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.AddMember(requestContext(c), req)
	if err != nil {
		if errors.Is(err, services.ErrProfileConflict) {
			response.Error(c, appErrors.NewBadRequest("Username or email is already taken"))
			return
		}
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusCreated, member)
}

// PATCH /api/admin/members/:id/admin
func (h *MemberHandler) SetAdmin(c *gin.Context) {
	if h.members == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req setAdminRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.SetAdmin(requestContext(c), c.Param("id"), req.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrLastAdmin):
			response.Error(c, appErrors.NewBadRequest("Cannot demote the last remaining admin"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, member)
}

// DELETE /api/admin/members/:id
func (h *MemberHandler) Remove(c *gin.Context) {
	if h.members == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	targetID := c.Param("id")
	if targetID == c.GetString(middleware.CtxUserIDKey) {
		response.Error(c, appErrors.NewBadRequest("You cannot remove your own account"))
		return
	}

	if err := h.members.RemoveMember(requestContext(c), targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrProfileNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrLastAdmin):
			response.Error(c, appErrors.NewBadRequest("Cannot remove the last remaining admin"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
