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

// AuthHandler exposes signup and login endpoints.
type AuthHandler struct {
	auth     *services.AuthService
	profiles *services.ProfileService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, profiles *services.ProfileService) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	if h.auth == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req services.SignupInput
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Signup(requestContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInviteNotFound):
			response.Error(c, appErrors.NewBadRequest("Invitation token is invalid"))
		case errors.Is(err, services.ErrInviteExpired):
			response.Error(c, appErrors.NewBadRequest("Invitation token has expired"))
		case errors.Is(err, services.ErrInviteAlreadyUsed):
			response.Error(c, appErrors.NewBadRequest("Invitation has already been used"))
		case errors.Is(err, services.ErrProfileConflict):
			response.Error(c, appErrors.NewBadRequest("Username or email is already taken"))
		default:
			response.Error(c, appErrors.ErrInternalServer)
		}
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	if h.auth == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Login(requestContext(c), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Error(c, appErrors.ErrInvalidCredentials)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	if h.profiles == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.GetProfile(requestContext(c), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, profile)
}
