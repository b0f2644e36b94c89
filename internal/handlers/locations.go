package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/services"
	appErrors "github.com/wollyshare/wollyshare/pkg/errors"
	"github.com/wollyshare/wollyshare/pkg/response"
)

// LocationHandler exposes community pickup locations.
type LocationHandler struct {
	locations *services.LocationService
}

// NewLocationHandler constructs a LocationHandler.
func NewLocationHandler(locations *services.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

type locationRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=500"`
}

type locationUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=120"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// GET /api/locations
func (h *LocationHandler) List(c *gin.Context) {
	if h.locations == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	locations, err := h.locations.ListLocations(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"locations": locations})
}

// POST /api/admin/locations
func (h *LocationHandler) Create(c *gin.Context) {
	if h.locations == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req locationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	location, err := h.locations.CreateLocation(requestContext(c), req.Name, req.Address)
	if err != nil {
		if errors.Is(err, services.ErrLocationExists) {
			response.Error(c, appErrors.NewBadRequest("A location with this name already exists"))
			return
		}
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusCreated, location)
}

// PATCH /api/admin/locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	if h.locations == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req locationUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	location, err := h.locations.UpdateLocation(requestContext(c), c.Param("id"), req.Name, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLocationNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrLocationExists):
			response.Error(c, appErrors.NewBadRequest("A location with this name already exists"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, location)
}

// DELETE /api/admin/locations/:id
func (h *LocationHandler) Delete(c *gin.Context) {
	if h.locations == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	if err := h.locations.DeleteLocation(requestContext(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
