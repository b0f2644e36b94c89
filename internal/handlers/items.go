package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/middleware"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/internal/services"
	appErrors "github.com/wollyshare/wollyshare/pkg/errors"
	"github.com/wollyshare/wollyshare/pkg/response"
)

// ItemHandler exposes the shared item catalog.
type ItemHandler struct {
	items *services.ItemService
}

// NewItemHandler constructs an ItemHandler.
func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// GET /api/items
func (h *ItemHandler) List(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	filter := services.ItemFilter{
		Category:   c.Query("category"),
		OwnerID:    c.Query("owner_id"),
		LocationID: c.Query("location_id"),
		Search:     c.Query("search"),
	}

	items, err := h.items.ListItems(requestContext(c), filter)
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// GET /api/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	item, err := h.items.GetItem(requestContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, item)
}

// POST /api/items
func (h *ItemHandler) Create(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.CreateItemInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.items.CreateItem(requestContext(c), userID, req)
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// PATCH /api/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.UpdateItemInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.items.UpdateItem(requestContext(c), userID, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrNotOwner):
			response.Error(c, appErrors.ErrForbidden)
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, item)
}

// DELETE /api/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	isAdmin := false
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		isAdmin = claims.IsAdmin
	}

	if err := h.items.DeleteItem(requestContext(c), userID, c.Param("id"), isAdmin); err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrNotOwner):
			response.Error(c, appErrors.ErrForbidden)
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/stats
func (h *ItemHandler) Stats(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	stats, err := h.items.Stats(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// GET /api/items/categories
func (h *ItemHandler) Categories(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"categories": models.Categories()})
}

// GET /api/items/mine
func (h *ItemHandler) Mine(c *gin.Context) {
	if h.items == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.items.ListItems(requestContext(c), services.ItemFilter{OwnerID: userID})
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}
