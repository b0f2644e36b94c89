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

// BorrowHandler exposes the borrow request lifecycle.
type BorrowHandler struct {
	borrows *services.BorrowService
}

// NewBorrowHandler constructs a BorrowHandler.
func NewBorrowHandler(borrows *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrows: borrows}
}

type decideRequest struct {
	Status string `json:"status" validate:"required"`
}

// POST /api/borrow-requests
func (h *BorrowHandler) Create(c *gin.Context) {
	if h.borrows == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.CreateBorrowInput
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.borrows.CreateRequest(requestContext(c), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrOwnItem):
			response.Error(c, appErrors.NewBadRequest("You cannot borrow your own item"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// PATCH /api/borrow-requests/:id
func (h *BorrowHandler) Decide(c *gin.Context) {
	if h.borrows == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req decideRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.borrows.SetStatus(requestContext(c), userID, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrNotRequestOwner):
			response.Error(c, appErrors.ErrForbidden)
		case errors.Is(err, services.ErrInvalidDecision):
			response.Error(c, appErrors.NewBadRequest("Status must be approved or rejected"))
		default:
			response.Error(c, appErrors.ErrBackend.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusOK, request)
}

// GET /api/borrow-requests/incoming
func (h *BorrowHandler) Incoming(c *gin.Context) {
	if h.borrows == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.borrows.ListIncoming(requestContext(c), userID)
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

// GET /api/borrow-requests/history
func (h *BorrowHandler) History(c *gin.Context) {
	if h.borrows == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.borrows.ListHistory(requestContext(c), userID)
	if err != nil {
		response.Error(c, appErrors.ErrBackend.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}
