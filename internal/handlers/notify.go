package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/notify"
	appErrors "github.com/wollyshare/wollyshare/pkg/errors"
	"github.com/wollyshare/wollyshare/pkg/response"
	appValidator "github.com/wollyshare/wollyshare/pkg/validator"
)

const maxBatchEntries = 100

// NotifyHandler exposes the admin batch relay endpoint.
type NotifyHandler struct {
	relay *notify.Relay
}

// NewNotifyHandler constructs a NotifyHandler.
func NewNotifyHandler(relay *notify.Relay) *NotifyHandler {
	return &NotifyHandler{relay: relay}
}

type batchNotifyRequest struct {
	Entries []notify.BatchEntry `json:"entries" validate:"required,min=1"`
}

// POST /api/notify/batch
//
// Forwards each entry independently and reports a per-entry result. The
// endpoint never fails because one recipient is unreachable.
func (h *NotifyHandler) Batch(c *gin.Context) {
	if h.relay == nil {
		response.Error(c, appErrors.New("RELAY_DISABLED", "Chat notifications are not configured", http.StatusServiceUnavailable))
		return
	}

	var req batchNotifyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if len(req.Entries) > maxBatchEntries {
		response.Error(c, appErrors.NewBadRequest("Batch size exceeds limit"))
		return
	}
	for _, entry := range req.Entries {
		if err := appValidator.ValidateStruct(&entry); err != nil {
			response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
			return
		}
	}

	results := h.relay.NotifyBatch(requestContext(c), req.Entries)
	response.Success(c, http.StatusOK, gin.H{"results": results})
}
