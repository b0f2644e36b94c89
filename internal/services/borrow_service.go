package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/internal/notify"
	"github.com/wollyshare/wollyshare/internal/realtime"
	"github.com/wollyshare/wollyshare/pkg/logger"
	"github.com/wollyshare/wollyshare/pkg/metrics"
)

var (
	// ErrRequestNotFound indicates the borrow request does not exist.
	ErrRequestNotFound = errors.New("borrow: request not found")
	// ErrOwnItem signals an attempt to borrow one's own item.
	ErrOwnItem = errors.New("borrow: cannot request own item")
	// ErrNotRequestOwner signals that the actor does not own the requested item.
	ErrNotRequestOwner = errors.New("borrow: not the item owner")
	// ErrInvalidDecision signals a status outside approved/rejected.
	ErrInvalidDecision = errors.New("borrow: invalid decision")
)

// Notifier forwards a chat message to a user's configured channel. The relay
// satisfies it; borrow flows treat every Notify error as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// BorrowOption customises BorrowService behaviour.
type BorrowOption func(*BorrowService)

// WithBorrowNotifier enables chat notifications on request creation.
func WithBorrowNotifier(n Notifier) BorrowOption {
	return func(s *BorrowService) {
		s.notifier = n
	}
}

// WithBorrowBroadcaster wires realtime change events for borrow mutations.
func WithBorrowBroadcaster(b Broadcaster) BorrowOption {
	return func(s *BorrowService) {
		s.broadcaster = b
	}
}

// BorrowService implements the borrow request lifecycle: borrowers open
// pending requests, item owners approve or reject them. Concurrent decisions
// are not serialized; the last write wins at the storage layer.
type BorrowService struct {
	db          *gorm.DB
	notifier    Notifier
	broadcaster Broadcaster
	log         *zap.Logger
}

// NewBorrowService constructs a BorrowService.
func NewBorrowService(db *gorm.DB, opts ...BorrowOption) (*BorrowService, error) {
	if db == nil {
		return nil, errors.New("borrow service: db is required")
	}

	service := &BorrowService{
		db:  db,
		log: logger.WithModule("borrow"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateBorrowInput carries the borrower's request.
type CreateBorrowInput struct {
	ItemID  string `json:"item_id" validate:"required"`
	Message string `json:"message" validate:"max=2000"`
}

// CreateRequest opens a pending borrow request against an item. The item
// owner's id is copied onto the request at creation time. Chat notifications
// to both parties are best effort: failures are logged and counted, never
// returned to the borrower.
func (s *BorrowService) CreateRequest(ctx context.Context, borrowerID string, input CreateBorrowInput) (*models.BorrowRequest, error) {
	ctx = ensureContext(ctx)
	borrowerID = strings.TrimSpace(borrowerID)
	if borrowerID == "" {
		return nil, errors.New("borrow service: borrower id is required")
	}

	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", strings.TrimSpace(input.ItemID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("borrow service: load item: %w", err)
	}
	if item.OwnerID == borrowerID {
		return nil, ErrOwnItem
	}

	request := models.BorrowRequest{
		ItemID:     item.ID,
		BorrowerID: borrowerID,
		OwnerID:    item.OwnerID,
		Message:    strings.TrimSpace(input.Message),
		Status:     models.BorrowStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("borrow service: create request: %w", err)
	}
	request.Item = &item

	s.notifyCreated(ctx, &request, &item)
	s.broadcastRequest(realtime.EventInsert, &request)
	return &request, nil
}

// SetStatus records the owner's decision on a request. Only approved and
// rejected are accepted, validated before any write. Concurrent or repeated
// decisions overwrite each other; there is no finality guard.
func (s *BorrowService) SetStatus(ctx context.Context, actorID, requestID, status string) (*models.BorrowRequest, error) {
	ctx = ensureContext(ctx)

	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsDecision(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, status)
	}

	var request models.BorrowRequest
	if err := s.db.WithContext(ctx).
		Preload("Item").
		First(&request, "id = ?", strings.TrimSpace(requestID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("borrow service: load request: %w", err)
	}

	if request.OwnerID != strings.TrimSpace(actorID) {
		return nil, ErrNotRequestOwner
	}

	err := s.db.WithContext(ctx).
		Model(&models.BorrowRequest{}).
		Where("id = ?", request.ID).
		Update("status", status).Error
	if err != nil {
		return nil, fmt.Errorf("borrow service: update status: %w", err)
	}

	request.Status = status
	metrics.BorrowStatusTransitions.WithLabelValues(status).Inc()

	s.broadcastRequest(realtime.EventUpdate, &request)
	return &request, nil
}

// ListIncoming returns pending requests against the owner's items, newest
// first, with item and borrower rows attached in batched queries.
func (s *BorrowService) ListIncoming(ctx context.Context, ownerID string) ([]models.BorrowRequest, error) {
	ctx = ensureContext(ctx)

	var requests []models.BorrowRequest
	err := s.db.WithContext(ctx).
		Preload("Item").
		Preload("Borrower").
		Where("owner_id = ? AND status = ?", strings.TrimSpace(ownerID), models.BorrowStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("borrow service: list incoming: %w", err)
	}
	return requests, nil
}

// ListHistory returns every request the user participates in, as borrower or
// owner, newest first.
func (s *BorrowService) ListHistory(ctx context.Context, userID string) ([]models.BorrowRequest, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)

	var requests []models.BorrowRequest
	err := s.db.WithContext(ctx).
		Preload("Item").
		Preload("Borrower").
		Preload("Owner").
		Where("borrower_id = ? OR owner_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("borrow service: list history: %w", err)
	}
	return requests, nil
}

func (s *BorrowService) notifyCreated(ctx context.Context, request *models.BorrowRequest, item *models.Item) {
	outcome := "skipped"
	defer func() {
		metrics.BorrowRequestsCreated.WithLabelValues(outcome).Inc()
	}()

	if s.notifier == nil {
		return
	}

	ownerErr := s.notifier.Notify(ctx, request.OwnerID,
		fmt.Sprintf("New borrow request for %q: %s", item.Name, request.Message))
	borrowerErr := s.notifier.Notify(ctx, request.BorrowerID,
		fmt.Sprintf("Your request for %q was sent to the owner.", item.Name))

	switch {
	case ownerErr == nil && borrowerErr == nil:
		outcome = "notified"
	case ownerErr != nil && borrowerErr != nil:
		outcome = "failed"
	default:
		outcome = "partial"
	}

	if err := multierr.Append(ownerErr, borrowerErr); err != nil {
		if errors.Is(ownerErr, notify.ErrMissingChannel) && errors.Is(borrowerErr, notify.ErrMissingChannel) {
			outcome = "skipped"
		}
		s.log.Warn("borrow request notification incomplete",
			zap.String("request_id", request.ID),
			zap.Error(err))
	}
}

func (s *BorrowService) broadcastRequest(event string, request *models.BorrowRequest) {
	if s.broadcaster == nil {
		return
	}
	message := realtime.Message{Event: event, Data: request}
	s.broadcaster.BroadcastToUser(realtime.StreamBorrowRequests, request.OwnerID, message)
	s.broadcaster.BroadcastToUser(realtime.StreamBorrowRequests, request.BorrowerID, message)
	// Stats widgets watch the catalog stream without a user filter.
	s.broadcaster.BroadcastStream(realtime.StreamCatalog, message)
}
