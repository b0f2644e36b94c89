package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/logger"
	"github.com/wollyshare/wollyshare/pkg/metrics"
)

// Sentinel errors returned by the relay. Callers in the borrow workflow treat
// both as non-fatal: the request itself always succeeds.
var (
	// ErrMissingChannel means the target profile has no chat id configured.
	ErrMissingChannel = errors.New("notify: profile has no chat channel")

	// ErrDelivery wraps a failed send attempt.
	ErrDelivery = errors.New("notify: delivery failed")
)

// Relay resolves a profile's chat channel and forwards a message through the
// configured Sender. Every attempt is recorded in the notification log; log
// writes are best effort and never fail the caller.
type Relay struct {
	db     *gorm.DB
	sender Sender
	log    *zap.Logger
}

// NewRelay creates a chat notification relay.
func NewRelay(db *gorm.DB, sender Sender) (*Relay, error) {
	if db == nil {
		return nil, errors.New("notify: db is required")
	}
	if sender == nil {
		return nil, errors.New("notify: sender is required")
	}
	return &Relay{
		db:     db,
		sender: sender,
		log:    logger.WithModule("notify"),
	}, nil
}

// Notify delivers text to the profile's chat channel. A single send attempt is
// made; sends are not idempotent so failures are reported, never retried.
func (r *Relay) Notify(ctx context.Context, userID, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrMissingChannel)
	}

	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.record(ctx, userID, "", models.DeliveryMissingChannel, "profile not found", text)
			return fmt.Errorf("%w: profile %s not found", ErrMissingChannel, userID)
		}
		return fmt.Errorf("notify: load profile: %w", err)
	}

	chatID := strings.TrimSpace(profile.ChatID)
	if chatID == "" {
		r.record(ctx, userID, "", models.DeliveryMissingChannel, "no chat id on profile", text)
		return fmt.Errorf("%w: profile %s", ErrMissingChannel, userID)
	}

	if err := r.sender.Send(ctx, chatID, text); err != nil {
		r.record(ctx, userID, chatID, models.DeliveryFailed, err.Error(), text)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	r.record(ctx, userID, chatID, models.DeliveryDelivered, "", text)
	return nil
}

// BatchEntry is one message in a batch forward request.
type BatchEntry struct {
	UserID string `json:"user_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

// BatchResult reports the outcome for one batch entry.
type BatchResult struct {
	UserID string `json:"user_id"`
	Result string `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// NotifyBatch forwards each entry independently. One failing entry never
// aborts the rest; every entry gets a result row.
func (r *Relay) NotifyBatch(ctx context.Context, entries []BatchEntry) []BatchResult {
	results := make([]BatchResult, 0, len(entries))
	for _, entry := range entries {
		result := BatchResult{UserID: entry.UserID, Result: models.DeliveryDelivered}

		err := r.Notify(ctx, entry.UserID, entry.Text)
		switch {
		case err == nil:
		case errors.Is(err, ErrMissingChannel):
			result.Result = models.DeliveryMissingChannel
			result.Reason = err.Error()
		default:
			result.Result = models.DeliveryFailed
			result.Reason = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (r *Relay) record(ctx context.Context, userID, chatID, result, reason, text string) {
	metrics.ChatDeliveries.WithLabelValues(result).Inc()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		payload = nil
	}

	entry := models.NotificationLog{
		UserID:  userID,
		ChatID:  chatID,
		Result:  result,
		Reason:  reason,
		Payload: datatypes.JSON(payload),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.log.Warn("notification log write failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
