package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/database/testutil"
	"github.com/wollyshare/wollyshare/internal/models"
)

type fakeSender struct {
	calls []struct{ chatID, text string }
	err   error
}

func (f *fakeSender) Send(ctx context.Context, chatID, text string) error {
	f.calls = append(f.calls, struct{ chatID, text string }{chatID, text})
	return f.err
}

func seedProfile(t *testing.T, db *gorm.DB, chatID string) models.Profile {
	t.Helper()
	profile := models.Profile{
		Username: "ada-" + chatID,
		Email:    "ada-" + chatID + "@example.com",
		Password: "hashed",
		ChatID:   chatID,
		IsMember: true,
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func TestRelayNotifyDelivers(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	sender := &fakeSender{}
	relay, err := NewRelay(db, sender)
	require.NoError(t, err)

	profile := seedProfile(t, db, "chat-42")

	require.NoError(t, relay.Notify(context.Background(), profile.ID, "your request was approved"))

	require.Len(t, sender.calls, 1)
	require.Equal(t, "chat-42", sender.calls[0].chatID)

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry, "user_id = ?", profile.ID).Error)
	require.Equal(t, models.DeliveryDelivered, entry.Result)
	require.Equal(t, "chat-42", entry.ChatID)
	require.Contains(t, string(entry.Payload), "your request was approved")
}

func TestRelayNotifyMissingChannel(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	sender := &fakeSender{}
	relay, err := NewRelay(db, sender)
	require.NoError(t, err)

	profile := seedProfile(t, db, "")

	err = relay.Notify(context.Background(), profile.ID, "hello")
	require.ErrorIs(t, err, ErrMissingChannel)
	require.Empty(t, sender.calls)

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry, "user_id = ?", profile.ID).Error)
	require.Equal(t, models.DeliveryMissingChannel, entry.Result)
}

func TestRelayNotifyUnknownProfile(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	relay, err := NewRelay(db, &fakeSender{})
	require.NoError(t, err)

	err = relay.Notify(context.Background(), "no-such-user", "hello")
	require.ErrorIs(t, err, ErrMissingChannel)
}

func TestRelayNotifySendFailure(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	sender := &fakeSender{err: errors.New("bot api down")}
	relay, err := NewRelay(db, sender)
	require.NoError(t, err)

	profile := seedProfile(t, db, "chat-1")

	err = relay.Notify(context.Background(), profile.ID, "hello")
	require.ErrorIs(t, err, ErrDelivery)
	require.Len(t, sender.calls, 1)

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry, "user_id = ?", profile.ID).Error)
	require.Equal(t, models.DeliveryFailed, entry.Result)
	require.Contains(t, entry.Reason, "bot api down")
}

func TestRelayNotifyBatchContinuesPastFailures(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	sender := &fakeSender{}
	relay, err := NewRelay(db, sender)
	require.NoError(t, err)

	withChat := seedProfile(t, db, "chat-a")
	withoutChat := seedProfile(t, db, "")

	results := relay.NotifyBatch(context.Background(), []BatchEntry{
		{UserID: withoutChat.ID, Text: "first"},
		{UserID: withChat.ID, Text: "second"},
	})

	require.Len(t, results, 2)
	require.Equal(t, models.DeliveryMissingChannel, results[0].Result)
	require.Equal(t, models.DeliveryDelivered, results[1].Result)
	require.Len(t, sender.calls, 1)
	require.Equal(t, "second", sender.calls[0].text)
}

func TestNewRelayRequiresDependencies(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	_, err := NewRelay(nil, &fakeSender{})
	require.Error(t, err)

	_, err = NewRelay(db, nil)
	require.Error(t, err)
}
