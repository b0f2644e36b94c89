package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wollyshare/wollyshare/internal/database/testutil"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/backoff"
)

func TestGetProfileLoadsLocation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	member := seedMember(t, db, "")

	var location models.CommunityLocation
	require.NoError(t, db.First(&location, "name = ?", "community-hall").Error)
	require.NoError(t, db.Model(&member).Update("location_id", location.ID).Error)

	service, err := NewProfileService(db)
	require.NoError(t, err)

	profile, err := service.GetProfile(context.Background(), member.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Location)
	require.Equal(t, "community-hall", profile.Location.Name)
}

func TestGetProfileNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewProfileService(db)
	require.NoError(t, err)

	_, err = service.GetProfile(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetProfileWithRetryDoesNotRetryMissingProfile(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	attempts := 0
	sleeper := backoff.WithSleeper(func(ctx context.Context, d time.Duration) error {
		attempts++
		return nil
	})

	service, err := NewProfileService(db, WithProfileRetry(3, time.Millisecond, sleeper))
	require.NoError(t, err)

	_, err = service.GetProfileWithRetry(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProfileNotFound)
	require.Zero(t, attempts)
}

func TestGetProfileWithRetryReturnsProfile(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	member := seedMember(t, db, "chat-1")

	service, err := NewProfileService(db)
	require.NoError(t, err)

	profile, err := service.GetProfileWithRetry(context.Background(), member.ID)
	require.NoError(t, err)
	require.Equal(t, member.ID, profile.ID)
}

func TestUpdateProfilePartialFields(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	member := seedMember(t, db, "old-chat")

	service, err := NewProfileService(db)
	require.NoError(t, err)

	fullName := "Ada Lovelace"
	chatID := "new-chat"
	updated, err := service.UpdateProfile(context.Background(), member.ID, UpdateProfileInput{
		FullName: &fullName,
		ChatID:   &chatID,
	})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", updated.FullName)
	require.Equal(t, "new-chat", updated.ChatID)
	require.Equal(t, member.Username, updated.Username)
}

func TestUpdateProfileNoChanges(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	member := seedMember(t, db, "")

	service, err := NewProfileService(db)
	require.NoError(t, err)

	profile, err := service.UpdateProfile(context.Background(), member.ID, UpdateProfileInput{})
	require.NoError(t, err)
	require.Equal(t, member.ID, profile.ID)
}

func TestGetProfileByUsername(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	member := seedMember(t, db, "")

	service, err := NewProfileService(db)
	require.NoError(t, err)

	profile, err := service.GetProfileByUsername(context.Background(), member.Username)
	require.NoError(t, err)
	require.Equal(t, member.ID, profile.ID)

	_, err = service.GetProfileByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrProfileNotFound)
}
