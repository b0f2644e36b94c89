package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/wollyshare/wollyshare/internal/database/testutil"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/internal/services"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func TestPruneNotificationLogs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	oldLog := models.NotificationLog{UserID: "user-old", Result: "delivered"}
	require.NoError(t, db.Create(&oldLog).Error)
	require.NoError(t, db.Model(&oldLog).Update("created_at", now.AddDate(0, 0, -120)).Error)

	recentLog := models.NotificationLog{UserID: "user-recent", Result: "failed"}
	require.NoError(t, db.Create(&recentLog).Error)
	require.NoError(t, db.Model(&recentLog).Update("created_at", now.AddDate(0, 0, -3)).Error)

	removed, err := PruneNotificationLogs(context.Background(), db, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var count int64
	require.NoError(t, db.Model(&models.NotificationLog{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	clock := fixedClock{current: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)}

	invites, err := services.NewInviteService(db,
		services.WithInviteExpiry(time.Hour),
		services.WithInviteClock(clock.Now),
	)
	require.NoError(t, err)

	_, _, expired, err := invites.CreateInvitation(context.Background(), "expired@example.com", "")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Invitation{}).Where("id = ?", expired.ID).
		Update("expires_at", clock.Now().Add(-2*time.Hour)).Error)

	_, _, active, err := invites.CreateInvitation(context.Background(), "active@example.com", "")
	require.NoError(t, err)

	oldLog := models.NotificationLog{UserID: "user-1", Result: "delivered"}
	require.NoError(t, db.Create(&oldLog).Error)
	require.NoError(t, db.Model(&oldLog).Update("created_at", clock.Now().AddDate(0, 0, -30)).Error)

	c := NewCleaner(db, invites,
		WithNow(clock.Now),
		WithLogRetentionDays(7),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var inviteCount int64
	require.NoError(t, db.Model(&models.Invitation{}).Count(&inviteCount).Error)
	require.Equal(t, int64(1), inviteCount)

	var remaining models.Invitation
	require.NoError(t, db.First(&remaining, "id = ?", active.ID).Error)

	var logCount int64
	require.NoError(t, db.Model(&models.NotificationLog{}).Count(&logCount).Error)
	require.Equal(t, int64(0), logCount)
}

func TestCleanerStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	invites, err := services.NewInviteService(db)
	require.NoError(t, err)

	c := NewCleaner(db, invites,
		WithInviteSchedule("@every 1h"),
		WithLogSchedule("@every 1h"),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.Start())
	<-c.Stop().Done()
}
