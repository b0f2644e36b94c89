package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/internal/realtime"
)

var profileSeq atomic.Int64

func seedMember(t *testing.T, db *gorm.DB, chatID string) models.Profile {
	t.Helper()
	n := profileSeq.Add(1)
	profile := models.Profile{
		Username: fmt.Sprintf("member%d", n),
		Email:    fmt.Sprintf("member%d@example.com", n),
		Password: "$2a$10$hashhashhashhashhashha",
		ChatID:   chatID,
		IsMember: true,
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func seedAdmin(t *testing.T, db *gorm.DB) models.Profile {
	t.Helper()
	profile := seedMember(t, db, "")
	require.NoError(t, db.Model(&profile).Update("is_admin", true).Error)
	profile.IsAdmin = true
	return profile
}

func seedItem(t *testing.T, db *gorm.DB, ownerID, name, category string) models.Item {
	t.Helper()
	item := models.Item{
		OwnerID:             ownerID,
		Name:                name,
		Category:            models.NormalizeCategory(category),
		WeekdayAvailability: models.AvailabilityAnytime,
		WeekendAvailability: models.AvailabilityAnytime,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

type broadcastCall struct {
	stream string
	userID string
	msg    realtime.Message
}

type fakeBroadcaster struct {
	streamCalls []broadcastCall
	userCalls   []broadcastCall
}

func (f *fakeBroadcaster) BroadcastStream(stream string, message realtime.Message) {
	f.streamCalls = append(f.streamCalls, broadcastCall{stream: stream, msg: message})
}

func (f *fakeBroadcaster) BroadcastToUser(stream, userID string, message realtime.Message) {
	f.userCalls = append(f.userCalls, broadcastCall{stream: stream, userID: userID, msg: message})
}
