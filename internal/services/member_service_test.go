package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wollyshare/wollyshare/internal/database/testutil"
	"github.com/wollyshare/wollyshare/internal/models"
	"github.com/wollyshare/wollyshare/pkg/crypto"
)

func TestListMembersWithItemCounts(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	active := seedMember(t, db, "")
	empty := seedMember(t, db, "")
	seedItem(t, db, active.ID, "drill", models.CategoryTools)
	seedItem(t, db, active.ID, "saw", models.CategoryTools)

	service, err := NewMemberService(db)
	require.NoError(t, err)

	members, err := service.ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)

	counts := map[string]int64{}
	for _, member := range members {
		counts[member.ID] = member.ItemCount
	}
	require.EqualValues(t, 2, counts[active.ID])
	require.EqualValues(t, 0, counts[empty.ID])
}

func TestAddMemberHashesPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewMemberService(db)
	require.NoError(t, err)

	profile, err := service.AddMember(context.Background(), AddMemberInput{
		Username: "Helga",
		Email:    "Helga@Example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)
	require.Equal(t, "helga", profile.Username)
	require.Equal(t, "helga@example.com", profile.Email)
	require.True(t, profile.IsMember)
	require.NotEqual(t, "supersecret1", profile.Password)
	require.True(t, crypto.VerifyPassword(profile.Password, "supersecret1"))
}

func TestAddMemberDuplicateUsername(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	existing := seedMember(t, db, "")

	service, err := NewMemberService(db)
	require.NoError(t, err)

	_, err = service.AddMember(context.Background(), AddMemberInput{
		Username: existing.Username,
		Email:    "unique@example.com",
		Password: "supersecret1",
	})
	require.ErrorIs(t, err, ErrProfileConflict)
}

func TestRemoveMemberCascades(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedAdmin(t, db)
	member := seedMember(t, db, "chat-1")
	other := seedMember(t, db, "")
	ownItem := seedItem(t, db, member.ID, "drill", models.CategoryTools)
	otherItem := seedItem(t, db, other.ID, "saw", models.CategoryTools)

	borrowService, err := NewBorrowService(db)
	require.NoError(t, err)
	_, err = borrowService.CreateRequest(context.Background(), other.ID, CreateBorrowInput{ItemID: ownItem.ID})
	require.NoError(t, err)
	_, err = borrowService.CreateRequest(context.Background(), member.ID, CreateBorrowInput{ItemID: otherItem.ID})
	require.NoError(t, err)

	service, err := NewMemberService(db)
	require.NoError(t, err)
	require.NoError(t, service.RemoveMember(context.Background(), member.ID))

	var items, requests int64
	require.NoError(t, db.Model(&models.Item{}).Where("owner_id = ?", member.ID).Count(&items).Error)
	require.NoError(t, db.Model(&models.BorrowRequest{}).
		Where("borrower_id = ? OR owner_id = ?", member.ID, member.ID).
		Count(&requests).Error)
	require.Zero(t, items)
	require.Zero(t, requests)

	// The profile itself survives with membership revoked, keeping the
	// identity intact for the auth layer.
	var remaining models.Profile
	require.NoError(t, db.First(&remaining, "id = ?", member.ID).Error)
	require.False(t, remaining.IsMember)
	require.False(t, remaining.IsAdmin)

	// The other member's listing survives.
	var otherItems int64
	require.NoError(t, db.Model(&models.Item{}).Where("owner_id = ?", other.ID).Count(&otherItems).Error)
	require.EqualValues(t, 1, otherItems)
}

func TestRemoveMemberRefusesLastAdmin(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	admin := seedAdmin(t, db)

	service, err := NewMemberService(db)
	require.NoError(t, err)

	require.ErrorIs(t, service.RemoveMember(context.Background(), admin.ID), ErrLastAdmin)
}

func TestSetAdminRefusesLastAdminDemotion(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	admin := seedAdmin(t, db)

	service, err := NewMemberService(db)
	require.NoError(t, err)

	_, err = service.SetAdmin(context.Background(), admin.ID, false)
	require.ErrorIs(t, err, ErrLastAdmin)

	second := seedMember(t, db, "")
	promoted, err := service.SetAdmin(context.Background(), second.ID, true)
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin)

	demoted, err := service.SetAdmin(context.Background(), admin.ID, false)
	require.NoError(t, err)
	require.False(t, demoted.IsAdmin)
}

func TestRemoveMemberNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewMemberService(db)
	require.NoError(t, err)

	require.ErrorIs(t, service.RemoveMember(context.Background(), "missing"), ErrProfileNotFound)
}
