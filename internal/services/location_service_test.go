package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wollyshare/wollyshare/internal/database/testutil"
	"github.com/wollyshare/wollyshare/internal/models"
)

func TestCreateLocationRejectsDuplicateName(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewLocationService(db)
	require.NoError(t, err)

	_, err = service.CreateLocation(context.Background(), "bike shed", "behind block C")
	require.NoError(t, err)

	_, err = service.CreateLocation(context.Background(), "bike shed", "elsewhere")
	require.ErrorIs(t, err, ErrLocationExists)
}

func TestListLocationsOrdered(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewLocationService(db)
	require.NoError(t, err)

	_, err = service.CreateLocation(context.Background(), "zulu", "")
	require.NoError(t, err)
	_, err = service.CreateLocation(context.Background(), "alpha", "")
	require.NoError(t, err)

	locations, err := service.ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 2)
	require.Equal(t, "alpha", locations[0].Name)
}

func TestUpdateLocation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewLocationService(db)
	require.NoError(t, err)

	location, err := service.CreateLocation(context.Background(), "old name", "old address")
	require.NoError(t, err)

	name := "new name"
	updated, err := service.UpdateLocation(context.Background(), location.ID, &name, nil)
	require.NoError(t, err)
	require.Equal(t, "new name", updated.Name)
	require.Equal(t, "old address", updated.Address)
}

func TestDeleteLocationDetachesReferences(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewLocationService(db)
	require.NoError(t, err)

	location, err := service.CreateLocation(context.Background(), "shed", "")
	require.NoError(t, err)

	member := seedMember(t, db, "")
	require.NoError(t, db.Model(&member).Update("location_id", location.ID).Error)
	item := seedItem(t, db, member.ID, "drill", models.CategoryTools)
	require.NoError(t, db.Model(&item).Update("location_id", location.ID).Error)

	require.NoError(t, service.DeleteLocation(context.Background(), location.ID))

	var profile models.Profile
	require.NoError(t, db.First(&profile, "id = ?", member.ID).Error)
	require.Nil(t, profile.LocationID)

	var stored models.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	require.Nil(t, stored.LocationID)
}

func TestDeleteLocationNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewLocationService(db)
	require.NoError(t, err)

	require.ErrorIs(t, service.DeleteLocation(context.Background(), "missing"), ErrLocationNotFound)
}
