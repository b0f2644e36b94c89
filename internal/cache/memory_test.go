package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stats", []byte(`{"items":3}`), time.Minute))

	value, ok, err := store.Get(ctx, "stats")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"items":3}`), value)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stats", []byte("v"), 30*time.Second))

	current = current.Add(29 * time.Second)
	_, ok, err := store.Get(ctx, "stats")
	require.NoError(t, err)
	require.True(t, ok)

	current = current.Add(2 * time.Second)
	_, ok, err = store.Get(ctx, "stats")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, store.Delete(ctx, "a", "missing"))

	_, ok, _ := store.Get(ctx, "a")
	require.False(t, ok)
	_, ok, _ = store.Get(ctx, "b")
	require.True(t, ok)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("original")
	require.NoError(t, store.Set(ctx, "k", payload, 0))
	payload[0] = 'X'

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("original"), value)
}
