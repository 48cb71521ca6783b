package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/config"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/persistence"
)

func testStore(t *testing.T) *LocalStore {
	t.Helper()
	cache, err := persistence.NewLocalCache(config.LocalCacheConfig{
		Path: filepath.Join(t.TempDir(), "cache.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cache.Close)
	return NewLocalStore(cache)
}

func TestLocalStoreSetGetRemove(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	raw, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v1"), raw)

	require.NoError(t, store.Set(ctx, "k", []byte("v2")))
	raw, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), raw)

	require.NoError(t, store.Remove(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Remove(ctx, "k"), "removing an absent key is a no-op")
}

func TestLocalStoreJSONRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	in := []domain.DesignRequest{
		{ID: "r1", Name: "Al", Status: domain.RequestStatusPending, CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, store.SetJSON(ctx, KeyDesignRequests, in))

	var out []domain.DesignRequest
	found, err := store.GetJSON(ctx, KeyDesignRequests, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestLocalStoreStringHelpers(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	value, err := store.GetString(ctx, KeyWebhookURL)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetString(ctx, KeyWebhookURL, "https://discord.com/api/webhooks/1/t"))
	value, err = store.GetString(ctx, KeyWebhookURL)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/t", value)
}

func TestLocalRequestsUpsertReplacesByID(t *testing.T) {
	store := testStore(t)
	requests := NewLocalRequests(store)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, requests.Insert(ctx, &domain.DesignRequest{ID: "r1", Status: domain.RequestStatusPending, CreatedAt: base}))

	require.NoError(t, requests.Upsert(ctx, &domain.DesignRequest{ID: "r1", Status: domain.RequestStatusAccepted, CreatedAt: base}))

	listed, err := requests.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.RequestStatusAccepted, listed[0].Status)
}

func TestLocalBroadcastsDismissIsIdempotent(t *testing.T) {
	broadcasts := NewLocalBroadcasts(testStore(t))
	ctx := context.Background()

	require.NoError(t, broadcasts.Dismiss(ctx, "m1"))
	require.NoError(t, broadcasts.Dismiss(ctx, "m1"))
	require.NoError(t, broadcasts.Dismiss(ctx, "m2"))

	dismissed, err := broadcasts.DismissedIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, dismissed, 2)
	_, ok := dismissed["m1"]
	assert.True(t, ok)
}
