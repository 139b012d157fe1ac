package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadsagent/internal/core"
)

func testEntry(leadID string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		LeadID:    leadID,
		Kind:      core.KindScored,
		Payload:   []byte(`{"score":4}`),
		Decision:  core.DecisionPromising,
		Score:     4,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	entry := testEntry("jane@acme.io", time.Hour)
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "jane@acme.io")
	require.NoError(t, err)
	assert.Equal(t, entry.Kind, got.Kind)
	assert.Equal(t, entry.Payload, got.Payload)
	assert.Equal(t, entry.Decision, got.Decision)
	assert.Equal(t, entry.Score, got.Score)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	_, err := c.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiredEntryIsMiss(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("jane@acme.io", -time.Minute)))

	_, err := c.Get(ctx, "jane@acme.io")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("jane@acme.io", time.Hour)))
	require.NoError(t, c.Delete(ctx, "jane@acme.io"))

	_, err := c.Get(ctx, "jane@acme.io")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("stale", -time.Minute)))
	require.NoError(t, c.Set(ctx, testEntry("fresh", time.Hour)))

	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryCacheGetReturnsCopy(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("jane@acme.io", time.Hour)))

	got, err := c.Get(ctx, "jane@acme.io")
	require.NoError(t, err)
	got.Score = 1

	again, err := c.Get(ctx, "jane@acme.io")
	require.NoError(t, err)
	assert.Equal(t, 4, again.Score)
}
