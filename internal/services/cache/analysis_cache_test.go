package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/models"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	cache, err := NewRedisCache(&common.CacheConfig{
		RedisAddr: server.Addr(),
		TTL:       "1h",
	}, arbor.NewLogger())
	require.NoError(t, err)
	require.NotNil(t, cache)
	t.Cleanup(func() { cache.Close() })
	return cache, server
}

func TestDisabledWithoutAddress(t *testing.T) {
	cache, err := NewRedisCache(&common.CacheConfig{}, arbor.NewLogger())
	assert.NoError(t, err)
	assert.Nil(t, cache)
}

func TestInvalidTTLRejected(t *testing.T) {
	server := miniredis.RunT(t)
	_, err := NewRedisCache(&common.CacheConfig{
		RedisAddr: server.Addr(),
		TTL:       "soon",
	}, arbor.NewLogger())
	assert.Error(t, err)
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	hash := ContentHash("Week 1: introduction to fractions")
	result := &models.AnalysisResult{
		DocumentType: string(models.DocTypeSyllabus),
		AIInsights:   map[string]interface{}{"summary": "fractions"},
	}

	_, found := cache.Get(ctx, hash, models.DepthStandard)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, hash, models.DepthStandard, result))

	cached, found := cache.Get(ctx, hash, models.DepthStandard)
	require.True(t, found)
	assert.Equal(t, string(models.DocTypeSyllabus), cached.DocumentType)
	assert.Equal(t, "fractions", cached.AIInsights["summary"])

	t.Run("depth keys are independent", func(t *testing.T) {
		_, found := cache.Get(ctx, hash, models.DepthDeep)
		assert.False(t, found)
	})
}

func TestEntriesExpire(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	hash := ContentHash("exam content")
	require.NoError(t, cache.Set(ctx, hash, models.DepthBasic, &models.AnalysisResult{}))

	server.FastForward(2 * time.Hour)

	_, found := cache.Get(ctx, hash, models.DepthBasic)
	assert.False(t, found)
}

func TestHealthCheck(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, cache.HealthCheck(ctx))

	server.Close()
	assert.Error(t, cache.HealthCheck(ctx))
}

func TestContentHashIsStable(t *testing.T) {
	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
	assert.Len(t, ContentHash(""), 64)
}
