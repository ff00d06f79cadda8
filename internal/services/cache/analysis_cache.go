// -----------------------------------------------------------------------
// Analysis Cache - redis-backed reuse of completed analysis results
// -----------------------------------------------------------------------

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

const defaultTTL = 24 * time.Hour

// RedisCache implements interfaces.AnalysisCache over Redis. Entries are
// keyed by content hash and analysis depth so the same document analyzed
// at different depths caches independently.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger arbor.ILogger
}

var _ interfaces.AnalysisCache = (*RedisCache)(nil)

// ContentHash returns the cache key component for a piece of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NewRedisCache connects to Redis and verifies the connection. An empty
// address returns (nil, nil): the cache is optional and callers treat a
// nil cache as disabled.
func NewRedisCache(config *common.CacheConfig, logger arbor.ILogger) (*RedisCache, error) {
	if config.RedisAddr == "" {
		logger.Debug().Msg("Analysis cache disabled: no redis address configured")
		return nil, nil
	}

	ttl := defaultTTL
	if config.TTL != "" {
		parsed, err := time.ParseDuration(config.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache ttl %q: %w", config.TTL, err)
		}
		ttl = parsed
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddr, err)
	}

	logger.Info().
		Str("addr", config.RedisAddr).
		Str("ttl", ttl.String()).
		Msg("Analysis cache connected")

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func cacheKey(contentHash string, depth models.AnalysisDepth) string {
	return fmt.Sprintf("lectio:analysis:%s:%s", contentHash, depth)
}

// Get returns the cached result for the content hash and depth. Backend
// errors are treated as misses so a flaky cache never fails an analysis.
func (c *RedisCache) Get(ctx context.Context, contentHash string, depth models.AnalysisDepth) (*models.AnalysisResult, bool) {
	data, err := c.client.Get(ctx, cacheKey(contentHash, depth)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("Analysis cache read failed")
		}
		return nil, false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn().Err(err).Msg("Analysis cache entry corrupt; ignoring")
		return nil, false
	}
	return &result, true
}

// Set stores a result under the content hash and depth with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, contentHash string, depth models.AnalysisDepth, result *models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(contentHash, depth), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write analysis cache entry: %w", err)
	}
	return nil
}

// HealthCheck verifies the Redis backend is reachable.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
