// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// AnalysisCache stores completed analysis results keyed by content hash and
// depth, so re-analyzing identical content skips the AI round trips. The
// cache is optional; a nil cache disables reuse entirely.
type AnalysisCache interface {
	// Get returns the cached result for the content hash and depth,
	// or (nil, false) on a miss
	Get(ctx context.Context, contentHash string, depth models.AnalysisDepth) (*models.AnalysisResult, bool)

	// Set stores a result under the content hash and depth with the
	// configured TTL
	Set(ctx context.Context, contentHash string, depth models.AnalysisDepth, result *models.AnalysisResult) error

	// HealthCheck verifies the cache backend is reachable
	HealthCheck(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}
