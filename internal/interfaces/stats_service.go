package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// StatsService computes and caches aggregate statistics about the document
// library. Refresh runs on a schedule; Current serves the last snapshot,
// computing one on demand if none exists yet.
type StatsService interface {
	// Refresh recomputes the stats snapshot and persists it
	Refresh(ctx context.Context) (*models.LibraryStats, error)

	// Current returns the most recent snapshot, computing one if missing
	Current(ctx context.Context) (*models.LibraryStats, error)
}
