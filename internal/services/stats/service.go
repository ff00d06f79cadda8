// -----------------------------------------------------------------------
// Stats Service - aggregate library statistics with persisted snapshots
// -----------------------------------------------------------------------

package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// snapshotKey is the well-known key/value record holding the latest snapshot.
const snapshotKey = "stats:library"

// statsPageSize bounds how many records one aggregation pass loads at once.
const statsPageSize = 500

// Service computes library statistics from document records and persists
// the snapshot so readers never pay the aggregation cost.
type Service struct {
	documents interfaces.DocumentStorage
	kv        interfaces.KeyValueStorage
	logger    arbor.ILogger

	mu     sync.RWMutex
	latest *models.LibraryStats
}

var _ interfaces.StatsService = (*Service)(nil)

// NewService creates the stats service.
func NewService(documents interfaces.DocumentStorage, kv interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		documents: documents,
		kv:        kv,
		logger:    logger,
	}
}

// Refresh recomputes the snapshot from storage and persists it.
func (s *Service) Refresh(ctx context.Context) (*models.LibraryStats, error) {
	stats := models.NewLibraryStats()

	offset := 0
	for {
		docs, err := s.documents.ListDocuments(ctx, interfaces.ListOptions{
			Limit:  statsPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load documents for stats: %w", err)
		}

		for _, doc := range docs {
			stats.TotalDocuments++
			stats.ByDocumentType[doc.DocumentType]++
			stats.ByStatus[doc.Status]++
			stats.TotalWordCount += doc.WordCount
			stats.TotalFileBytes += doc.FileSize

			switch doc.Status {
			case models.DocumentStatusAnalyzed:
				stats.AnalyzedDocuments++
			case models.DocumentStatusFailed:
				stats.FailedParses++
			}
		}

		if len(docs) < statsPageSize {
			break
		}
		offset += statsPageSize
	}

	if stats.TotalDocuments > 0 {
		stats.AverageWordCount = float64(stats.TotalWordCount) / float64(stats.TotalDocuments)
	}

	if err := s.persist(ctx, stats); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist stats snapshot")
	}

	s.mu.Lock()
	s.latest = stats
	s.mu.Unlock()

	s.logger.Debug().
		Int("total", stats.TotalDocuments).
		Int("analyzed", stats.AnalyzedDocuments).
		Msg("Library stats refreshed")
	return stats, nil
}

// Current returns the most recent snapshot. If no snapshot exists in memory
// or the key/value store, one is computed on demand.
func (s *Service) Current(ctx context.Context) (*models.LibraryStats, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	if stored, err := s.load(ctx); err == nil {
		s.mu.Lock()
		s.latest = stored
		s.mu.Unlock()
		return stored, nil
	} else if !errors.Is(err, interfaces.ErrKeyNotFound) {
		s.logger.Warn().Err(err).Msg("Failed to load stats snapshot; recomputing")
	}

	return s.Refresh(ctx)
}

func (s *Service) persist(ctx context.Context, stats *models.LibraryStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats snapshot: %w", err)
	}
	return s.kv.Set(ctx, snapshotKey, string(data), "Library statistics snapshot")
}

func (s *Service) load(ctx context.Context) (*models.LibraryStats, error) {
	value, err := s.kv.Get(ctx, snapshotKey)
	if err != nil {
		return nil, err
	}
	var stats models.LibraryStats
	if err := json.Unmarshal([]byte(value), &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats snapshot: %w", err)
	}
	return &stats, nil
}
