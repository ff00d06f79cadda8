// -----------------------------------------------------------------------
// Key/Value Storage - badger-backed settings and snapshot store
// -----------------------------------------------------------------------

package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// kvRecord is the stored shape of a key/value pair. Keys are normalized
// to lowercase so lookups are case-insensitive.
type kvRecord struct {
	Key         string    `badgerhold:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KVStorage implements interfaces.KeyValueStorage over BadgerDB.
type KVStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.KeyValueStorage = (*KVStorage)(nil)

// NewKVStorage creates a key/value store over an open database.
func NewKVStorage(db *BadgerDB, logger arbor.ILogger) *KVStorage {
	return &KVStorage{
		db:     db,
		logger: logger,
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get retrieves a value by key.
func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	pair, err := s.GetPair(ctx, key)
	if err != nil {
		return "", err
	}
	return pair.Value, nil
}

// GetPair retrieves a full key/value pair by key.
func (s *KVStorage) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	var record kvRecord
	if err := s.db.Store().Get(normalized, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", normalized, err)
	}

	return &interfaces.KeyValuePair{
		Key:         record.Key,
		Value:       record.Value,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

// Set inserts or updates a key/value pair. The original creation time is
// preserved on update.
func (s *KVStorage) Set(ctx context.Context, key string, value string, description string) error {
	normalized := normalizeKey(key)
	if normalized == "" {
		return fmt.Errorf("key cannot be empty")
	}

	now := time.Now().UTC()
	record := kvRecord{
		Key:         normalized,
		Value:       value,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var existing kvRecord
	if err := s.db.Store().Get(normalized, &existing); err == nil {
		record.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(normalized, record); err != nil {
		return fmt.Errorf("failed to set key %s: %w", normalized, err)
	}
	return nil
}

// Delete removes a key/value pair.
func (s *KVStorage) Delete(ctx context.Context, key string) error {
	normalized := normalizeKey(key)
	if normalized == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := s.db.Store().Delete(normalized, kvRecord{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete key %s: %w", normalized, err)
	}
	return nil
}

// List returns all pairs ordered by update time, newest first.
func (s *KVStorage) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	var records []kvRecord
	query := badgerhold.Where("Key").Ne("").SortBy("UpdatedAt").Reverse()
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list key/value pairs: %w", err)
	}
	return toPairs(records), nil
}

// GetAll returns every pair as a plain map.
func (s *KVStorage) GetAll(ctx context.Context) (map[string]string, error) {
	pairs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		result[pair.Key] = pair.Value
	}
	return result, nil
}

// ListByPrefix returns pairs whose keys start with the given prefix,
// ordered by key. The prefix is normalized the same way keys are.
func (s *KVStorage) ListByPrefix(ctx context.Context, prefix string) ([]interfaces.KeyValuePair, error) {
	normalized := normalizeKey(prefix)

	var records []kvRecord
	query := badgerhold.Where("Key").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
		key, ok := ra.Field().(string)
		if !ok {
			return false, nil
		}
		return strings.HasPrefix(key, normalized), nil
	}).SortBy("Key")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %s: %w", normalized, err)
	}
	return toPairs(records), nil
}

func toPairs(records []kvRecord) []interfaces.KeyValuePair {
	pairs := make([]interfaces.KeyValuePair, 0, len(records))
	for _, record := range records {
		pairs = append(pairs, interfaces.KeyValuePair{
			Key:         record.Key,
			Value:       record.Value,
			Description: record.Description,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		})
	}
	return pairs
}
