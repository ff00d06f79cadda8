// -----------------------------------------------------------------------
// Key/Value Storage - postgres-backed settings and snapshot store
// -----------------------------------------------------------------------

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// KVStorage implements interfaces.KeyValueStorage over PostgreSQL.
// Keys are normalized to lowercase so lookups are case-insensitive.
type KVStorage struct {
	db     *sql.DB
	logger arbor.ILogger
}

var _ interfaces.KeyValueStorage = (*KVStorage)(nil)

// NewKVStorage creates a key/value store over an open connection pool.
func NewKVStorage(db *sql.DB, logger arbor.ILogger) *KVStorage {
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

	var pair interfaces.KeyValuePair
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, description, created_at, updated_at
		 FROM key_values WHERE key = $1`, normalized).
		Scan(&pair.Key, &pair.Value, &pair.Description, &pair.CreatedAt, &pair.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", normalized, err)
	}
	return &pair, nil
}

// Set inserts or updates a key/value pair. The original creation time is
// preserved on update.
func (s *KVStorage) Set(ctx context.Context, key string, value string, description string) error {
	normalized := normalizeKey(key)
	if normalized == "" {
		return fmt.Errorf("key cannot be empty")
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_values (key, value, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`,
		normalized, value, description, now)
	if err != nil {
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

	result, err := s.db.ExecContext(ctx, `DELETE FROM key_values WHERE key = $1`, normalized)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", normalized, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm delete of key %s: %w", normalized, err)
	}
	if affected == 0 {
		return interfaces.ErrKeyNotFound
	}
	return nil
}

// List returns all pairs ordered by update time, newest first.
func (s *KVStorage) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	return s.queryPairs(ctx,
		`SELECT key, value, description, created_at, updated_at
		 FROM key_values ORDER BY updated_at DESC`)
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
// ordered by key.
func (s *KVStorage) ListByPrefix(ctx context.Context, prefix string) ([]interfaces.KeyValuePair, error) {
	normalized := normalizeKey(prefix)
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(normalized)
	return s.queryPairs(ctx,
		`SELECT key, value, description, created_at, updated_at
		 FROM key_values WHERE key LIKE $1 ORDER BY key`, escaped+"%")
}

func (s *KVStorage) queryPairs(ctx context.Context, query string, args ...interface{}) ([]interfaces.KeyValuePair, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query key/value pairs: %w", err)
	}
	defer rows.Close()

	var pairs []interfaces.KeyValuePair
	for rows.Next() {
		var pair interfaces.KeyValuePair
		if err := rows.Scan(&pair.Key, &pair.Value, &pair.Description, &pair.CreatedAt, &pair.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan key/value row: %w", err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}
