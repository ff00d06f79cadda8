// -----------------------------------------------------------------------
// Storage Manager - postgres-backed composite
// -----------------------------------------------------------------------

package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
)

// schema is applied on every connect; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	content_type  TEXT NOT NULL DEFAULT '',
	file_size     BIGINT NOT NULL DEFAULT 0,
	storage_path  TEXT NOT NULL DEFAULT '',
	page_count    INTEGER NOT NULL DEFAULT 0,
	word_count    INTEGER NOT NULL DEFAULT 0,
	parse_error   TEXT NOT NULL DEFAULT '',
	document_type TEXT NOT NULL DEFAULT 'unknown',
	analysis_depth TEXT NOT NULL DEFAULT '',
	analysis      JSONB,
	metadata      JSONB,
	status        TEXT NOT NULL DEFAULT 'uploaded',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents (document_type);

CREATE TABLE IF NOT EXISTS key_values (
	key         TEXT PRIMARY KEY,
	value       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
`

// Manager bundles the postgres-backed stores behind interfaces.StorageManager.
type Manager struct {
	db        *sql.DB
	documents *DocumentStorage
	kv        *KVStorage
	logger    arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager connects to PostgreSQL, verifies the connection and applies
// the schema.
func NewManager(logger arbor.ILogger, config *common.PostgresConfig) (*Manager, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres at %s:%d: %w", config.Host, config.Port, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize postgres schema: %w", err)
	}

	logger.Info().
		Str("host", config.Host).
		Str("database", config.Database).
		Msg("Postgres storage connected")

	return &Manager{
		db:        db,
		documents: NewDocumentStorage(db, logger),
		kv:        NewKVStorage(db, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documents
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	return m.db.Close()
}
