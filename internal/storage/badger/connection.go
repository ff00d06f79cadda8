// -----------------------------------------------------------------------
// BadgerDB Connection - embedded store lifecycle
// -----------------------------------------------------------------------

package badger

import (
	"fmt"
	"os"
	"path/filepath"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lectio/internal/common"
)

// BadgerDB wraps a badgerhold store and owns its lifecycle.
type BadgerDB struct {
	store  *badgerhold.Store
	path   string
	logger arbor.ILogger
}

// NewBadgerDB opens (or creates) the embedded database at the configured
// path. With ResetOnStartup the existing database directory is removed
// first, which gives tests and dev restarts a clean slate.
func NewBadgerDB(config *common.BadgerConfig, logger arbor.ILogger) (*BadgerDB, error) {
	path := config.Path
	if path == "" {
		path = filepath.Join("data", "lectio.db")
	}

	if config.ResetOnStartup {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to reset database directory: %w", err)
		}
		logger.Info().Str("path", path).Msg("Database reset on startup")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("Badger database opened")

	return &BadgerDB{
		store:  store,
		path:   path,
		logger: logger,
	}, nil
}

// Store exposes the underlying badgerhold store to sibling storage types.
func (db *BadgerDB) Store() *badgerhold.Store {
	return db.store
}

// RunValueLogGC compacts the value log, discarding files with at least half
// their space reclaimable. badger returns ErrNoRewrite when there is
// nothing to collect; that is a normal outcome, not a failure.
func (db *BadgerDB) RunValueLogGC() error {
	raw := db.store.Badger()
	for {
		if err := raw.RunValueLogGC(0.5); err != nil {
			if err == badgerdb.ErrNoRewrite {
				return nil
			}
			return fmt.Errorf("value log gc failed: %w", err)
		}
		db.logger.Debug().Str("path", db.path).Msg("Value log file reclaimed")
	}
}

// Close releases the database. Safe to call once.
func (db *BadgerDB) Close() error {
	if db.store == nil {
		return nil
	}
	if err := db.store.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	db.logger.Debug().Str("path", db.path).Msg("Badger database closed")
	return nil
}
