// -----------------------------------------------------------------------
// Storage Manager - badger-backed composite
// -----------------------------------------------------------------------

package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
)

// Manager bundles the badger-backed stores behind interfaces.StorageManager.
type Manager struct {
	db        *BadgerDB
	documents *DocumentStorage
	kv        *KVStorage
	logger    arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the embedded database and wires the stores.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(config, logger)
	if err != nil {
		return nil, err
	}

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

// RunValueLogGC compacts the embedded database's value log.
func (m *Manager) RunValueLogGC() error {
	return m.db.RunValueLogGC()
}

// Close releases the shared database handle.
func (m *Manager) Close() error {
	return m.db.Close()
}
