package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/storage/badger"
	"github.com/ternarybob/lectio/internal/storage/postgres"
)

// NewStorageManager creates the storage backend selected by config.
// Badger is the embedded default; postgres suits multi-instance deployments.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "", "badger":
		return badger.NewManager(logger, &config.Storage.Badger)
	case "postgres":
		return postgres.NewManager(logger, &config.Storage.Postgres)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (must be 'badger' or 'postgres')", config.Storage.Type)
	}
}
