package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/lectio/internal/models"
)

// ErrDocumentNotFound is returned when a document record does not exist
var ErrDocumentNotFound = errors.New("document not found")

// ListOptions controls document listing pagination and filtering
type ListOptions struct {
	Limit        int
	Offset       int
	DocumentType string // Filter by educational document type, empty for all
}

// DocumentStorage persists document library records
type DocumentStorage interface {
	// StoreDocument inserts or updates a document record
	StoreDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a document by ID, returns ErrDocumentNotFound if missing
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns documents ordered by creation time descending
	ListDocuments(ctx context.Context, opts ListOptions) ([]*models.Document, error)

	// CountDocuments returns the total record count, optionally filtered by type
	CountDocuments(ctx context.Context, documentType string) (int, error)

	// DeleteDocument removes a record, returns ErrDocumentNotFound if missing
	DeleteDocument(ctx context.Context, id string) error
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	DocumentStorage() DocumentStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
