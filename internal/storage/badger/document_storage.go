// -----------------------------------------------------------------------
// Document Storage - badger-backed document library records
// -----------------------------------------------------------------------

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// DocumentStorage implements interfaces.DocumentStorage over BadgerDB.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)

// NewDocumentStorage creates a document store over an open database.
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// StoreDocument inserts or updates a document record keyed by ID.
func (s *DocumentStorage) StoreDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document must have an ID")
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to store document %s: %w", doc.ID, err)
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Str("status", doc.Status).
		Msg("Document record stored")
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

// ListDocuments returns records ordered by creation time descending,
// optionally filtered by educational document type.
func (s *DocumentStorage) ListDocuments(ctx context.Context, opts interfaces.ListOptions) ([]*models.Document, error) {
	query := s.listQuery(opts.DocumentType).SortBy("CreatedAt").Reverse()
	if opts.Offset > 0 {
		query = query.Skip(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var docs []*models.Document
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// CountDocuments returns the record count, optionally filtered by type.
func (s *DocumentStorage) CountDocuments(ctx context.Context, documentType string) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, s.listQuery(documentType))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

// DeleteDocument removes a record by ID.
func (s *DocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	// Existence is checked first: badgerhold's Delete reports ErrNotFound
	// inconsistently across value and pointer types.
	if _, err := s.GetDocument(ctx, id); err != nil {
		return err
	}

	if err := s.db.Store().Delete(id, models.Document{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}

	s.logger.Debug().Str("document_id", id).Msg("Document record deleted")
	return nil
}

func (s *DocumentStorage) listQuery(documentType string) *badgerhold.Query {
	if documentType != "" {
		return badgerhold.Where("DocumentType").Eq(documentType)
	}
	return badgerhold.Where("ID").Ne("")
}
