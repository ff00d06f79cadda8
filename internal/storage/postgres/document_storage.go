// -----------------------------------------------------------------------
// Document Storage - postgres-backed document library records
// -----------------------------------------------------------------------

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// DocumentStorage implements interfaces.DocumentStorage over PostgreSQL.
// Analysis results and caller metadata are stored as JSONB columns.
type DocumentStorage struct {
	db     *sql.DB
	logger arbor.ILogger
}

var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)

// NewDocumentStorage creates a document store over an open connection pool.
func NewDocumentStorage(db *sql.DB, logger arbor.ILogger) *DocumentStorage {
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

	analysisJSON, err := marshalNullable(doc.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis for %s: %w", doc.ID, err)
	}
	metadataJSON, err := marshalNullable(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %s: %w", doc.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, filename, content_type, file_size, storage_path,
			page_count, word_count, parse_error, document_type,
			analysis_depth, analysis, metadata, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			filename = EXCLUDED.filename,
			content_type = EXCLUDED.content_type,
			file_size = EXCLUDED.file_size,
			storage_path = EXCLUDED.storage_path,
			page_count = EXCLUDED.page_count,
			word_count = EXCLUDED.word_count,
			parse_error = EXCLUDED.parse_error,
			document_type = EXCLUDED.document_type,
			analysis_depth = EXCLUDED.analysis_depth,
			analysis = EXCLUDED.analysis,
			metadata = EXCLUDED.metadata,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		doc.ID, doc.Filename, doc.ContentType, doc.FileSize, doc.StoragePath,
		doc.PageCount, doc.WordCount, doc.ParseError, doc.DocumentType,
		doc.AnalysisDepth, analysisJSON, metadataJSON, doc.Status,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", doc.ID, err)
	}
	return nil
}

const documentColumns = `id, filename, content_type, file_size, storage_path,
	page_count, word_count, parse_error, document_type, analysis_depth,
	analysis, metadata, status, created_at, updated_at`

// GetDocument retrieves a document by ID.
func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns records ordered by creation time descending,
// optionally filtered by educational document type.
func (s *DocumentStorage) ListDocuments(ctx context.Context, opts interfaces.ListOptions) ([]*models.Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}

	var (
		rows *sql.Rows
		err  error
	)
	if opts.DocumentType != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+documentColumns+` FROM documents
			 WHERE document_type = $1
			 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			opts.DocumentType, limit, opts.Offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+documentColumns+` FROM documents
			 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, opts.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountDocuments returns the record count, optionally filtered by type.
func (s *DocumentStorage) CountDocuments(ctx context.Context, documentType string) (int, error) {
	var (
		count int
		err   error
	)
	if documentType != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE document_type = $1`, documentType).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// DeleteDocument removes a record by ID.
func (s *DocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm delete of %s: %w", id, err)
	}
	if affected == 0 {
		return interfaces.ErrDocumentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc          models.Document
		analysisJSON []byte
		metadataJSON []byte
	)
	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.ContentType, &doc.FileSize, &doc.StoragePath,
		&doc.PageCount, &doc.WordCount, &doc.ParseError, &doc.DocumentType,
		&doc.AnalysisDepth, &analysisJSON, &metadataJSON, &doc.Status,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(analysisJSON) > 0 {
		if err := json.Unmarshal(analysisJSON, &doc.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	return &doc, nil
}

// marshalNullable returns SQL NULL for nil values so JSONB columns stay
// empty rather than holding the string "null".
func marshalNullable(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case *models.AnalysisResult:
		if v == nil {
			return nil, nil
		}
	case map[string]interface{}:
		if v == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return data, nil
}
