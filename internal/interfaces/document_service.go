package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// UploadInput carries one uploaded file into the document service.
type UploadInput struct {
	Filename    string
	ContentType string // As supplied by the client, may carry parameters
	Content     []byte
	Metadata    map[string]interface{} // Optional caller-supplied metadata
}

// DocumentService manages the document library: storing uploaded files,
// parsing them, running analysis and serving the results.
type DocumentService interface {
	// Upload stores the file, parses it and creates a library record.
	// A degraded parse still creates the record (status failed) so the raw
	// file is retained for inspection.
	Upload(ctx context.Context, input UploadInput) (*models.Document, *models.ParsingResult, error)

	// Get returns a document record by ID
	Get(ctx context.Context, id string) (*models.Document, error)

	// List returns document records with pagination
	List(ctx context.Context, opts ListOptions) ([]*models.Document, int, error)

	// Content returns the stored raw file bytes for download
	Content(ctx context.Context, id string) ([]byte, *models.Document, error)

	// Analyze re-parses the stored file and runs AI analysis at the given
	// depth, persisting the outcome on the record
	Analyze(ctx context.Context, id string, depth models.AnalysisDepth) (*models.Document, error)

	// Report renders a PDF report of the document's latest analysis
	Report(ctx context.Context, id string) ([]byte, error)

	// Delete removes the record and its stored file
	Delete(ctx context.Context, id string) error
}
