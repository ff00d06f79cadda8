package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// ParsingService normalizes a MIME type, dispatches to the registered
// parser and returns the result. Unsupported types are reported through
// the result's error field, never as a raised error.
type ParsingService interface {
	// ParseDocument parses content according to its MIME type. When the
	// MIME type is empty or application/octet-stream the content is sniffed.
	ParseDocument(ctx context.Context, content []byte, mimetype string, filename string) *models.ParsingResult

	// SupportedMimetypes returns all MIME types with a registered parser.
	SupportedMimetypes() []string
}
