package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// DocumentParser converts raw document bytes into a ParsingResult.
// Parse never returns an error: all failures are caught and folded into
// the result's error field, distinguishing "degraded but usable" (error
// plus partial text) from "failed" (empty text plus error).
type DocumentParser interface {
	// Parse extracts text, metadata and structure from document content.
	// The filename is optional and used only for extension hints.
	Parse(ctx context.Context, content []byte, filename string) *models.ParsingResult

	// SupportedMimetypes returns the MIME types this parser handles.
	SupportedMimetypes() []string
}

// OCRService is the external text-recognition capability consumed by the
// image parser. Implementations stage the preprocessed image to disk and
// invoke an OCR engine on it.
type OCRService interface {
	// Recognize extracts text from the image file at the given path using
	// the supplied language hint (e.g. "eng+chi_tra").
	Recognize(ctx context.Context, imagePath string, languages string) (string, error)

	// Available reports whether the OCR engine can be invoked on this host.
	Available() bool
}
