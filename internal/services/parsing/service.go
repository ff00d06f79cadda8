// -----------------------------------------------------------------------
// Parsing Service - routes document content to registered format parsers
// -----------------------------------------------------------------------

package parsing

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
	"github.com/ternarybob/lectio/internal/parser"
)

// Service routes documents to the registered parser for their MIME type.
type Service struct {
	registry *parser.Registry
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ParsingService = (*Service)(nil)

// NewService creates a parsing service over the given registry.
func NewService(registry *parser.Registry, logger arbor.ILogger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// ParseDocument normalizes the MIME type, looks up the matching parser and
// runs it. Empty and octet-stream types are sniffed from the content.
// Unknown types yield an error result, never a panic or Go error.
func (s *Service) ParseDocument(ctx context.Context, content []byte, declaredType string, filename string) *models.ParsingResult {
	normalized := NormalizeMimetype(declaredType)

	if normalized == "" || normalized == "application/octet-stream" {
		sniffed := NormalizeMimetype(sniffMimetype(content))
		s.logger.Debug().
			Str("declared", normalized).
			Str("sniffed", sniffed).
			Str("filename", filename).
			Msg("Sniffed content type for untyped upload")
		normalized = sniffed
	}

	p, ok := s.registry.GetParser(normalized)
	if !ok {
		s.logger.Warn().Str("mimetype", normalized).Msg("No parser found for MIME type")
		result := models.NewErrorParsingResult(fmt.Sprintf("Unsupported document type: %s", normalized))
		recordMimetype(result, normalized)
		return result
	}

	s.logger.Debug().
		Str("mimetype", normalized).
		Str("filename", filename).
		Int("bytes", len(content)).
		Msg("Parsing document")

	result := p.Parse(ctx, content, filename)
	recordMimetype(result, normalized)
	return result
}

// recordMimetype stores the resolved MIME type on the result so callers see
// the sniffed type for untyped uploads. Parsers that set their own value win.
func recordMimetype(result *models.ParsingResult, normalized string) {
	if result == nil || normalized == "" {
		return
	}
	if result.Metadata == nil {
		result.Metadata = map[string]interface{}{}
	}
	if _, ok := result.Metadata["mimetype"]; !ok {
		result.Metadata["mimetype"] = normalized
	}
}

// SupportedMimetypes returns every MIME type with a registered parser.
func (s *Service) SupportedMimetypes() []string {
	return s.registry.SupportedTypes()
}

// NormalizeMimetype strips parameters such as charset and lowercases the
// base type ("Text/HTML; charset=utf-8" becomes "text/html").
func NormalizeMimetype(declaredType string) string {
	base := strings.SplitN(declaredType, ";", 2)[0]
	return strings.ToLower(strings.TrimSpace(base))
}

func sniffMimetype(content []byte) string {
	return mimetype.Detect(content).String()
}
