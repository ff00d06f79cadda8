package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// ClassifierService determines an educational document type from extracted
// text via ordered keyword rules, extracts type-specific elements (questions,
// learning objectives) and optionally enhances the result with an AI call.
type ClassifierService interface {
	// Analyze classifies a parsing result and extracts educational elements.
	// When an AI service is configured the result additionally carries either
	// ai_enhanced_analysis or ai_analysis_error; heuristics always complete
	// regardless of AI availability.
	Analyze(ctx context.Context, parsingResult *models.ParsingResult) *models.Classification

	// Classify runs only the keyword heuristics and returns the document
	// type. Used on the upload path where an AI round trip is too slow.
	Classify(parsingResult *models.ParsingResult) models.EducationalDocumentType
}
