package interfaces

import (
	"context"

	"github.com/ternarybob/lectio/internal/models"
)

// AnalyzerService orchestrates the classifier with depth-tiered AI prompting.
// Sub-call failures are folded into the result (error keys, errors list);
// one failed sub-analysis never blocks the others.
type AnalyzerService interface {
	// AnalyzeDocument runs heuristic classification followed by a
	// depth-specific AI analysis pass over the parsed document.
	AnalyzeDocument(ctx context.Context, parsingResult *models.ParsingResult, depth models.AnalysisDepth) *models.AnalysisResult
}
