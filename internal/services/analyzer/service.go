// -----------------------------------------------------------------------
// AI Document Analyzer - depth-tiered analysis orchestration over the
// educational content classifier
// -----------------------------------------------------------------------

package analyzer

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
	"github.com/ternarybob/lectio/internal/services/classifier"
)

// Input caps per analysis depth, in runes.
const (
	basicInputLimit        = 2000
	standardInputLimit     = 3500
	deepInputLimit         = 4000
	relationshipInputLimit = 3500
)

// Service runs heuristic classification followed by a depth-specific AI
// analysis pass. Every AI sub-call is guarded individually: a failed call
// lands in the result as an error key or errors entry and never blocks the
// sibling analyses.
type Service struct {
	classifier interfaces.ClassifierService
	ai         interfaces.AIService
	logger     arbor.ILogger
}

var _ interfaces.AnalyzerService = (*Service)(nil)

// NewService creates an analyzer. aiService may be nil, in which case
// results carry the heuristic classification with AI keys degraded.
func NewService(classifierService interfaces.ClassifierService, aiService interfaces.AIService, logger arbor.ILogger) *Service {
	return &Service{
		classifier: classifierService,
		ai:         aiService,
		logger:     logger,
	}
}

// AnalyzeDocument analyzes a parsed document at the requested depth.
// Unknown depth values fall back to standard. For deep analysis of a
// cleanly parsed document a concept-relationship map is additionally
// requested; its failure appends to errors without touching other keys.
func (s *Service) AnalyzeDocument(ctx context.Context, parsingResult *models.ParsingResult, depth models.AnalysisDepth) *models.AnalysisResult {
	if depth != models.DepthBasic && depth != models.DepthStandard && depth != models.DepthDeep {
		depth = models.DepthStandard
	}

	s.logger.Info().
		Str("depth", string(depth)).
		Int("text_length", len(parsingResult.Text)).
		Msg("Performing document analysis")

	classification := s.classifier.Analyze(ctx, parsingResult)

	result := &models.AnalysisResult{
		DocumentType:        string(classification.DocumentType),
		Structure:           parsingResult.Structure,
		EducationalElements: classification.EducationalElements,
		AIInsights:          s.depthSpecificAnalysis(ctx, parsingResult, classification, depth),
	}

	if depth == models.DepthDeep && parsingResult.Success() {
		relationships, err := s.analyzeContentRelationships(ctx, parsingResult.Text)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to analyze content relationships")
			result.Errors = append(result.Errors, "Relationship analysis failed")
		} else {
			result.ContentRelationships = relationships
		}
	}

	return result
}

// depthSpecificAnalysis runs the prompt for the requested depth and decodes
// the response. Non-JSON responses degrade to a depth-specific wrapper key;
// AI failures degrade to an error key.
func (s *Service) depthSpecificAnalysis(ctx context.Context, parsingResult *models.ParsingResult, classification *models.Classification, depth models.AnalysisDepth) map[string]interface{} {
	if s.ai == nil {
		return map[string]interface{}{
			"error": "AI analysis unavailable: no provider configured",
		}
	}

	docType := string(classification.DocumentType)

	var prompt, wrapperKey string
	switch depth {
	case models.DepthBasic:
		prompt = basicAnalysisPrompt(parsingResult.Text, docType)
		wrapperKey = "summary"
	case models.DepthDeep:
		prompt = deepAnalysisPrompt(parsingResult.Text, docType)
		wrapperKey = "detailed_analysis"
	default:
		prompt = standardAnalysisPrompt(parsingResult.Text, docType)
		wrapperKey = "analysis"
	}

	response, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("depth", string(depth)).Msg("Depth-specific analysis failed")
		return map[string]interface{}{"error": err.Error()}
	}

	return decodeOrWrapAs(response, wrapperKey)
}

// analyzeContentRelationships requests a concept knowledge graph. Only the
// AI call itself is an error; an unstructured response degrades to a
// placeholder map.
func (s *Service) analyzeContentRelationships(ctx context.Context, text string) (map[string]interface{}, error) {
	if s.ai == nil {
		return nil, fmt.Errorf("no AI provider configured")
	}

	response, err := s.ai.Complete(ctx, relationshipPrompt(text))
	if err != nil {
		return nil, err
	}

	decoded := classifier.DecodeOrWrap(response)
	if _, raw := decoded["raw_response"]; raw {
		return map[string]interface{}{
			"relationship_map": "Could not structure relationship data",
		}, nil
	}
	return decoded, nil
}

// decodeOrWrapAs decodes a JSON response, wrapping non-JSON text under the
// given key instead of failing.
func decodeOrWrapAs(response, wrapperKey string) map[string]interface{} {
	decoded := classifier.DecodeOrWrap(response)
	if raw, ok := decoded["raw_response"]; ok && len(decoded) == 1 {
		return map[string]interface{}{wrapperKey: raw}
	}
	return decoded
}
