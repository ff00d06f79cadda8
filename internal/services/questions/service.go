// -----------------------------------------------------------------------
// Question Service - AI-backed assessment question generation
// -----------------------------------------------------------------------

package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/services/prompts"
)

// contentInputLimit caps how much source material goes into the prompt.
const contentInputLimit = 4000

// defaults applied when the request leaves fields empty.
const (
	defaultQuestionCount   = 5
	defaultQuestionType    = "multiple-choice"
	defaultDifficultyLevel = "intermediate"
)

// Service generates assessment questions through the prompt library and
// the configured AI provider.
type Service struct {
	library *prompts.Library
	ai      interfaces.AIService
	logger  arbor.ILogger
}

var _ interfaces.QuestionService = (*Service)(nil)

// NewService creates the question service. The AI service may be nil, in
// which case every request fails with a clear error.
func NewService(library *prompts.Library, ai interfaces.AIService, logger arbor.ILogger) *Service {
	return &Service{
		library: library,
		ai:      ai,
		logger:  logger,
	}
}

// Generate produces questions for the request. The provider response is
// decoded as JSON when possible; otherwise it is wrapped under raw_response
// so callers always get usable output.
func (s *Service) Generate(ctx context.Context, req interfaces.QuestionRequest) (map[string]interface{}, error) {
	if s.ai == nil {
		return nil, fmt.Errorf("question generation unavailable: no AI provider configured")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required for question generation")
	}

	if req.QuestionCount <= 0 {
		req.QuestionCount = defaultQuestionCount
	}
	if req.QuestionType == "" {
		req.QuestionType = defaultQuestionType
	}
	if req.DifficultyLevel == "" {
		req.DifficultyLevel = defaultDifficultyLevel
	}
	if req.Topic == "" {
		req.Topic = "the provided material"
	}

	prompt, err := s.library.RenderSingle("question_generation", map[string]string{
		"question_count":   strconv.Itoa(req.QuestionCount),
		"question_type":    req.QuestionType,
		"topic":            req.Topic,
		"difficulty_level": req.DifficultyLevel,
		"content":          truncateRunes(req.Content, contentInputLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render question prompt: %w", err)
	}

	response, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	result := decodeOrWrap(response)

	s.logger.Info().
		Str("topic", req.Topic).
		Int("requested", req.QuestionCount).
		Str("type", req.QuestionType).
		Msg("Questions generated")
	return result, nil
}

// decodeOrWrap parses the provider response as JSON, stripping a markdown
// code fence if present. Non-JSON text is preserved under raw_response.
func decodeOrWrap(response string) map[string]interface{} {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return map[string]interface{}{"raw_response": response}
	}
	return decoded
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
