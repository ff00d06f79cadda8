package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
)

// NewAIService creates the configured AI provider. A nil service with a nil
// error means AI analysis is deliberately disabled (provider "none"); the
// pipeline then runs heuristics-only, which is a valid, supported state.
func NewAIService(cfg *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.AIService, error) {
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = common.LLMProviderGemini
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing AI service")

	switch provider {
	case common.LLMProviderNone:
		logger.Warn().Msg("AI provider disabled; analysis will be heuristics-only")
		return nil, nil

	case common.LLMProviderGemini:
		service, err := NewGeminiService(&cfg.Gemini, kvStorage, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini service: %w", err)
		}
		return service, nil

	case common.LLMProviderClaude:
		service, err := NewClaudeService(&cfg.Claude, kvStorage, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		return service, nil

	default:
		return nil, fmt.Errorf("invalid AI provider '%s': must be 'gemini', 'claude', or 'none'", provider)
	}
}
