package interfaces

import (
	"context"
)

// AIService is the capability consumed by the classifier and analyzer:
// given a prompt, return text. Implementations wrap cloud providers
// (Gemini, Claude); absence of the service is a valid state and the
// pipeline degrades to heuristics-only analysis.
type AIService interface {
	// Complete sends a prompt and returns the provider's text response.
	// Failures are returned as errors for the call site to catch; the
	// service never retries beyond provider-specific rate-limit handling.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider identifier ("gemini", "claude").
	Name() string

	// HealthCheck verifies the provider is reachable and authenticated.
	HealthCheck(ctx context.Context) error

	// Close releases provider resources.
	Close() error
}
