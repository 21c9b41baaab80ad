// Package llm generates advisory explanations for desert-score seeds.
//
// The output of this package is advisory only: the explanation text and the
// critic confidence are consumed as opaque inputs by the scoring layer and
// never feed back into any other number.
package llm

import (
	"context"
	"time"
)

// Provider is one LLM backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Explain generates an explanation for a desert-metric seed
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ExplainRequest describes one facility/target pair to explain
type ExplainRequest struct {
	FacilityID string

	// Target is the capability code being assessed
	Target string

	// MissingPrerequisites are the prerequisite codes the facility lacks
	MissingPrerequisites []string

	// DistanceKm is the distance to the nearest capable facility; nil when
	// it could not be computed
	DistanceKm *float64

	// EvidenceQuotes is the STRICT allowlist of snippets the model may
	// reference; it must not introduce facts from outside this list
	EvidenceQuotes []string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExplainResponse is a provider's advisory output
type ExplainResponse struct {
	// Explanation is the generated text
	Explanation string

	// Confidence is the critic's data-confidence estimate in [0,1]
	Confidence float64

	// Model is the model that produced the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model is the provider-specific model name
	Model string

	// APIKey authenticates hosted providers
	APIKey string

	// BaseURL overrides the provider endpoint
	BaseURL string

	// Timeout bounds a single request
	Timeout time.Duration

	// MaxTokens limits response length
	MaxTokens int
}

// DefaultConfig returns provider defaults with the LLM disabled.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		MaxTokens: 1024,
	}
}
