package llm

import (
	"context"
	"fmt"
	"strings"
)

// Explainer produces the (confidence, explanation) pair consumed by desert
// scoring. With no provider configured, or when the provider fails, it
// falls back to a deterministic critic so scoring inputs are always
// available and reproducible.
type Explainer struct {
	provider Provider // nil: deterministic fallback only
	config   Config
}

// NewExplainer creates an explainer; provider construction errors disable
// the LLM path rather than failing.
func NewExplainer(config Config) (*Explainer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Explainer{provider: provider, config: config}, nil
}

// IsEnabled reports whether an LLM provider is configured.
func (e *Explainer) IsEnabled() bool {
	return e != nil && e.provider != nil
}

// Explain returns the advisory explanation and critic confidence for one
// seed. Provider failures degrade to the deterministic fallback; the error
// is returned alongside the fallback result so callers can log it.
func (e *Explainer) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, error) {
	if e == nil || e.provider == nil {
		return deterministicExplain(req), nil
	}
	resp, err := e.provider.Explain(ctx, req)
	if err != nil {
		return deterministicExplain(req), fmt.Errorf("llm explain (using fallback): %w", err)
	}
	return *resp, nil
}

// deterministicExplain is the non-LLM critic: confidence reflects data
// completeness only, starting at 1.0 and discounted for each missing input.
func deterministicExplain(req ExplainRequest) ExplainResponse {
	confidence := 1.0
	var notes []string

	if req.DistanceKm == nil {
		confidence -= 0.4
		notes = append(notes, "distance to the nearest capable facility is unknown")
	}
	if len(req.EvidenceQuotes) == 0 {
		confidence -= 0.3
		notes = append(notes, "no supporting evidence quotes are available")
	}
	if len(req.MissingPrerequisites) > 0 {
		confidence -= 0.1
		notes = append(notes, fmt.Sprintf("%d prerequisite capabilities are missing", len(req.MissingPrerequisites)))
	}
	if confidence < 0 {
		confidence = 0
	}

	explanation := fmt.Sprintf("Assessment of %s for facility %s is based on extracted records only.", req.Target, req.FacilityID)
	if len(notes) > 0 {
		explanation += " Caveats: " + strings.Join(notes, "; ") + "."
	}

	return ExplainResponse{
		Explanation: explanation,
		Confidence:  confidence,
		Model:       "deterministic-fallback",
	}
}
