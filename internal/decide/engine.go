// Package decide implements the conservative capability decision engine.
//
// The engine is deliberately biased toward under-claiming: the consuming
// audience plans interventions from these decisions, and telling them a
// facility has a capability it does not is the one unacceptable failure.
package decide

import (
	"fmt"
	"sort"

	"github.com/RichterLProgram/CuraWay-sub000/internal/evidence"
	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

// Engine turns raw capability claims into auditable decisions. Pure: no
// side effects, identical inputs yield identical outputs.
type Engine struct {
	registry *ontology.Registry
	cfg      model.DecisionConfig
}

// NewEngine creates a decision engine bound to a registry and thresholds.
func NewEngine(registry *ontology.Registry, cfg model.DecisionConfig) *Engine {
	return &Engine{registry: registry, cfg: cfg}
}

// Input is one raw claim plus the global suspicious-phrase list.
//
// Evidence must already be provenance-complete: the ingestion layer rejects
// incomplete snippets before they reach this engine.
type Input struct {
	Capability       string
	RawValue         bool
	Confidence       float64
	Evidence         []model.EvidenceSnippet
	SuspiciousClaims []string
}

// Decide applies the decision rules in strict order, later rules overriding
// earlier ones:
//
//  1. default: value=false, reason=insufficient_evidence
//  2. raw true + confidence >= strong threshold + evidence + no conflict
//     -> value=true, reason=direct_evidence
//  3. evidence mixes negated and non-negated snippets
//     -> value=false, reason=conflicting_evidence
//  4. a suspicious phrase overlaps the capability's keywords and confidence
//     is below the override threshold -> value=false, reason=suspicious_claim
func (e *Engine) Decide(in Input) model.CapabilityDecision {
	decision := model.CapabilityDecision{
		Value:    false,
		Reason:   model.ReasonInsufficientEvidence,
		Evidence: in.Evidence,
	}

	conflict := e.hasConflict(in.Capability, in.Evidence)

	if in.RawValue && in.Confidence >= e.cfg.StrongThreshold && len(in.Evidence) > 0 && !conflict {
		decision.Value = true
		decision.Reason = model.ReasonDirectEvidence
	}

	if conflict {
		decision.Value = false
		decision.Reason = model.ReasonConflictingEvidence
	}

	if e.isSuspicious(in.Capability, in.SuspiciousClaims) && in.Confidence < e.cfg.SuspiciousOverrideThreshold {
		decision.Value = false
		decision.Reason = model.ReasonSuspiciousClaim
	}

	decision.Confidence = e.shapeConfidence(in.Confidence, len(in.Evidence), decision.Value)
	return decision
}

// shapeConfidence applies the engine's confidence caps: the observed maximum
// is capped to the strong threshold on a positive decision, capped to the
// weak ceiling when evidence exists but the claim was not accepted, and
// fixed at epsilon when there is no evidence at all.
func (e *Engine) shapeConfidence(observed float64, evidenceCount int, accepted bool) float64 {
	if evidenceCount == 0 {
		return e.cfg.NoEvidenceEpsilon
	}
	if observed < 0 {
		observed = 0
	}
	cap := e.cfg.WeakCeiling
	if accepted {
		cap = e.cfg.StrongThreshold
	}
	if observed > cap {
		return cap
	}
	return observed
}

// hasConflict reports whether the evidence set contains at least one snippet
// that negates the capability and at least one that does not.
func (e *Engine) hasConflict(capability string, snippets []model.EvidenceSnippet) bool {
	if len(snippets) < 2 {
		return false
	}
	terms := e.capabilityTerms(capability)
	negated, affirmed := 0, 0
	for _, s := range snippets {
		if ontology.DetectNegatedMention(s.Text, terms, e.cfg.NegationWindow) {
			negated++
		} else {
			affirmed++
		}
	}
	return negated > 0 && affirmed > 0
}

// isSuspicious reports whether any global suspicious phrase shares a keyword
// with this capability.
func (e *Engine) isSuspicious(capability string, claims []string) bool {
	if len(claims) == 0 {
		return false
	}
	keyword := capability
	if cap, ok := e.registry.Resolve(capability); ok {
		keyword = cap.Code
	}
	keywords := make(map[string]bool)
	for _, kw := range e.registry.Keywords(keyword) {
		keywords[kw] = true
	}
	for _, claim := range claims {
		for _, tok := range ontology.Tokens(claim) {
			if keywords[tok] {
				return true
			}
		}
	}
	return false
}

// capabilityTerms returns the terms to scan for when classifying a snippet
// as negated for this capability. Claim keys are free text, not necessarily
// canonical codes, so the key is resolved through the ontology first.
func (e *Engine) capabilityTerms(capability string) []string {
	if cap, ok := e.registry.Resolve(capability); ok {
		return e.registry.MentionTerms(cap.Code)
	}
	return []string{capability}
}

// DecideFacility decides every claimed capability of one facility. Raw
// evidence is normalized first; a provenance violation fails this facility
// only. Capability keys are processed in sorted order so error messages are
// reproducible.
func (e *Engine) DecideFacility(fc model.FacilityClaims, suspicious []string) (model.FacilityDecisions, error) {
	if fc.FacilityID == "" {
		return model.FacilityDecisions{}, fmt.Errorf("facility claims missing facility_id")
	}

	keys := make([]string, 0, len(fc.Claims))
	for key := range fc.Claims {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	decisions := make(map[string]model.CapabilityDecision, len(keys))
	for _, key := range keys {
		claim := fc.Claims[key]
		snippets, err := evidence.NormalizeAll(claim.Evidence)
		if err != nil {
			return model.FacilityDecisions{}, fmt.Errorf("facility %s capability %s: %w", fc.FacilityID, key, err)
		}
		decisions[key] = e.Decide(Input{
			Capability:       key,
			RawValue:         claim.Value,
			Confidence:       claim.Confidence,
			Evidence:         snippets,
			SuspiciousClaims: suspicious,
		})
	}

	return model.FacilityDecisions{
		FacilityID: fc.FacilityID,
		Region:     fc.Region,
		Location:   fc.Location,
		Decisions:  decisions,
	}, nil
}
