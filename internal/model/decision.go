package model

// DecisionReason explains why a capability claim was accepted or rejected
type DecisionReason string

const (
	ReasonDirectEvidence       DecisionReason = "direct_evidence"
	ReasonInsufficientEvidence DecisionReason = "insufficient_evidence"
	ReasonConflictingEvidence  DecisionReason = "conflicting_evidence"
	ReasonSuspiciousClaim      DecisionReason = "suspicious_claim"
)

// CapabilityDecision is the auditable verdict for one (facility, capability)
// pair. Created once; re-deciding produces a new record.
//
// Invariant: Value is true only when Reason == ReasonDirectEvidence.
type CapabilityDecision struct {
	Value      bool              `json:"value"`
	Confidence float64           `json:"confidence"`
	Reason     DecisionReason    `json:"decision_reason"`
	Evidence   []EvidenceSnippet `json:"evidence,omitempty"`
}

// CapabilityClaim is a raw extracted claim about one capability, before the
// decision engine has seen it.
type CapabilityClaim struct {
	Value      bool         `json:"value"`
	Confidence float64      `json:"confidence"`
	Evidence   []RawSnippet `json:"evidence,omitempty"`
}

// FacilityClaims is the per-facility input batch: parallel claim data plus
// the underlying supply record when available.
type FacilityClaims struct {
	FacilityID string                     `json:"facility_id"`
	Region     string                     `json:"region,omitempty"`
	Location   Location                   `json:"location"`
	Claims     map[string]CapabilityClaim `json:"claims"`
	Supply     *SupplyRecord              `json:"supply,omitempty"`
}

// ClaimBatch is the top-level assessment input: per-facility claims, the
// globally-detected suspicious phrases, and the source chunks/citations
// backing evidence lookups.
type ClaimBatch struct {
	Facilities       []FacilityClaims `json:"facilities"`
	SuspiciousClaims []string         `json:"suspicious_claims,omitempty"`
	Chunks           []Chunk          `json:"chunks,omitempty"`
	Citations        []Citation       `json:"citations,omitempty"`
}

// FacilityDecisions holds all decided capabilities for one facility
type FacilityDecisions struct {
	FacilityID string                        `json:"facility_id"`
	Region     string                        `json:"region,omitempty"`
	Location   Location                      `json:"location"`
	Decisions  map[string]CapabilityDecision `json:"capability_decisions"`
}

// ConfirmedCodes returns the capability codes this facility was positively
// decided to hold.
func (f FacilityDecisions) ConfirmedCodes() []string {
	var codes []string
	for code, d := range f.Decisions {
		if d.Value && d.Reason == ReasonDirectEvidence {
			codes = append(codes, code)
		}
	}
	return codes
}
