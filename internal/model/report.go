package model

import "time"

// RiskLevel is the discrete regional risk classification
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RegionalAssessment is the derived per-region coverage view. Recomputed
// whole whenever the facility set changes; never patched in place.
type RegionalAssessment struct {
	Region              string    `json:"region"`
	CoverageScore       float64   `json:"coverage_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	Explanation         string    `json:"explanation"`
	FacilityIDs         []string  `json:"facility_ids"`
	MissingCapabilities []string  `json:"missing_capabilities"`
}

// DesertSubscores is the transparent breakdown of a desert score
type DesertSubscores struct {
	DistanceComponent           float64 `json:"distance_component"`
	MissingPrereqsComponent     float64 `json:"missing_prerequisites_component"`
	DataIncompletenessComponent float64 `json:"data_incompleteness_component"`
	TotalScore                  float64 `json:"total_score"`
}

// DesertScore measures the capability gap for one facility against a target
// capability. Derived per scoring request; the caller owns persistence.
type DesertScore struct {
	FacilityID                 string          `json:"facility_id"`
	CapabilityTarget           string          `json:"capability_target"`
	DistanceKmToNearestCapable *float64        `json:"distance_km_to_nearest_capable,omitempty"`
	MissingPrerequisites       []string        `json:"missing_prerequisites"`
	CoverageGapScore           float64         `json:"coverage_gap_score"`
	Confidence                 float64         `json:"confidence"`
	Subscores                  DesertSubscores `json:"subscores"`
	Evidence                   []string        `json:"evidence,omitempty"`
	Explanation                string          `json:"explanation"`
}

// DemandRecord is a demand point: where care is needed and how urgently
type DemandRecord struct {
	DemandID             string   `json:"demand_id"`
	Location             GeoPoint `json:"location"`
	RequiredCapabilities []string `json:"required_capabilities"`
	Urgency              int      `json:"urgency"` // 0-10
}

// GapCandidate is a facility ranked against a demand record
type GapCandidate struct {
	FacilityID string  `json:"facility_id"`
	Coverage   float64 `json:"coverage"`
	DistanceKm float64 `json:"distance_km"`
	Verdict    Verdict `json:"verdict"`
}

// RecommendationType classifies the suggested response to a gap
type RecommendationType string

const (
	RecommendRoute      RecommendationType = "route"      // viable candidates exist
	RecommendStrengthen RecommendationType = "strengthen" // partial coverage nearby
	RecommendInvest     RecommendationType = "invest"     // nothing usable in range
)

// Recommendation pairs a recommendation type with its rationale
type Recommendation struct {
	Type      RecommendationType `json:"type"`
	Rationale string             `json:"rationale"`
}

// GapReport is the demand-driven gap view for one demand record
type GapReport struct {
	DemandID       string         `json:"demand_id"`
	DesertScore    float64        `json:"desert_score"`
	Candidates     []GapCandidate `json:"candidates"`
	Recommendation Recommendation `json:"recommendation"`
	Explanation    string         `json:"explanation"`
}

// FacilityAssessment bundles everything decided about one facility
type FacilityAssessment struct {
	FacilityID string                        `json:"facility_id"`
	Region     string                        `json:"region,omitempty"`
	Decisions  map[string]CapabilityDecision `json:"capability_decisions"`
	Validation *ValidationResult             `json:"validation,omitempty"`
}

// FacilityError records a single facility whose assessment failed. One
// facility's failure never aborts the batch.
type FacilityError struct {
	FacilityID string `json:"facility_id"`
	Stage      string `json:"stage"`
	Message    string `json:"message"`
}

// AssessmentReport is the full output of one assessment run
type AssessmentReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Facilities  []FacilityAssessment `json:"facilities"`
	Regions     []RegionalAssessment `json:"regions"`
	Errors      []FacilityError      `json:"errors,omitempty"`
}
