package score

import (
	"reflect"
	"testing"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
)

func TestDetectGaps_RouteToFullCoverage(t *testing.T) {
	s := testScorer() // coverage threshold 0.5, radius 150, top-k 5
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
		Urgency:              8,
	}
	facilities := []Facility{
		located("near", 0, 0.2, model.VerdictPlausible, "EMERGENCY_CARE"),
	}

	report := s.DetectGaps(demand, facilities)
	if report.Recommendation.Type != model.RecommendRoute {
		t.Fatalf("Expected route, got %s", report.Recommendation.Type)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(report.Candidates))
	}
	if report.Candidates[0].Coverage != 1.0 {
		t.Errorf("Expected full coverage, got %v", report.Candidates[0].Coverage)
	}
	// Full coverage leaves no residual desert
	if report.DesertScore != 0 {
		t.Errorf("Expected desert score 0, got %v", report.DesertScore)
	}
}

func TestDetectGaps_EmptySupplyIsInvest(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 9.0, Lon: 38.7},
		RequiredCapabilities: []string{"ONC_GENERAL"},
		Urgency:              10,
	}

	report := s.DetectGaps(demand, nil)
	if report.Recommendation.Type != model.RecommendInvest {
		t.Fatalf("Expected invest, got %s", report.Recommendation.Type)
	}
	// Maximum urgency with nothing in range: 0.6 + 0.4*1.0
	if report.DesertScore < 0.7 {
		t.Errorf("Expected desert score >= 0.7, got %v", report.DesertScore)
	}
	if report.DesertScore != 1.0 {
		t.Errorf("Expected desert score 1.0, got %v", report.DesertScore)
	}
	if len(report.Candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(report.Candidates))
	}
}

func TestDetectGaps_OnlyImpossibleFacilitiesIsInvest(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
		Urgency:              5,
	}
	facilities := []Facility{
		located("bad", 0, 0.1, model.VerdictImpossible, "EMERGENCY_CARE"),
	}

	report := s.DetectGaps(demand, facilities)
	// Impossible weight zeroes coverage, so the facility never qualifies
	if len(report.Candidates) != 0 {
		t.Fatalf("Impossible facility must not be a candidate, got %d", len(report.Candidates))
	}
	if report.Recommendation.Type != model.RecommendInvest {
		t.Errorf("Expected invest, got %s", report.Recommendation.Type)
	}
}

func TestDetectGaps_PartialCoverageIsStrengthen(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"EMERGENCY_CARE", "SURGERY_GENERAL"},
		Urgency:              7,
	}
	facilities := []Facility{
		// Holds one of two required: coverage 0.5, not above the threshold
		located("partial", 0, 0.2, model.VerdictPlausible, "EMERGENCY_CARE"),
	}

	report := s.DetectGaps(demand, facilities)
	if report.Recommendation.Type != model.RecommendStrengthen {
		t.Fatalf("Expected strengthen, got %s", report.Recommendation.Type)
	}
	if len(report.Candidates) != 0 {
		t.Errorf("Coverage at the threshold must not qualify, got %d candidates", len(report.Candidates))
	}
	if report.DesertScore <= 0 || report.DesertScore > 1 {
		t.Errorf("Desert score out of bounds: %v", report.DesertScore)
	}
}

func TestDetectGaps_SuspiciousVerdictDiscountsCoverage(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
		Urgency:              5,
	}
	facilities := []Facility{
		located("sus", 0, 0.2, model.VerdictSuspicious, "EMERGENCY_CARE"),
	}

	report := s.DetectGaps(demand, facilities)
	if len(report.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(report.Candidates))
	}
	if report.Candidates[0].Coverage != 0.7 {
		t.Errorf("Suspicious verdict weights coverage by 0.7, got %v", report.Candidates[0].Coverage)
	}
}

func TestDetectGaps_RankingIsDeterministic(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
		Urgency:              5,
	}
	// Identical coverage and distance: the id breaks the tie
	facilities := []Facility{
		located("zeta", 0, 0.2, model.VerdictPlausible, "EMERGENCY_CARE"),
		located("alpha", 0, 0.2, model.VerdictPlausible, "EMERGENCY_CARE"),
	}

	first := s.DetectGaps(demand, facilities)
	ids := make([]string, 0, len(first.Candidates))
	for _, c := range first.Candidates {
		ids = append(ids, c.FacilityID)
	}
	if !reflect.DeepEqual(ids, []string{"alpha", "zeta"}) {
		t.Fatalf("Expected id tiebreak [alpha zeta], got %v", ids)
	}

	for i := 0; i < 5; i++ {
		again := s.DetectGaps(demand, facilities)
		if !reflect.DeepEqual(again, first) {
			t.Fatal("DetectGaps must be deterministic for identical inputs")
		}
	}
}

func TestDetectGaps_RadiusExcludesFarFacilities(t *testing.T) {
	s := testScorer() // radius 150 km
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
		Urgency:              5,
	}
	facilities := []Facility{
		located("far", 0, 5, model.VerdictPlausible, "EMERGENCY_CARE"), // ~556 km
	}

	report := s.DetectGaps(demand, facilities)
	if len(report.Candidates) != 0 {
		t.Fatalf("Facility beyond the radius must not qualify, got %d", len(report.Candidates))
	}
	if report.Recommendation.Type != model.RecommendStrengthen {
		t.Errorf("Expected strengthen, got %s", report.Recommendation.Type)
	}
}

func TestDetectGaps_MissingCoordinatesNeverQualify(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
	}
	facilities := []Facility{
		{FacilityID: "nowhere", Codes: map[string]bool{"EMERGENCY_CARE": true}, Verdict: model.VerdictPlausible},
	}

	report := s.DetectGaps(demand, facilities)
	if len(report.Candidates) != 0 {
		t.Error("Facility without coordinates must never be a candidate")
	}
}

func TestDetectGaps_TopKBound(t *testing.T) {
	cfg := model.DefaultConfig().Scoring
	cfg.TopK = 2
	s := NewScorer(nil, cfg)

	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"EMERGENCY_CARE"},
		Urgency:              5,
	}
	facilities := []Facility{
		located("a", 0, 0.1, model.VerdictPlausible, "EMERGENCY_CARE"),
		located("b", 0, 0.2, model.VerdictPlausible, "EMERGENCY_CARE"),
		located("c", 0, 0.3, model.VerdictPlausible, "EMERGENCY_CARE"),
	}

	report := s.DetectGaps(demand, facilities)
	if len(report.Candidates) != 2 {
		t.Fatalf("Expected top-k of 2 candidates, got %d", len(report.Candidates))
	}
	if report.Candidates[0].FacilityID != "a" || report.Candidates[1].FacilityID != "b" {
		t.Errorf("Expected nearest-first [a b], got %+v", report.Candidates)
	}
}

func TestDetectGaps_LowercaseRequiredCodesNormalized(t *testing.T) {
	s := testScorer()
	demand := model.DemandRecord{
		DemandID:             "d1",
		Location:             model.GeoPoint{Lat: 0, Lon: 0},
		RequiredCapabilities: []string{"emergency_care"},
		Urgency:              5,
	}
	facilities := []Facility{
		located("a", 0, 0.2, model.VerdictPlausible, "EMERGENCY_CARE"),
	}

	report := s.DetectGaps(demand, facilities)
	if len(report.Candidates) != 1 {
		t.Fatalf("Expected lowercase required code to match, got %d candidates", len(report.Candidates))
	}
}
