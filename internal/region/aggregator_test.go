package region

import (
	"reflect"
	"testing"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

func confirmed() model.CapabilityDecision {
	return model.CapabilityDecision{Value: true, Reason: model.ReasonDirectEvidence}
}

func rejected() model.CapabilityDecision {
	return model.CapabilityDecision{Value: false, Reason: model.ReasonInsufficientEvidence}
}

func facility(id, region string, codes ...string) model.FacilityDecisions {
	decisions := make(map[string]model.CapabilityDecision)
	for _, code := range codes {
		decisions[code] = confirmed()
	}
	return model.FacilityDecisions{FacilityID: id, Region: region, Decisions: decisions}
}

func TestAssess_FullCoverage(t *testing.T) {
	fac := facility("f1", "north", ontology.EssentialCapabilities...)
	assessments := Assess([]model.FacilityDecisions{fac})

	if len(assessments) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(assessments))
	}
	a := assessments[0]
	if a.CoverageScore != 1.0 {
		t.Errorf("Expected coverage 1.0, got %v", a.CoverageScore)
	}
	if a.RiskLevel != model.RiskLow {
		t.Errorf("Expected low risk, got %s", a.RiskLevel)
	}
	if len(a.MissingCapabilities) != 0 {
		t.Errorf("Expected nothing missing, got %v", a.MissingCapabilities)
	}
}

func TestAssess_RiskThresholds(t *testing.T) {
	tests := []struct {
		confirmed int
		risk      model.RiskLevel
	}{
		{0, model.RiskHigh},
		{1, model.RiskHigh},
		{2, model.RiskMedium},
		{3, model.RiskMedium},
		{4, model.RiskLow},
		{6, model.RiskLow},
	}
	for _, tt := range tests {
		fac := facility("f1", "r", ontology.EssentialCapabilities[:tt.confirmed]...)
		a := Assess([]model.FacilityDecisions{fac})[0]
		if a.RiskLevel != tt.risk {
			t.Errorf("%d confirmed: expected %s, got %s", tt.confirmed, tt.risk, a.RiskLevel)
		}
	}
}

func TestAssess_CoverageRounding(t *testing.T) {
	fac := facility("f1", "r", "PHARMACY")
	a := Assess([]model.FacilityDecisions{fac})[0]
	// 1/6 rounded to three decimals
	if a.CoverageScore != 0.167 {
		t.Errorf("Expected coverage 0.167, got %v", a.CoverageScore)
	}
}

func TestAssess_OnlyDirectEvidenceCounts(t *testing.T) {
	fac := model.FacilityDecisions{
		FacilityID: "f1",
		Region:     "r",
		Decisions: map[string]model.CapabilityDecision{
			"PHARMACY":  rejected(),
			"LAB_BASIC": {Value: true, Reason: model.ReasonSuspiciousClaim}, // malformed input, must not count
		},
	}
	a := Assess([]model.FacilityDecisions{fac})[0]
	if a.CoverageScore != 0 {
		t.Errorf("Expected coverage 0, got %v", a.CoverageScore)
	}
	if a.RiskLevel != model.RiskHigh {
		t.Errorf("Expected high risk, got %s", a.RiskLevel)
	}
}

func TestAssess_PoolsAcrossFacilities(t *testing.T) {
	facilities := []model.FacilityDecisions{
		facility("f1", "east", "PHARMACY", "LAB_BASIC"),
		facility("f2", "east", "EMERGENCY_CARE", "IMAGING_XRAY"),
	}
	a := Assess(facilities)[0]
	if a.CoverageScore != 0.667 {
		t.Errorf("Expected pooled coverage 0.667, got %v", a.CoverageScore)
	}
	if a.RiskLevel != model.RiskLow {
		t.Errorf("Expected low risk from 4 confirmed, got %s", a.RiskLevel)
	}
	if !reflect.DeepEqual(a.FacilityIDs, []string{"f1", "f2"}) {
		t.Errorf("Expected sorted facility ids, got %v", a.FacilityIDs)
	}
	want := []string{"MATERNITY_CARE", "SURGERY_GENERAL"}
	if !reflect.DeepEqual(a.MissingCapabilities, want) {
		t.Errorf("Expected missing %v, got %v", want, a.MissingCapabilities)
	}
}

func TestAssess_UnknownRegionBucket(t *testing.T) {
	facilities := []model.FacilityDecisions{
		facility("f1", "", "PHARMACY"),
		facility("f2", "west", "PHARMACY"),
	}
	assessments := Assess(facilities)
	if len(assessments) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(assessments))
	}
	// Sorted: "unknown" then "west"
	if assessments[0].Region != UnknownRegion || assessments[1].Region != "west" {
		t.Errorf("Expected [unknown west], got [%s %s]", assessments[0].Region, assessments[1].Region)
	}
}

func TestAssess_ExplanationIsReproducible(t *testing.T) {
	facilities := []model.FacilityDecisions{
		facility("f2", "south", "PHARMACY"),
		facility("f1", "south"),
	}

	first := Assess(facilities)[0]
	want := "Region south: 1/6 essential capabilities confirmed by direct evidence across facilities [f1, f2]; " +
		"missing: EMERGENCY_CARE, IMAGING_XRAY, LAB_BASIC, MATERNITY_CARE, SURGERY_GENERAL."
	if first.Explanation != want {
		t.Fatalf("Explanation mismatch:\n got: %q\nwant: %q", first.Explanation, want)
	}

	for i := 0; i < 5; i++ {
		again := Assess(facilities)[0]
		if again.Explanation != first.Explanation {
			t.Fatal("Explanation must be byte-identical across runs")
		}
	}
}

func TestAssess_EmptyInput(t *testing.T) {
	if got := Assess(nil); len(got) != 0 {
		t.Errorf("Expected no assessments for no facilities, got %d", len(got))
	}
}
