package decide

import (
	"strings"
	"testing"

	"github.com/RichterLProgram/CuraWay-sub000/internal/evidence"
	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

func testEngine() *Engine {
	return NewEngine(ontology.Default(), model.DefaultConfig().Decision)
}

func affirmingSnippet(text string) model.EvidenceSnippet {
	return evidence.NewGeneratedSnippet(text)
}

func TestDecide_DirectEvidenceAccepted(t *testing.T) {
	e := testEngine()

	d := e.Decide(Input{
		Capability: "IMAGING_CT",
		RawValue:   true,
		Confidence: 0.9,
		Evidence:   []model.EvidenceSnippet{affirmingSnippet("CT scanner operational since 2021")},
	})

	if !d.Value {
		t.Fatal("Expected claim to be accepted")
	}
	if d.Reason != model.ReasonDirectEvidence {
		t.Errorf("Expected direct_evidence, got %s", d.Reason)
	}
	// Accepted claims never report more confidence than the strong threshold.
	if d.Confidence != 0.6 {
		t.Errorf("Expected confidence capped at 0.6, got %v", d.Confidence)
	}
}

func TestDecide_BelowThresholdRejected(t *testing.T) {
	e := testEngine()

	d := e.Decide(Input{
		Capability: "IMAGING_CT",
		RawValue:   true,
		Confidence: 0.5,
		Evidence:   []model.EvidenceSnippet{affirmingSnippet("CT scanner on site")},
	})

	if d.Value {
		t.Fatal("Expected claim below strong threshold to be rejected")
	}
	if d.Reason != model.ReasonInsufficientEvidence {
		t.Errorf("Expected insufficient_evidence, got %s", d.Reason)
	}
	// Weak ceiling applies: min(0.5, 0.4)
	if d.Confidence != 0.4 {
		t.Errorf("Expected confidence 0.4, got %v", d.Confidence)
	}
}

func TestDecide_NoEvidenceEpsilon(t *testing.T) {
	e := testEngine()

	d := e.Decide(Input{
		Capability: "PHARMACY",
		RawValue:   true,
		Confidence: 0.99,
	})

	if d.Value {
		t.Fatal("A claim with no evidence must never be accepted")
	}
	if d.Confidence != 0.05 {
		t.Errorf("Expected epsilon confidence 0.05, got %v", d.Confidence)
	}
}

func TestDecide_ConflictingEvidence(t *testing.T) {
	e := testEngine()

	d := e.Decide(Input{
		Capability: "IMAGING_CT",
		RawValue:   true,
		Confidence: 0.95,
		Evidence: []model.EvidenceSnippet{
			affirmingSnippet("CT scanner installed and operational"),
			affirmingSnippet("the CT scanner is no longer in service"),
		},
	})

	if d.Value {
		t.Fatal("Conflicting evidence must reject the claim")
	}
	if d.Reason != model.ReasonConflictingEvidence {
		t.Errorf("Expected conflicting_evidence, got %s", d.Reason)
	}
	if d.Confidence > 0.4 {
		t.Errorf("Rejected claim confidence must respect the weak ceiling, got %v", d.Confidence)
	}
}

func TestDecide_SingleSnippetNeverConflicts(t *testing.T) {
	e := testEngine()

	d := e.Decide(Input{
		Capability: "IMAGING_CT",
		RawValue:   true,
		Confidence: 0.9,
		Evidence:   []model.EvidenceSnippet{affirmingSnippet("no CT scanner here")},
	})

	if d.Reason == model.ReasonConflictingEvidence {
		t.Error("A single snippet cannot conflict with itself")
	}
}

// Claim keys arrive as free text, not canonical codes. A negated delivery
// modality ("No chemotherapy available") must still flip an oncology claim
// to conflicting_evidence.
func TestDecide_FreeTextCapabilityKeyConflict(t *testing.T) {
	e := testEngine()

	in := Input{
		Capability: "oncology_services",
		RawValue:   true,
		Confidence: 0.8,
		Evidence: []model.EvidenceSnippet{
			{Text: "We provide chemotherapy delivery for solid tumors", DocumentID: "doc1", ChunkID: "c1"},
		},
	}
	d := e.Decide(in)
	if !d.Value || d.Reason != model.ReasonDirectEvidence {
		t.Fatalf("Expected acceptance, got value=%v reason=%s", d.Value, d.Reason)
	}

	in.Evidence = append(in.Evidence, model.EvidenceSnippet{
		Text: "No chemotherapy available", DocumentID: "doc1", ChunkID: "c2",
	})
	d = e.Decide(in)
	if d.Value {
		t.Fatal("Expected the negated snippet to reject the claim")
	}
	if d.Reason != model.ReasonConflictingEvidence {
		t.Errorf("Expected conflicting_evidence, got %s", d.Reason)
	}
}

func TestDecide_SuspiciousClaimOverride(t *testing.T) {
	e := testEngine()
	suspicious := []string{"ct scanner claims could not be verified"}

	d := e.Decide(Input{
		Capability:       "IMAGING_CT",
		RawValue:         true,
		Confidence:       0.7,
		Evidence:         []model.EvidenceSnippet{affirmingSnippet("CT scanner available")},
		SuspiciousClaims: suspicious,
	})
	if d.Value || d.Reason != model.ReasonSuspiciousClaim {
		t.Fatalf("Expected suspicious_claim rejection, got value=%v reason=%s", d.Value, d.Reason)
	}

	// Confidence at or above the override threshold survives the phrase.
	d = e.Decide(Input{
		Capability:       "IMAGING_CT",
		RawValue:         true,
		Confidence:       0.85,
		Evidence:         []model.EvidenceSnippet{affirmingSnippet("CT scanner available")},
		SuspiciousClaims: suspicious,
	})
	if !d.Value || d.Reason != model.ReasonDirectEvidence {
		t.Fatalf("Expected high-confidence claim to survive, got value=%v reason=%s", d.Value, d.Reason)
	}
}

func TestDecide_UnrelatedSuspiciousPhraseIgnored(t *testing.T) {
	e := testEngine()

	d := e.Decide(Input{
		Capability:       "PHARMACY",
		RawValue:         true,
		Confidence:       0.7,
		Evidence:         []model.EvidenceSnippet{affirmingSnippet("pharmacy open daily")},
		SuspiciousClaims: []string{"helipad reports seem inflated"},
	})
	if d.Reason == model.ReasonSuspiciousClaim {
		t.Error("Phrase sharing no keywords with the capability must not trigger")
	}
}

// Value may only ever be true alongside a direct_evidence reason, whatever
// the input combination.
func TestDecide_ValueImpliesDirectEvidence(t *testing.T) {
	e := testEngine()

	confidences := []float64{0, 0.3, 0.59, 0.6, 0.8, 1.0}
	evidenceSets := [][]model.EvidenceSnippet{
		nil,
		{affirmingSnippet("CT scanner on site")},
		{affirmingSnippet("CT scanner on site"), affirmingSnippet("no CT scanner anymore")},
	}
	suspiciousSets := [][]string{nil, {"ct scanner numbers doubtful"}}

	for _, raw := range []bool{true, false} {
		for _, conf := range confidences {
			for _, ev := range evidenceSets {
				for _, sus := range suspiciousSets {
					d := e.Decide(Input{
						Capability:       "IMAGING_CT",
						RawValue:         raw,
						Confidence:       conf,
						Evidence:         ev,
						SuspiciousClaims: sus,
					})
					if d.Value && d.Reason != model.ReasonDirectEvidence {
						t.Fatalf("value=true with reason %s (raw=%v conf=%v ev=%d sus=%d)",
							d.Reason, raw, conf, len(ev), len(sus))
					}
					if d.Confidence < 0 || d.Confidence > 1 {
						t.Fatalf("confidence out of bounds: %v", d.Confidence)
					}
				}
			}
		}
	}
}

func TestDecideFacility_SortsKeysAndNormalizesEvidence(t *testing.T) {
	e := testEngine()

	fd, err := e.DecideFacility(model.FacilityClaims{
		FacilityID: "f1",
		Region:     "north",
		Claims: map[string]model.CapabilityClaim{
			"PHARMACY": {Value: true, Confidence: 0.9, Evidence: []model.RawSnippet{
				{Text: "pharmacy open daily", Legacy: true},
			}},
			"IMAGING_CT": {Value: true, Confidence: 0.9, Evidence: []model.RawSnippet{
				{Text: "CT scanner operational", DocumentID: "doc-1", ChunkID: "chunk-1"},
			}},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(fd.Decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(fd.Decisions))
	}
	ct := fd.Decisions["IMAGING_CT"]
	if !ct.Value || ct.Evidence[0].DocumentID != "doc-1" {
		t.Errorf("Structured provenance must be preserved: %+v", ct.Evidence)
	}
	ph := fd.Decisions["PHARMACY"]
	if !strings.HasPrefix(ph.Evidence[0].DocumentID, "gen:doc:") {
		t.Errorf("Legacy evidence must get synthetic ids, got %q", ph.Evidence[0].DocumentID)
	}
}

func TestDecideFacility_ProvenanceViolationFailsFacility(t *testing.T) {
	e := testEngine()

	_, err := e.DecideFacility(model.FacilityClaims{
		FacilityID: "f1",
		Claims: map[string]model.CapabilityClaim{
			"IMAGING_CT": {Value: true, Confidence: 0.9, Evidence: []model.RawSnippet{
				{Text: "CT scanner operational"}, // structured but no ids
			}},
		},
	}, nil)
	if err == nil {
		t.Fatal("Expected provenance violation to fail the facility")
	}
	if !strings.Contains(err.Error(), "IMAGING_CT") {
		t.Errorf("Error should name the capability, got %q", err)
	}
}

func TestDecideFacility_MissingIDRejected(t *testing.T) {
	e := testEngine()
	if _, err := e.DecideFacility(model.FacilityClaims{}, nil); err == nil {
		t.Fatal("Expected error for missing facility_id")
	}
}
