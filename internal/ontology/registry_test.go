package ontology

import "testing"

func TestNormalizeName_CodeMatch(t *testing.T) {
	r := Default()

	match := r.NormalizeName("imaging_ct")
	if match.Code != "IMAGING_CT" {
		t.Fatalf("Expected IMAGING_CT, got %q", match.Code)
	}
	if match.MatchType != MatchCode {
		t.Errorf("Expected code match, got %s", match.MatchType)
	}
	if match.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", match.Confidence)
	}
}

func TestNormalizeName_SynonymMatch(t *testing.T) {
	r := Default()

	tests := []struct {
		name string
		code string
	}{
		{"CT scanner", "IMAGING_CT"},
		{"  Operating Theatre  ", "SURGERY_GENERAL"},
		{"x-ray", "IMAGING_XRAY"},
		{"chemotherapy delivery", "ONC_CHEMOTHERAPY"},
		{"A&E", "EMERGENCY_CARE"},
	}
	for _, tt := range tests {
		match := r.NormalizeName(tt.name)
		if match.Code != tt.code {
			t.Errorf("%q: expected %s, got %q (%s)", tt.name, tt.code, match.Code, match.MatchType)
			continue
		}
		if match.MatchType != MatchSynonym {
			t.Errorf("%q: expected synonym match, got %s", tt.name, match.MatchType)
		}
		if match.Confidence != 0.95 {
			t.Errorf("%q: expected confidence 0.95, got %v", tt.name, match.Confidence)
		}
	}
}

func TestNormalizeName_TokenMatch(t *testing.T) {
	r := Default()

	// Query tokens are a superset of the "x ray" synonym token set but match
	// no synonym exactly.
	match := r.NormalizeName("digital x-ray suite")
	if match.Code != "IMAGING_XRAY" {
		t.Fatalf("Expected IMAGING_XRAY, got %q (%s)", match.Code, match.MatchType)
	}
	if match.MatchType != MatchToken {
		t.Errorf("Expected token match, got %s", match.MatchType)
	}
	if match.Confidence != 0.6 {
		t.Errorf("Expected confidence 0.6, got %v", match.Confidence)
	}
}

func TestNormalizeName_TokenMatchIsReproducible(t *testing.T) {
	r := Default()

	first := r.NormalizeName("full service imaging with x ray and more")
	for i := 0; i < 20; i++ {
		again := r.NormalizeName("full service imaging with x ray and more")
		if again.Code != first.Code {
			t.Fatalf("Token match not reproducible: %q then %q", first.Code, again.Code)
		}
	}
}

func TestNormalizeName_NoMatch(t *testing.T) {
	r := Default()

	match := r.NormalizeName("helipad")
	if match.MatchType != MatchNone {
		t.Fatalf("Expected no match, got %s (%q)", match.MatchType, match.Code)
	}
	if match.Code != "" {
		t.Errorf("Expected empty code, got %q", match.Code)
	}
	if match.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %v", match.Confidence)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := Default()

	cap, ok := r.Lookup(" imaging_xray ")
	if !ok {
		t.Fatal("Expected lookup to succeed")
	}
	if cap.Code != "IMAGING_XRAY" {
		t.Errorf("Expected IMAGING_XRAY, got %q", cap.Code)
	}
}

func TestResolve_FreeTextName(t *testing.T) {
	r := Default()

	cap, ok := r.Resolve("oncology_services")
	if !ok {
		t.Fatal("Expected free-text name to resolve")
	}
	if cap.Code != "ONC_GENERAL" {
		t.Errorf("Expected ONC_GENERAL, got %q", cap.Code)
	}

	if cap, ok := r.Resolve("IMAGING_CT"); !ok || cap.Code != "IMAGING_CT" {
		t.Errorf("Expected canonical code to resolve to itself, got %q ok=%v", cap.Code, ok)
	}

	if _, ok := r.Resolve("helipad"); ok {
		t.Error("Expected unknown name to stay unresolved")
	}
}

func TestMentionTerms_CoverScanTerms(t *testing.T) {
	r := Default()

	terms := r.MentionTerms("ONC_GENERAL")
	found := map[string]bool{}
	for _, term := range terms {
		found[term] = true
	}
	for _, want := range []string{"General oncology", "oncology services", "chemotherapy", "chemotherapy delivery"} {
		if !found[want] {
			t.Errorf("Expected mention term %q in %v", want, terms)
		}
	}

	if got := r.MentionTerms("NOT_A_CODE"); got != nil {
		t.Errorf("Expected nil for unknown code, got %v", got)
	}
}

// Scan terms widen mention detection only; name normalization still resolves
// the modality to its own code.
func TestNormalizeName_ScanTermsDoNotResolve(t *testing.T) {
	r := Default()

	if match := r.NormalizeName("chemotherapy"); match.Code != "ONC_CHEMOTHERAPY" {
		t.Errorf("Expected ONC_CHEMOTHERAPY, got %q (%s)", match.Code, match.MatchType)
	}
}

func TestKeywords_UnresolvedCodeFallsBackToOwnTokens(t *testing.T) {
	r := Default()

	keywords := r.Keywords("SOME_UNKNOWN_THING")
	if len(keywords) == 0 {
		t.Fatal("Expected fallback tokens for unknown code")
	}
	found := map[string]bool{}
	for _, kw := range keywords {
		found[kw] = true
	}
	for _, want := range []string{"some", "unknown", "thing"} {
		if !found[want] {
			t.Errorf("Expected token %q in fallback keywords %v", want, keywords)
		}
	}
}

func TestCodes_SortedAndCopied(t *testing.T) {
	r := Default()

	codes := r.Codes()
	if len(codes) == 0 {
		t.Fatal("Expected built-in codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("Codes not sorted at %d: %q >= %q", i, codes[i-1], codes[i])
		}
	}

	codes[0] = "MUTATED"
	if r.Codes()[0] == "MUTATED" {
		t.Error("Codes() must return a copy")
	}
}

func TestNewRegistry_NormalizesCodes(t *testing.T) {
	r := NewRegistry([]Capability{
		{Code: " telemedicine ", DisplayName: "Telemedicine", Synonyms: []string{"remote consults"}},
	})

	if _, ok := r.Lookup("TELEMEDICINE"); !ok {
		t.Fatal("Expected code to be upper-cased on construction")
	}
	match := r.NormalizeName("remote consults")
	if match.Code != "TELEMEDICINE" {
		t.Errorf("Expected synonym to resolve, got %q", match.Code)
	}
}
