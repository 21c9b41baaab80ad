package evidence

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
)

func TestNormalizeSnippet_StructuredComplete(t *testing.T) {
	snippet, err := NormalizeSnippet(model.RawSnippet{
		Text:       "CT scanner operational since 2021",
		DocumentID: "doc-1",
		ChunkID:    "chunk-7",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if snippet.DocumentID != "doc-1" || snippet.ChunkID != "chunk-7" {
		t.Errorf("Provenance ids not preserved: %+v", snippet)
	}
	if !snippet.ProvenanceComplete() {
		t.Error("Expected complete provenance")
	}
}

func TestNormalizeSnippet_RejectsIncompleteProvenance(t *testing.T) {
	cases := []model.RawSnippet{
		{Text: "some quote"},
		{Text: "some quote", DocumentID: "doc-1"},
		{Text: "some quote", ChunkID: "chunk-1"},
		{Text: "some quote", DocumentID: model.PlaceholderID, ChunkID: "chunk-1"},
	}
	for i, raw := range cases {
		_, err := NormalizeSnippet(raw)
		if !errors.Is(err, ErrIncompleteProvenance) {
			t.Errorf("case %d: expected ErrIncompleteProvenance, got %v", i, err)
		}
	}
}

func TestNormalizeSnippet_PlaceholderChunkRejected(t *testing.T) {
	_, err := NormalizeSnippet(model.RawSnippet{
		Text:       "quote",
		DocumentID: "doc-1",
		ChunkID:    model.PlaceholderID,
	})
	if !errors.Is(err, ErrIncompleteProvenance) {
		t.Fatalf("Expected ErrIncompleteProvenance for placeholder chunk id, got %v", err)
	}
}

func TestNormalizeSnippet_LegacyGetsSyntheticIDs(t *testing.T) {
	snippet, err := NormalizeSnippet(model.RawSnippet{Text: "X-ray available", Legacy: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(snippet.DocumentID, "gen:doc:") {
		t.Errorf("Expected synthetic document id, got %q", snippet.DocumentID)
	}
	if !strings.HasPrefix(snippet.ChunkID, "gen:chunk:") {
		t.Errorf("Expected synthetic chunk id, got %q", snippet.ChunkID)
	}
	if !snippet.ProvenanceComplete() {
		t.Error("Generated snippets must be provenance-complete")
	}
}

// Synthetic provenance must be stable: assessing the same batch twice (or
// across workers) has to emit identical ids for identical snippet text.
func TestNewGeneratedSnippet_DeterministicIDs(t *testing.T) {
	a := NewGeneratedSnippet("X-ray available")
	b := NewGeneratedSnippet("X-ray available")
	if a.DocumentID != b.DocumentID || a.ChunkID != b.ChunkID {
		t.Errorf("Identical text must yield identical ids: %+v vs %+v", a, b)
	}

	c := NewGeneratedSnippet("pharmacy open daily")
	if c.ChunkID == a.ChunkID {
		t.Error("Distinct text must yield distinct ids")
	}
}

func TestNormalizeSnippet_EmptyTextRejected(t *testing.T) {
	if _, err := NormalizeSnippet(model.RawSnippet{Text: "   ", Legacy: true}); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestNormalizeAll_FailsOnFirstViolation(t *testing.T) {
	_, err := NormalizeAll([]model.RawSnippet{
		{Text: "fine", DocumentID: "d", ChunkID: "c"},
		{Text: "broken"},
	})
	if !errors.Is(err, ErrIncompleteProvenance) {
		t.Fatalf("Expected ErrIncompleteProvenance, got %v", err)
	}
	if !strings.Contains(err.Error(), "evidence[1]") {
		t.Errorf("Expected error to name the offending index, got %q", err)
	}
}

func TestCleanText_StripsMarkup(t *testing.T) {
	got := CleanText("<p>Has <b>CT</b> scanner</p><script>alert(1)</script>")
	if got != "Has CT scanner" {
		t.Errorf("Expected stripped text, got %q", got)
	}
}

func TestCleanText_PlainTextCollapsed(t *testing.T) {
	got := CleanText("  MRI   services \n available ")
	if got != "MRI services available" {
		t.Errorf("Expected collapsed whitespace, got %q", got)
	}
}

func TestCleanText_TruncatesLongQuotes(t *testing.T) {
	long := strings.Repeat("x", 500)
	if got := CleanText(long); len(got) > 200 {
		t.Errorf("Expected truncation to 200 chars, got %d", len(got))
	}
}

func TestCleanText_TruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes; 200 is not a multiple of 3, so a byte slice would split one.
	long := strings.Repeat("放", 100)
	got := CleanText(long)
	if len(got) > 200 {
		t.Fatalf("Expected truncation to 200 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("Truncation must not split a rune")
	}
}

func TestRawSnippet_UnmarshalBothForms(t *testing.T) {
	var structured model.RawSnippet
	if err := structured.UnmarshalJSON([]byte(`{"text":"q","document_id":"d","chunk_id":"c"}`)); err != nil {
		t.Fatalf("structured: %v", err)
	}
	if structured.Legacy {
		t.Error("Structured form must not be flagged legacy")
	}

	var legacy model.RawSnippet
	if err := legacy.UnmarshalJSON([]byte(`"bare quote"`)); err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if !legacy.Legacy || legacy.Text != "bare quote" {
		t.Errorf("Expected legacy bare-string form, got %+v", legacy)
	}
}
