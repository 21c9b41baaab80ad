package model

import (
	"bytes"
	"encoding/json"
)

// PlaceholderID marks a provenance field whose real value is unknown.
// Snippets carrying it are provenance-incomplete and must not reach a
// decision (see evidence.NormalizeSnippet for the one sanctioned backfill
// path).
const PlaceholderID = "unknown"

// EvidenceSnippet is a quoted span of source text backing a claim.
// Immutable once created.
type EvidenceSnippet struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
}

// ProvenanceComplete reports whether the snippet can be traced back to a
// real document and chunk.
func (s EvidenceSnippet) ProvenanceComplete() bool {
	return s.Text != "" &&
		s.DocumentID != "" && s.DocumentID != PlaceholderID &&
		s.ChunkID != "" && s.ChunkID != PlaceholderID
}

// RawSnippet is evidence as it arrives from extraction: either a structured
// object or, in older payloads, a bare string. The Legacy flag records which
// shape was seen so ingestion can apply the backfill policy explicitly
// instead of guessing per call site.
type RawSnippet struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id,omitempty"`
	ChunkID    string `json:"chunk_id,omitempty"`
	Legacy     bool   `json:"-"`
}

// UnmarshalJSON accepts both the structured object form and the legacy
// bare-string form.
func (s *RawSnippet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*s = RawSnippet{Text: text, Legacy: true}
		return nil
	}
	type alias RawSnippet
	var a alias
	if err := json.Unmarshal(trimmed, &a); err != nil {
		return err
	}
	*s = RawSnippet(a)
	return nil
}

// SourceType classifies where a citation points
type SourceType string

const (
	SourceTypeText  SourceType = "text"
	SourceTypeTable SourceType = "table"
)

// Locator pins a citation to a position inside its source document
type Locator struct {
	Row     *int    `json:"row,omitempty"`
	Col     *string `json:"col,omitempty"`
	ChunkID string  `json:"chunk_id,omitempty"`
}

// Span is a character range inside a chunk
type Span struct {
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// Citation links a supply entry to a quoted span of source material.
// Quotes are capped at 200 characters at construction.
type Citation struct {
	CitationID  string     `json:"citation_id"`
	SourceDocID string     `json:"source_doc_id"`
	SourceType  SourceType `json:"source_type"`
	Locator     Locator    `json:"locator"`
	Span        *Span      `json:"span,omitempty"`
	Quote       string     `json:"quote"`
	Confidence  float64    `json:"confidence"`
}

// Chunk is a retrievable unit of source text, keyed by chunk id
type Chunk struct {
	ChunkID     string  `json:"chunk_id"`
	SourceDocID string  `json:"source_doc_id"`
	Text        string  `json:"text"`
	Locator     Locator `json:"locator,omitempty"`
}
