package ontology

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// MatchType classifies how a free-text name resolved to a capability code
type MatchType string

const (
	MatchCode    MatchType = "code"
	MatchSynonym MatchType = "synonym"
	MatchToken   MatchType = "token"
	MatchNone    MatchType = "none"
)

// Match-tier confidences. Only the first satisfying tier applies.
const (
	confidenceCode    = 1.0
	confidenceSynonym = 0.95
	confidenceToken   = 0.6
)

// Capability is one ontology entry. Synonyms participate in name
// normalization; ScanTerms are extra phrases looked for when scanning free
// text for mentions of this capability (delivery modalities, equipment
// names) and deliberately do NOT resolve to the code via NormalizeName.
type Capability struct {
	Code        string   `yaml:"code" json:"code"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Synonyms    []string `yaml:"synonyms" json:"synonyms"`
	ScanTerms   []string `yaml:"scan_terms,omitempty" json:"scan_terms,omitempty"`
}

// NormalizedCapability is the result of resolving a free-text name
type NormalizedCapability struct {
	Code        string    `json:"code,omitempty"` // empty when MatchType == none
	DisplayName string    `json:"display_name"`
	MatchType   MatchType `json:"match_type"`
	Confidence  float64   `json:"confidence"`
}

// Registry is the read-only capability ontology. Construct once and pass by
// handle; there is no mutable state after construction.
type Registry struct {
	byCode       map[string]Capability
	bySynonym    map[string]string   // normalized synonym -> code
	sortedCodes  []string            // deterministic token-match iteration
	synonymToken map[string][][]string // code -> token sets of its synonyms
}

// NewRegistry builds a registry from capability entries. Later duplicates of
// a code replace earlier ones.
func NewRegistry(capabilities []Capability) *Registry {
	r := &Registry{
		byCode:       make(map[string]Capability),
		bySynonym:    make(map[string]string),
		synonymToken: make(map[string][][]string),
	}
	for _, cap := range capabilities {
		code := strings.ToUpper(strings.TrimSpace(cap.Code))
		if code == "" {
			continue
		}
		cap.Code = code
		r.byCode[code] = cap

		names := append([]string{cap.DisplayName}, cap.Synonyms...)
		for _, syn := range names {
			norm := normalizeText(syn)
			if norm == "" {
				continue
			}
			if _, exists := r.bySynonym[norm]; !exists {
				r.bySynonym[norm] = code
			}
			r.synonymToken[code] = append(r.synonymToken[code], strings.Fields(norm))
		}
	}

	r.sortedCodes = make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		r.sortedCodes = append(r.sortedCodes, code)
	}
	sort.Strings(r.sortedCodes)

	return r
}

// LoadRegistry reads a YAML ontology file (list of capability entries).
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ontology: %w", err)
	}
	var capabilities []Capability
	if err := yaml.Unmarshal(data, &capabilities); err != nil {
		return nil, fmt.Errorf("parse ontology: %w", err)
	}
	if len(capabilities) == 0 {
		return nil, fmt.Errorf("ontology file %s contains no capabilities", path)
	}
	return NewRegistry(capabilities), nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry built from the built-in
// ontology. Loaded once; callers needing a custom ontology should construct
// their own Registry and pass it explicitly.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(builtinCapabilities)
	})
	return defaultRegistry
}

// Lookup returns the capability entry for a canonical code.
func (r *Registry) Lookup(code string) (Capability, bool) {
	cap, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return cap, ok
}

// Resolve returns the capability entry for a canonical code or a free-text
// name, falling through to NormalizeName when the input is not a code.
func (r *Registry) Resolve(name string) (Capability, bool) {
	if cap, ok := r.Lookup(name); ok {
		return cap, true
	}
	if norm := r.NormalizeName(name); norm.MatchType != MatchNone {
		return r.Lookup(norm.Code)
	}
	return Capability{}, false
}

// MentionTerms returns every phrase scanned when looking for mentions of a
// capability in free text: display name, synonyms and scan terms.
func (r *Registry) MentionTerms(code string) []string {
	cap, ok := r.Lookup(code)
	if !ok {
		return nil
	}
	terms := make([]string, 0, 1+len(cap.Synonyms)+len(cap.ScanTerms))
	terms = append(terms, cap.DisplayName)
	terms = append(terms, cap.Synonyms...)
	terms = append(terms, cap.ScanTerms...)
	return terms
}

// Codes returns all known capability codes in sorted order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.sortedCodes))
	copy(out, r.sortedCodes)
	return out
}

// NormalizeName resolves a free-text capability name to a canonical code.
//
// Matching tiers, first hit wins:
//  1. exact code match (confidence 1.0)
//  2. exact synonym match, case/whitespace-normalized (0.95)
//  3. token-subset match: the query's token set is a superset of some
//     synonym's token set (0.6)
//
// The token tier iterates codes in sorted order and takes the first hit with
// no specificity ranking across candidates. Short ambiguous queries may
// therefore resolve to the lexicographically first plausible code; the order
// is at least reproducible.
func (r *Registry) NormalizeName(name string) NormalizedCapability {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if cap, ok := r.byCode[upper]; ok {
		return NormalizedCapability{
			Code:        cap.Code,
			DisplayName: cap.DisplayName,
			MatchType:   MatchCode,
			Confidence:  confidenceCode,
		}
	}

	norm := normalizeText(name)
	if code, ok := r.bySynonym[norm]; ok {
		return NormalizedCapability{
			Code:        code,
			DisplayName: r.byCode[code].DisplayName,
			MatchType:   MatchSynonym,
			Confidence:  confidenceSynonym,
		}
	}

	queryTokens := tokenSet(norm)
	if len(queryTokens) > 0 {
		for _, code := range r.sortedCodes {
			for _, synTokens := range r.synonymToken[code] {
				if len(synTokens) == 0 {
					continue
				}
				if containsAll(queryTokens, synTokens) {
					return NormalizedCapability{
						Code:        code,
						DisplayName: r.byCode[code].DisplayName,
						MatchType:   MatchToken,
						Confidence:  confidenceToken,
					}
				}
			}
		}
	}

	return NormalizedCapability{
		DisplayName: strings.TrimSpace(name),
		MatchType:   MatchNone,
		Confidence:  0,
	}
}

// Keywords returns the deduplicated token set of a capability's display
// name, synonyms and scan terms, sorted. Used for suspicious-phrase
// intersection checks.
func (r *Registry) Keywords(code string) []string {
	cap, ok := r.Lookup(code)
	if !ok {
		// Unresolved capability keys still need keywords: fall back to
		// the key's own tokens.
		return sortedTokens(normalizeText(code))
	}
	set := make(map[string]bool)
	names := append([]string{cap.Code, cap.DisplayName}, cap.Synonyms...)
	names = append(names, cap.ScanTerms...)
	for _, name := range names {
		for _, tok := range strings.Fields(normalizeText(name)) {
			set[tok] = true
		}
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Tokens returns the normalized token list of arbitrary text.
func Tokens(s string) []string {
	return strings.Fields(normalizeText(s))
}

func sortedTokens(s string) []string {
	set := tokenSet(s)
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// normalizeText lowercases and collapses whitespace/punctuation for matching
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func containsAll(set map[string]bool, tokens []string) bool {
	for _, tok := range tokens {
		if !set[tok] {
			return false
		}
	}
	return true
}
