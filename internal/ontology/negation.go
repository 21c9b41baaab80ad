package ontology

import "strings"

// DefaultNegationWindow is the token window scanned around a term mention.
const DefaultNegationWindow = 5

// negationMarkers are the phrases that mark a mention as negated. Multi-word
// markers are matched as token sequences.
var negationMarkers = [][]string{
	{"no"},
	{"not"},
	{"without"},
	{"lacks"},
	{"lacking"},
	{"unavailable"},
	{"not", "available"},
	{"doesn", "t", "have"},
	{"does", "not", "have"},
	{"no", "longer"},
	{"discontinued"},
}

// DetectNegatedMention reports whether any of the terms is mentioned within
// a negation context in the text. For each term occurrence, the surrounding
// ±window tokens are scanned for a negation marker; the first hit wins.
func DetectNegatedMention(text string, terms []string, window int) bool {
	if text == "" || len(terms) == 0 {
		return false
	}
	if window <= 0 {
		window = DefaultNegationWindow
	}

	tokens := strings.Fields(normalizeText(text))
	if len(tokens) == 0 {
		return false
	}

	for _, term := range terms {
		termTokens := strings.Fields(normalizeText(term))
		if len(termTokens) == 0 {
			continue
		}
		for i := 0; i+len(termTokens) <= len(tokens); i++ {
			if !matchAt(tokens, termTokens, i) {
				continue
			}
			lo := i - window
			if lo < 0 {
				lo = 0
			}
			hi := i + len(termTokens) + window
			if hi > len(tokens) {
				hi = len(tokens)
			}
			if containsNegationMarker(tokens[lo:hi]) {
				return true
			}
		}
	}
	return false
}

// IsNegatedForCode reports whether the text negates the capability named by
// code, scanning the code's mention terms.
func (r *Registry) IsNegatedForCode(text, code string, window int) bool {
	terms := r.MentionTerms(code)
	if len(terms) == 0 {
		return false
	}
	return DetectNegatedMention(text, terms, window)
}

func matchAt(tokens, term []string, i int) bool {
	for j, t := range term {
		if tokens[i+j] != t {
			return false
		}
	}
	return true
}

func containsNegationMarker(window []string) bool {
	for _, marker := range negationMarkers {
		for i := 0; i+len(marker) <= len(window); i++ {
			if matchAt(window, marker, i) {
				return true
			}
		}
	}
	return false
}
