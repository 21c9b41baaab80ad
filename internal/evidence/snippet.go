package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"golang.org/x/net/html"
)

// ErrIncompleteProvenance is returned when pre-extracted evidence arrives
// without real document/chunk ids. Such evidence is rejected, never silently
// backfilled: the only sanctioned backfill path is NewGeneratedSnippet, for
// evidence minted inside this process.
var ErrIncompleteProvenance = errors.New("evidence snippet missing document or chunk id")

// maxQuoteLen caps stored snippet text, matching the citation quote cap.
const maxQuoteLen = 200

// NormalizeSnippet converts raw extraction evidence into a validated
// EvidenceSnippet. Structured input must carry complete provenance; legacy
// bare-string input is upgraded with synthetic ids since no real provenance
// ever existed for it.
func NormalizeSnippet(raw model.RawSnippet) (model.EvidenceSnippet, error) {
	text := CleanText(raw.Text)
	if text == "" {
		return model.EvidenceSnippet{}, errors.New("evidence snippet has no text")
	}

	if raw.Legacy {
		return NewGeneratedSnippet(text), nil
	}

	snippet := model.EvidenceSnippet{
		Text:       text,
		DocumentID: strings.TrimSpace(raw.DocumentID),
		ChunkID:    strings.TrimSpace(raw.ChunkID),
	}
	if !snippet.ProvenanceComplete() {
		return model.EvidenceSnippet{}, fmt.Errorf("%w: doc=%q chunk=%q",
			ErrIncompleteProvenance, raw.DocumentID, raw.ChunkID)
	}
	return snippet, nil
}

// NormalizeAll normalizes a slice of raw snippets, failing on the first
// provenance violation.
func NormalizeAll(raw []model.RawSnippet) ([]model.EvidenceSnippet, error) {
	out := make([]model.EvidenceSnippet, 0, len(raw))
	for i, r := range raw {
		snippet, err := NormalizeSnippet(r)
		if err != nil {
			return nil, fmt.Errorf("evidence[%d]: %w", i, err)
		}
		out = append(out, snippet)
	}
	return out, nil
}

// NewGeneratedSnippet creates a snippet for evidence generated inside this
// process, backfilling synthetic provenance ids. Ids are derived from the
// cleaned text so the same input always carries the same provenance,
// whatever the batch ordering or worker interleaving.
func NewGeneratedSnippet(text string) model.EvidenceSnippet {
	clean := truncate(CleanText(text), maxQuoteLen)
	sum := sha256.Sum256([]byte(clean))
	id := hex.EncodeToString(sum[:6])
	return model.EvidenceSnippet{
		Text:       clean,
		DocumentID: "gen:doc:" + id,
		ChunkID:    "gen:chunk:" + id,
	}
}

// CleanText strips markup from snippet text. Extraction output for table
// cells often carries fragments of the source HTML; only the visible text is
// kept. Text without markup passes through with whitespace collapsed.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsRune(s, '<') {
		return collapseWhitespace(truncate(s, maxQuoteLen))
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(truncate(s, maxQuoteLen))
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(truncate(buf.String(), maxQuoteLen))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n bytes, backing up to a rune boundary so a
// multi-byte rune is never split.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
