package evidence

import (
	"strings"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

// maxCitationsPerLookup bounds reverse-lookup results per capability code.
const maxCitationsPerLookup = 30

// IndexedChunk is one chunk with its reverse-linked citations
type IndexedChunk struct {
	SourceDocID string        `json:"source_doc_id"`
	TextSnippet string        `json:"text_snippet"`
	Locator     model.Locator `json:"locator"`
	CitationIDs []string      `json:"citation_ids"`
}

// Index maps chunk ids to their source metadata and citation ids, enabling
// reverse lookup from a capability code to the citations that mention it.
type Index struct {
	chunks map[string]*IndexedChunk
	order  []string // insertion order, for deterministic iteration
}

// BuildIndex builds the chunk-id -> citation-id index. Citations without a
// chunk locator are skipped; chunks are indexed even when uncited so their
// snippets remain searchable.
func BuildIndex(chunks []model.Chunk, citations []model.Citation) *Index {
	idx := &Index{chunks: make(map[string]*IndexedChunk, len(chunks))}

	for _, chunk := range chunks {
		if chunk.ChunkID == "" {
			continue
		}
		if _, seen := idx.chunks[chunk.ChunkID]; seen {
			continue
		}
		idx.chunks[chunk.ChunkID] = &IndexedChunk{
			SourceDocID: chunk.SourceDocID,
			TextSnippet: truncate(chunk.Text, maxQuoteLen),
			Locator:     chunk.Locator,
		}
		idx.order = append(idx.order, chunk.ChunkID)
	}

	for _, cit := range citations {
		chunkID := cit.Locator.ChunkID
		if chunkID == "" {
			continue
		}
		entry, ok := idx.chunks[chunkID]
		if !ok {
			// Citation references a chunk we never saw; index what we
			// know from the citation itself.
			entry = &IndexedChunk{
				SourceDocID: cit.SourceDocID,
				TextSnippet: truncate(cit.Quote, maxQuoteLen),
				Locator:     cit.Locator,
			}
			idx.chunks[chunkID] = entry
			idx.order = append(idx.order, chunkID)
		}
		entry.CitationIDs = append(entry.CitationIDs, cit.CitationID)
	}

	return idx
}

// Chunk returns the indexed entry for a chunk id.
func (idx *Index) Chunk(chunkID string) (*IndexedChunk, bool) {
	c, ok := idx.chunks[chunkID]
	return c, ok
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// FindEvidenceForCode returns citation ids whose chunks mention the
// capability, by case-insensitive substring match of the code's display name
// and synonyms against each chunk snippet. The union preserves chunk
// insertion order with duplicates removed, capped at 30 ids.
func FindEvidenceForCode(reg *ontology.Registry, code string, idx *Index) []string {
	if idx == nil {
		return nil
	}
	cap, ok := reg.Lookup(code)
	if !ok {
		return nil
	}

	terms := make([]string, 0, len(cap.Synonyms)+1)
	terms = append(terms, strings.ToLower(cap.DisplayName))
	for _, syn := range cap.Synonyms {
		terms = append(terms, strings.ToLower(syn))
	}

	seen := make(map[string]bool)
	var ids []string
	for _, chunkID := range idx.order {
		entry := idx.chunks[chunkID]
		snippet := strings.ToLower(entry.TextSnippet)
		matched := false
		for _, term := range terms {
			if term != "" && strings.Contains(snippet, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, id := range entry.CitationIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) >= maxCitationsPerLookup {
				return ids
			}
		}
	}
	return ids
}
