// Package chunker splits extracted document text into overlapping segments
// sized for embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/hdtinh57/smartdocqa/internal/vectordb"
)

// DefaultSeparators is the descending-priority separator list: paragraph
// break, line break, word boundary, then raw characters as a last resort.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter recursively splits text on a prioritized separator list,
// producing chunks of at most ChunkSize units (runes) with ChunkOverlap
// units carried between consecutive chunks.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// New returns a Splitter with the default separator list.
func New(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}
}

// Split breaks text into chunks. Empty or whitespace-only input yields no
// chunks. The splitter prefers the highest-priority separator that keeps
// pieces within ChunkSize and recurses to finer separators for oversized
// pieces.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitText(text, s.Separators)
}

// SplitDocument splits text and pairs each chunk with metadata carrying the
// source name and its zero-based position in document order.
func (s *Splitter) SplitDocument(text, source string) ([]string, []vectordb.ChunkMetadata) {
	chunks := s.Split(text)
	if len(chunks) == 0 {
		return nil, nil
	}
	metas := make([]vectordb.ChunkMetadata, len(chunks))
	for i := range chunks {
		metas[i] = vectordb.ChunkMetadata{Source: source, ChunkIndex: i}
	}
	return chunks, metas
}

func (s *Splitter) splitText(text string, separators []string) []string {
	// Pick the first separator present in the text; "" always matches and
	// splits into individual characters.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			remaining = nil
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var fitting []string
	for _, piece := range splits {
		if runeLen(piece) < s.ChunkSize {
			fitting = append(fitting, piece)
			continue
		}
		// Oversized piece: flush what fits, then recurse with the finer
		// separators (or keep it whole when none remain).
		if len(fitting) > 0 {
			final = append(final, s.mergeSplits(fitting, separator)...)
			fitting = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, remaining)...)
		}
	}
	if len(fitting) > 0 {
		final = append(final, s.mergeSplits(fitting, separator)...)
	}
	return final
}

// mergeSplits recombines small pieces into chunks up to ChunkSize, retaining
// a ChunkOverlap-sized tail from each chunk at the start of the next.
func (s *Splitter) mergeSplits(splits []string, separator string) []string {
	sepLen := runeLen(separator)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range splits {
		pieceLen := runeLen(piece)
		if total+pieceLen+joinLen(sepLen, len(window)) > s.ChunkSize && len(window) > 0 {
			if chunk := joinChunk(window, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Slide the window down to the overlap budget, and further if
			// the incoming piece still would not fit.
			for total > s.ChunkOverlap || (total+pieceLen+joinLen(sepLen, len(window)) > s.ChunkSize && total > 0) {
				total -= runeLen(window[0]) + joinLen(sepLen, len(window)-1)
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen
		if len(window) > 1 {
			total += sepLen
		}
	}
	if chunk := joinChunk(window, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitOn splits text by separator, or into single runes when separator is
// empty.
func splitOn(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	parts := strings.Split(text, separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinChunk(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

// joinLen is the separator cost of appending one more piece to a window of
// the given size.
func joinLen(sepLen, windowLen int) int {
	if windowLen > 0 {
		return sepLen
	}
	return 0
}

func runeLen(s string) int {
	return len([]rune(s))
}
