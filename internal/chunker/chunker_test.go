package chunker

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := New(1000, 200)
	chunks, metas := s.SplitDocument("Hello world.", "doc1.png")

	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Hello world." {
		t.Errorf("chunk content: got %q", chunks[0])
	}
	if len(metas) != 1 || metas[0].ChunkIndex != 0 || metas[0].Source != "doc1.png" {
		t.Errorf("unexpected metadata: %+v", metas)
	}
}

func TestSplitEmptyAndWhitespace(t *testing.T) {
	s := New(1000, 200)

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		chunks, metas := s.SplitDocument(input, "doc1.png")
		if len(chunks) != 0 || len(metas) != 0 {
			t.Errorf("input %q: expected no chunks, got %d", input, len(chunks))
		}
	}
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	s := New(30, 0)
	text := "first paragraph here\n\nsecond paragraph here"

	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "first paragraph here" || chunks[1] != "second paragraph here" {
		t.Errorf("paragraphs not split cleanly: %q", chunks)
	}
}

func TestSplitFallsBackToWords(t *testing.T) {
	s := New(20, 0)
	// No paragraph or line breaks: must fall back to the space separator.
	text := "alpha beta gamma delta epsilon zeta"

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if n := len([]rune(c)); n > 20 {
			t.Errorf("chunk %q exceeds size bound (%d runes)", c, n)
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("empty chunk produced")
		}
	}
	// Every word must survive somewhere.
	joined := strings.Join(chunks, " ")
	for _, w := range strings.Fields(text) {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q lost in splitting", w)
		}
	}
}

func TestSplitUnbrokenTextFallsBackToCharacters(t *testing.T) {
	s := New(10, 0)
	text := strings.Repeat("x", 35)

	chunks := s.Split(text)
	if len(chunks) < 4 {
		t.Fatalf("expected at least 4 chunks for 35 chars at size 10, got %d", len(chunks))
	}
	var rejoined strings.Builder
	for _, c := range chunks {
		if n := len([]rune(c)); n > 10 {
			t.Errorf("chunk of %d runes exceeds size 10", n)
		}
		rejoined.WriteString(c)
	}
	if rejoined.String() != text {
		t.Error("character-level splitting lost content")
	}
}

func TestSplitOverlapCarriesTail(t *testing.T) {
	s := New(15, 8)
	text := "one two three four five six"

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d: %q", len(chunks), chunks)
	}
	// With overlap, some word from the end of chunk i reappears at the
	// start of chunk i+1.
	overlapSeen := false
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		if len(prevWords) == 0 {
			continue
		}
		last := prevWords[len(prevWords)-1]
		if strings.HasPrefix(chunks[i], last) {
			overlapSeen = true
		}
	}
	if !overlapSeen {
		t.Errorf("no overlap observed between consecutive chunks: %q", chunks)
	}
}

func TestSplitDocumentIndexesContiguous(t *testing.T) {
	s := New(50, 10)
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("sentence number with several words here\n\n")
	}

	chunks, metas := s.SplitDocument(sb.String(), "big.pdf")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) != len(metas) {
		t.Fatalf("chunks and metadatas diverge: %d vs %d", len(chunks), len(metas))
	}
	for i, m := range metas {
		if m.ChunkIndex != i {
			t.Errorf("chunk_index at position %d is %d", i, m.ChunkIndex)
		}
		if m.Source != "big.pdf" {
			t.Errorf("source at position %d is %q", i, m.Source)
		}
	}
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	s := New(10, 0)
	// 12 three-byte runes; byte-counting would split far earlier.
	text := strings.Repeat("ắ", 12)

	chunks := s.Split(text)
	for _, c := range chunks {
		if n := len([]rune(c)); n > 10 {
			t.Errorf("chunk of %d runes exceeds size 10", n)
		}
	}
	var total int
	for _, c := range chunks {
		total += len([]rune(c))
	}
	if total != 12 {
		t.Errorf("expected 12 runes across chunks, got %d", total)
	}
}
