package chunker

import (
	"strings"
	"testing"

	"github.com/mthotham/assistant/document"
)

func TestShortTextIsSingleChunk(t *testing.T) {
	s := NewRecursiveSplitter(800, 100)
	text := "Mt Hotham sits at 1750 metres and has 13 lifts."

	chunks := s.SplitText(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("short text was altered: %q", chunks[0])
	}
}

func TestLongTextIsBoundedWithOverlap(t *testing.T) {
	s := NewRecursiveSplitter(800, 100)
	text := strings.TrimSpace(strings.Repeat("pass ", 400))

	chunks := s.SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 800 {
			t.Errorf("chunk %d exceeds max length: %d", i, len(c))
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	for i := 1; i < len(chunks); i++ {
		if overlapLen(chunks[i-1], chunks[i]) == 0 {
			t.Errorf("chunks %d and %d share no overlap", i-1, i)
		}
	}
}

func TestParagraphBoundariesPreferred(t *testing.T) {
	s := NewRecursiveSplitter(800, 100)
	para := strings.TrimSpace(strings.Repeat("alpine snow report ", 30))
	text := para + "\n\n" + para + "\n\n" + para

	chunks := s.SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 800 {
			t.Errorf("chunk %d exceeds max length: %d", i, len(c))
		}
	}
	// Splitting on paragraphs keeps each paragraph intact.
	if !strings.HasPrefix(chunks[0], "alpine snow report") {
		t.Errorf("unexpected first chunk: %q", chunks[0][:40])
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewRecursiveSplitter(800, 100)
	text := strings.Repeat("The road to Hotham Central is open. ", 80)

	first := s.SplitText(text)
	second := s.SplitText(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunksInheritMetadata(t *testing.T) {
	s := NewRecursiveSplitter(800, 100)
	doc := document.Document{
		Text: strings.Repeat("Snowmaking runs overnight on the Summit trail. ", 60),
		Metadata: document.Metadata{
			Source:   "/data/conditions.txt",
			Type:     document.DocTypeText,
			RowIndex: -1,
		},
	}

	chunks := s.Split([]document.Document{doc})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Metadata != doc.Metadata {
			t.Errorf("chunk %d metadata = %+v, want %+v", i, c.Metadata, doc.Metadata)
		}
	}
}

func TestEmptyTextYieldsNoChunks(t *testing.T) {
	s := NewRecursiveSplitter(800, 100)
	if chunks := s.SplitText(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

// overlapLen returns the length of the longest suffix of prev that is a
// prefix of next.
func overlapLen(prev, next string) int {
	max := len(prev)
	if len(next) < max {
		max = len(next)
	}
	for k := max; k > 0; k-- {
		if prev[len(prev)-k:] == next[:k] {
			return k
		}
	}
	return 0
}
