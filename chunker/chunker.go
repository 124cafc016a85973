package chunker

import (
	"strings"

	"github.com/mthotham/assistant/document"
)

// Chunk is the unit of embedding and retrieval: a bounded slice of one
// document's text carrying the parent document's metadata.
type Chunk struct {
	Text     string
	Metadata document.Metadata
}

// RecursiveSplitter splits text into chunks of at most chunkSize bytes with
// chunkOverlap bytes carried over between adjacent chunks. Boundaries fall
// on the coarsest separator present in the window: paragraph, then line,
// then sentence, then word, then single characters.
type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &RecursiveSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", ". ", " ", ""},
	}
}

// Split chunks every document in order. Deterministic: the same documents
// always yield the same chunk sequence.
func (s *RecursiveSplitter) Split(docs []document.Document) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		for _, piece := range s.SplitText(doc.Text) {
			chunks = append(chunks, Chunk{Text: piece, Metadata: doc.Metadata})
		}
	}
	return chunks
}

// SplitText splits a single text. Text already within the chunk size is
// returned whole.
func (s *RecursiveSplitter) SplitText(text string) []string {
	if len(text) <= s.chunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	return s.splitRecursive(text, s.separators)
}

func (s *RecursiveSplitter) splitRecursive(text string, separators []string) []string {
	// Pick the coarsest separator that actually occurs in this text.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
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
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitRecursive(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

// merge greedily packs splits into chunks up to the size limit, then carries
// a tail of splits worth up to chunkOverlap bytes into the next chunk.
func (s *RecursiveSplitter) merge(splits []string, separator string) []string {
	sepLen := len(separator)

	var out []string
	var current []string
	total := 0

	for _, piece := range splits {
		pieceLen := len(piece)
		if total+pieceLen+sepIf(sepLen, len(current) > 0) > s.chunkSize && len(current) > 0 {
			if doc := joinSplits(current, separator); doc != "" {
				out = append(out, doc)
			}
			// Drop leading splits until the carried tail fits within the
			// overlap budget and leaves room for the incoming piece.
			for total > s.chunkOverlap ||
				(total+pieceLen+sepIf(sepLen, len(current) > 0) > s.chunkSize && total > 0) {
				total -= len(current[0]) + sepIf(sepLen, len(current) > 1)
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += pieceLen + sepIf(sepLen, len(current) > 1)
	}

	if doc := joinSplits(current, separator); doc != "" {
		out = append(out, doc)
	}
	return out
}

// splitOn splits by separator; the empty separator splits into runes.
func splitOn(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
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

func joinSplits(splits []string, separator string) string {
	return strings.TrimSpace(strings.Join(splits, separator))
}

func sepIf(sepLen int, cond bool) int {
	if cond {
		return sepLen
	}
	return 0
}
