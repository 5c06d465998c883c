// Package chunker provides text cleaning and sentence-boundary-aware
// overlap chunking.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 50

// maxBacktrack caps how far the boundary search walks back from the
// window end when looking for a sentence terminal.
const maxBacktrack = 100

// sentenceTerminals end a sentence; the chunker prefers to cut just
// after one of these instead of mid-sentence.
const sentenceTerminals = "。！？.!?\n"

// Cleaning passes applied before chunking. The allow-list keeps letters,
// digits, whitespace, CJK ideographs, and common CJK/Latin punctuation;
// everything else becomes a space to reduce embedding noise.
var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n\s*\n+`)
	disallowed      = regexp.MustCompile(`[^\p{L}\p{N}\s，。！？；：、“”‘’（）【】《》.!?,;:'"()\-]`)
)

// Chunker splits cleaned text into overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Clean normalises extracted text: collapses runs of horizontal
// whitespace, caps consecutive blank lines, strips characters outside the
// allow-list, and drops empty lines while preserving paragraph breaks.
func (c *Chunker) Clean(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = disallowed.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// Chunk splits cleaned text into overlapping chunks. Offsets are in
// runes so CJK text is measured the same as Latin text. Chunk order
// equals left-to-right position in the source; empty chunks after
// trimming are discarded.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	chunks := make([]string, 0, len(runes)/(c.chunkSize-c.overlap)+1)
	start := 0

	for start < len(runes) {
		end := start + c.chunkSize
		last := end >= len(runes)
		if last {
			end = len(runes)
		} else {
			end = c.sentenceBoundary(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if last {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Window would not advance (overlap >= chunk size).
			break
		}
		start = next
	}

	return chunks
}

// sentenceBoundary searches backward from the window end, limited to half
// the window and at most maxBacktrack characters, for the nearest
// sentence terminal and returns the cut position just after it. If none
// is found the original end stands.
func (c *Chunker) sentenceBoundary(runes []rune, start, end int) int {
	limit := start + c.chunkSize/2
	if floor := end - maxBacktrack; floor > limit {
		limit = floor
	}
	for i := end; i > limit; i-- {
		if strings.ContainsRune(sentenceTerminals, runes[i]) {
			return i + 1
		}
	}
	return end
}
