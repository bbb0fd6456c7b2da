package services

import "unicode/utf8"

// Chunker splits raw document text into contiguous segments of at most
// maxChunkSize bytes. Boundaries snap back to the nearest rune start so
// no chunk ends mid-rune; concatenating the chunks in order reproduces
// the input exactly.
type Chunker struct {
	maxChunkSize int
}

// NewChunker creates a chunker with the given maximum chunk length in
// bytes. Non-positive sizes fall back to 500.
func NewChunker(maxChunkSize int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 500
	}
	return &Chunker{maxChunkSize: maxChunkSize}
}

// Split returns the ordered chunk texts for the document. Empty input
// yields zero chunks; input no longer than the chunk size yields one.
func (c *Chunker) Split(text string) []string {
	if len(text) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(text)+c.maxChunkSize-1)/c.maxChunkSize)
	for i := 0; i < len(text); {
		end := i + c.maxChunkSize
		if end >= len(text) {
			chunks = append(chunks, text[i:])
			break
		}
		for end > i && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == i {
			// Invalid UTF-8 run longer than a chunk; split positionally.
			end = i + c.maxChunkSize
		}
		chunks = append(chunks, text[i:end])
		i = end
	}
	return chunks
}
