package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitChunkBoundaries(t *testing.T) {
	chunker := NewChunker(500)
	text := strings.Repeat("a", 500) + strings.Repeat("b", 500) + strings.Repeat("c", 200)

	chunks := chunker.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 500 || len(chunks[1]) != 500 || len(chunks[2]) != 200 {
		t.Fatalf("unexpected chunk lengths: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[0] != strings.Repeat("a", 500) {
		t.Errorf("chunk 0 does not start at offset 0")
	}
	if chunks[2] != strings.Repeat("c", 200) {
		t.Errorf("final chunk does not hold the tail of the input")
	}
}

func TestSplitRoundTrip(t *testing.T) {
	chunker := NewChunker(7)
	text := "The quick brown fox jumps over the lazy dog"

	chunks := chunker.Split(text)
	if got := strings.Join(chunks, ""); got != text {
		t.Fatalf("concatenated chunks differ from input:\n got %q\nwant %q", got, text)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	chunker := NewChunker(500)
	if chunks := chunker.Split(""); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestSplitShortInput(t *testing.T) {
	chunker := NewChunker(500)
	chunks := chunker.Split("short document")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "short document" {
		t.Errorf("chunk text mismatch: %q", chunks[0])
	}
}

func TestSplitExactMultiple(t *testing.T) {
	chunker := NewChunker(10)
	chunks := chunker.Split(strings.Repeat("x", 30))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for input of exactly 3x chunk size, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) != 10 {
			t.Errorf("chunk %d has length %d, want 10", i, len(ch))
		}
	}
}

func TestSplitKeepsRunesIntact(t *testing.T) {
	chunker := NewChunker(5)
	text := strings.Repeat("é", 10) // 2 bytes per rune, boundary at 5 falls mid-rune

	chunks := chunker.Split(text)
	for i, ch := range chunks {
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, ch)
		}
		if len(ch) > 5 {
			t.Errorf("chunk %d exceeds the size limit: %d bytes", i, len(ch))
		}
	}
	if got := strings.Join(chunks, ""); got != text {
		t.Fatalf("concatenated chunks differ from input:\n got %q\nwant %q", got, text)
	}
}

func TestSplitMultiByteRoundTrip(t *testing.T) {
	chunker := NewChunker(7)
	text := "日本語のテキストを分割する"

	chunks := chunker.Split(text)
	if got := strings.Join(chunks, ""); got != text {
		t.Fatalf("concatenated chunks differ from input:\n got %q\nwant %q", got, text)
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, ch)
		}
	}
}

func TestNewChunkerDefaultsSize(t *testing.T) {
	chunker := NewChunker(0)
	chunks := chunker.Split(strings.Repeat("y", 501))
	if len(chunks) != 2 {
		t.Fatalf("expected default size 500 to produce 2 chunks, got %d", len(chunks))
	}
}
