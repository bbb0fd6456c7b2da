package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressDataRoundTrip(t *testing.T) {
	original := []byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50))

	for _, algorithm := range []CompressionAlgorithm{CompressionNone, CompressionGzip, CompressionZlib, CompressionBrotli} {
		t.Run(string(algorithm), func(t *testing.T) {
			compressed, err := CompressData(original, algorithm)
			if err != nil {
				t.Fatalf("CompressData: %v", err)
			}
			decompressed, err := DecompressData(compressed, algorithm)
			if err != nil {
				t.Fatalf("DecompressData: %v", err)
			}
			if !bytes.Equal(decompressed, original) {
				t.Errorf("round trip altered data")
			}
			if algorithm != CompressionNone && len(compressed) >= len(original) {
				t.Errorf("%s did not shrink repetitive input: %d >= %d", algorithm, len(compressed), len(original))
			}
		})
	}
}

func TestCompressTextDefaultsToBrotli(t *testing.T) {
	compressed, algorithm, err := CompressText("document content at rest")
	if err != nil {
		t.Fatalf("CompressText: %v", err)
	}
	if algorithm != CompressionBrotli {
		t.Errorf("default algorithm = %s, want %s", algorithm, CompressionBrotli)
	}

	text, err := DecompressText(compressed, algorithm)
	if err != nil {
		t.Fatalf("DecompressText: %v", err)
	}
	if text != "document content at rest" {
		t.Errorf("round trip altered text: %q", text)
	}
}

func TestDecompressDataUnknownAlgorithm(t *testing.T) {
	if _, err := DecompressData([]byte("x"), "lz4"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestCompressDataEmptyInput(t *testing.T) {
	out, err := CompressData(nil, CompressionBrotli)
	if err != nil {
		t.Fatalf("CompressData: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output for empty input")
	}
}
