package services

import (
	"math"
	"testing"

	"rag-docqa-platform/models"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"known angle", []float32{1, 0}, []float32{0.9, 0.4358899}, 0.9},
		{"mismatched dims", []float32{1, 0, 0}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"both empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func makeChunk(docID string, ordinal int, embedding []float32) models.DocumentChunk {
	return models.DocumentChunk{
		OwnerID:    "owner-1",
		DocumentID: docID,
		Ordinal:    ordinal,
		Text:       docID,
		Embedding:  embedding,
	}
}

func TestRankPassagesOrderAndThreshold(t *testing.T) {
	query := []float32{1, 0}
	chunks := []models.DocumentChunk{
		makeChunk("doc-a", 0, []float32{0.8, 0.6}),       // sim 0.8
		makeChunk("doc-b", 0, []float32{1, 0}),           // sim 1.0
		makeChunk("doc-c", 0, []float32{0.5, 0.8660254}), // sim 0.5, below threshold
		makeChunk("doc-d", 0, []float32{0.9, 0.4358899}), // sim 0.9
	}

	passages := rankPassages(chunks, query, 0.7, 5)
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages above threshold, got %d", len(passages))
	}
	for i := 1; i < len(passages); i++ {
		if passages[i].Similarity > passages[i-1].Similarity {
			t.Fatalf("passages not in non-increasing similarity order: %f before %f",
				passages[i-1].Similarity, passages[i].Similarity)
		}
	}
	if passages[0].DocumentID != "doc-b" || passages[1].DocumentID != "doc-d" || passages[2].DocumentID != "doc-a" {
		t.Errorf("unexpected ranking: %s, %s, %s",
			passages[0].DocumentID, passages[1].DocumentID, passages[2].DocumentID)
	}
	for _, p := range passages {
		if p.Similarity < 0.7 {
			t.Errorf("passage %s below threshold: %f", p.DocumentID, p.Similarity)
		}
	}
}

func TestRankPassagesTopKBound(t *testing.T) {
	query := []float32{1, 0}
	var chunks []models.DocumentChunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, makeChunk("doc-a", i, []float32{1, 0}))
	}

	passages := rankPassages(chunks, query, 0.7, 5)
	if len(passages) != 5 {
		t.Fatalf("expected top-k cap of 5, got %d", len(passages))
	}
}

func TestRankPassagesDeterministicTieBreak(t *testing.T) {
	query := []float32{1, 0}
	vec := []float32{1, 0}
	chunks := []models.DocumentChunk{
		makeChunk("doc-b", 1, vec),
		makeChunk("doc-a", 2, vec),
		makeChunk("doc-b", 0, vec),
		makeChunk("doc-a", 0, vec),
	}

	passages := rankPassages(chunks, query, 0.7, 10)
	if len(passages) != 4 {
		t.Fatalf("expected 4 passages, got %d", len(passages))
	}
	wantOrder := []struct {
		doc     string
		ordinal int
	}{
		{"doc-a", 0}, {"doc-a", 2}, {"doc-b", 0}, {"doc-b", 1},
	}
	for i, want := range wantOrder {
		if passages[i].DocumentID != want.doc || passages[i].Ordinal != want.ordinal {
			t.Errorf("position %d: got (%s, %d), want (%s, %d)",
				i, passages[i].DocumentID, passages[i].Ordinal, want.doc, want.ordinal)
		}
	}
}

func TestRankPassagesEmptyIndex(t *testing.T) {
	passages := rankPassages(nil, []float32{1, 0}, 0.7, 5)
	if len(passages) != 0 {
		t.Fatalf("expected no passages from empty index, got %d", len(passages))
	}
}

func TestRankPassagesThresholdIsInclusive(t *testing.T) {
	query := []float32{1, 0}
	chunks := []models.DocumentChunk{
		makeChunk("doc-a", 0, []float32{3, 4}), // sim 3/5 exactly
	}
	passages := rankPassages(chunks, query, 0.6, 5)
	if len(passages) != 1 {
		t.Fatalf("passage at exactly the threshold should be retained, got %d passages", len(passages))
	}
}
