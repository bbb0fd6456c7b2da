package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"rag-docqa-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrStorage marks a persistence-layer failure during ingestion or
// retrieval. During ingestion it aborts the remaining batch.
var ErrStorage = errors.New("storage failure")

// ChunkStore persists embedded chunks and serves similarity queries.
// Every read and write is scoped to a single owner.
type ChunkStore interface {
	Put(ctx context.Context, chunk models.DocumentChunk) error
	QuerySimilar(ctx context.Context, ownerID string, queryVec []float32, threshold float64, k int) ([]models.RetrievedPassage, error)
	DeleteByDocument(ctx context.Context, ownerID, documentID string) error
}

// MongoChunkStore keeps chunks in the document_chunks collection and
// ranks them by cosine similarity with a linear scan over the owner's
// rows. Good enough for the corpus sizes this service targets; an ANN
// index is out of scope.
type MongoChunkStore struct {
	col *mongo.Collection
}

func NewMongoChunkStore(db *mongo.Database) *MongoChunkStore {
	return &MongoChunkStore{col: db.Collection("document_chunks")}
}

func (s *MongoChunkStore) Put(ctx context.Context, chunk models.DocumentChunk) error {
	_, err := s.col.InsertOne(ctx, chunk)
	if err != nil {
		return fmt.Errorf("insert chunk %s/%d: %v: %w", chunk.DocumentID, chunk.Ordinal, err, ErrStorage)
	}
	return nil
}

func (s *MongoChunkStore) QuerySimilar(ctx context.Context, ownerID string, queryVec []float32, threshold float64, k int) ([]models.RetrievedPassage, error) {
	cursor, err := s.col.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("find chunks for owner %s: %v: %w", ownerID, err, ErrStorage)
	}
	defer cursor.Close(ctx)

	var chunks []models.DocumentChunk
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, fmt.Errorf("decode chunks for owner %s: %v: %w", ownerID, err, ErrStorage)
	}

	return rankPassages(chunks, queryVec, threshold, k), nil
}

func (s *MongoChunkStore) DeleteByDocument(ctx context.Context, ownerID, documentID string) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"owner_id": ownerID, "document_id": documentID})
	if err != nil {
		return fmt.Errorf("delete chunks of %s: %v: %w", documentID, err, ErrStorage)
	}
	return nil
}

// rankPassages scores chunks against the query vector and returns at
// most k passages with similarity >= threshold, ordered by similarity
// descending. Ties break by ascending (document id, ordinal) so results
// are deterministic.
func rankPassages(chunks []models.DocumentChunk, queryVec []float32, threshold float64, k int) []models.RetrievedPassage {
	passages := make([]models.RetrievedPassage, 0, len(chunks))
	for _, ch := range chunks {
		sim := cosineSimilarity(ch.Embedding, queryVec)
		if sim < threshold {
			continue
		}
		passages = append(passages, models.RetrievedPassage{
			DocumentID: ch.DocumentID,
			Ordinal:    ch.Ordinal,
			Text:       ch.Text,
			Similarity: sim,
		})
	}

	sort.Slice(passages, func(i, j int) bool {
		if passages[i].Similarity != passages[j].Similarity {
			return passages[i].Similarity > passages[j].Similarity
		}
		if passages[i].DocumentID != passages[j].DocumentID {
			return passages[i].DocumentID < passages[j].DocumentID
		}
		return passages[i].Ordinal < passages[j].Ordinal
	})

	if k > 0 && len(passages) > k {
		passages = passages[:k]
	}
	return passages
}

// cosineSimilarity is the dot product of the L2-normalized vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
