package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrUnsupportedType is returned before any work is done when a
// document declares a media type outside the supported set.
var ErrUnsupportedType = errors.New("unsupported document type")

// Embedder turns text into a fixed-length vector. Implementations are
// stateless and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IngestionService runs the per-document pipeline:
// received -> chunking -> embedding -> stored | failed.
type IngestionService struct {
	chunker      *Chunker
	embedder     Embedder
	chunks       ChunkStore
	documents    DocumentStore
	allowedTypes map[string]bool
}

func NewIngestionService(chunker *Chunker, embedder Embedder, chunks ChunkStore, documents DocumentStore, allowedTypes []string) *IngestionService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.TrimSpace(t)] = true
	}
	return &IngestionService{
		chunker:      chunker,
		embedder:     embedder,
		chunks:       chunks,
		documents:    documents,
		allowedTypes: allowed,
	}
}

// Ingest chunks, embeds and stores one document's content. The document
// row must already exist (status received). Chunks are processed
// sequentially in ordinal order; the first failure aborts the rest and
// marks the document failed, leaving any already-stored chunks in place
// for the sweeper. A rerun of the same document clears those leftovers
// before embedding so retries never duplicate ordinals.
func (s *IngestionService) Ingest(ctx context.Context, doc models.Document, content string) (int, error) {
	tracer := otel.Tracer("ingestion")
	ctx, span := tracer.Start(ctx, "ingest.document")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.id", doc.ID),
		attribute.Int("document.bytes", len(content)),
	)

	if strings.TrimSpace(content) == "" {
		logger.Warn("Rejecting empty document", "document_id", doc.ID)
		return 0, fmt.Errorf("document %s has no content: %w", doc.ID, ai.ErrInvalidInput)
	}
	if !s.allowedTypes[doc.MediaType] {
		logger.Warn("Rejecting unsupported media type", "document_id", doc.ID, "media_type", doc.MediaType)
		return 0, fmt.Errorf("media type %q: %w", doc.MediaType, ErrUnsupportedType)
	}

	if err := s.documents.UpdateStatus(ctx, doc.ID, models.StatusChunking, ""); err != nil {
		return 0, err
	}

	// A previous failed attempt may have left a partial index behind.
	// Clear it so reruns and task retries never duplicate ordinals.
	if err := s.chunks.DeleteByDocument(ctx, doc.OwnerID, doc.ID); err != nil {
		logger.Error("Stale chunk cleanup failed", "document_id", doc.ID, "error", err)
		s.fail(doc.ID, err)
		return 0, fmt.Errorf("clear stale chunks of %s: %w", doc.ID, err)
	}

	texts := s.chunker.Split(content)
	span.SetAttributes(attribute.Int("document.chunks", len(texts)))
	logger.Info("Chunked document", "document_id", doc.ID, "chunks", len(texts))

	if err := s.documents.UpdateStatus(ctx, doc.ID, models.StatusEmbedding, ""); err != nil {
		return 0, err
	}

	for i, text := range texts {
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			logger.Error("Embedding failed", "document_id", doc.ID, "ordinal", i, "error", err)
			s.fail(doc.ID, err)
			return i, fmt.Errorf("embed chunk %d of %s: %w", i, doc.ID, err)
		}

		chunk := models.DocumentChunk{
			OwnerID:    doc.OwnerID,
			DocumentID: doc.ID,
			Ordinal:    i,
			Text:       text,
			Embedding:  vector,
		}
		if err := s.chunks.Put(ctx, chunk); err != nil {
			logger.Error("Chunk storage failed", "document_id", doc.ID, "ordinal", i, "error", err)
			s.fail(doc.ID, err)
			return i, fmt.Errorf("store chunk %d of %s: %w", i, doc.ID, err)
		}
	}

	if err := s.documents.MarkStored(ctx, doc.ID, len(texts)); err != nil {
		return len(texts), err
	}
	logger.Info("Document ingested", "document_id", doc.ID, "chunks", len(texts))
	return len(texts), nil
}

// Delete removes a document and cascades to its chunks.
func (s *IngestionService) Delete(ctx context.Context, ownerID, documentID string) error {
	if err := s.documents.Delete(ctx, ownerID, documentID); err != nil {
		return err
	}
	if err := s.chunks.DeleteByDocument(ctx, ownerID, documentID); err != nil {
		logger.Error("Cascade delete failed", "document_id", documentID, "error", err)
		return err
	}
	logger.Info("Document deleted", "document_id", documentID)
	return nil
}

// fail records the failure on the document with a background context so
// the status write survives caller cancellation.
func (s *IngestionService) fail(documentID string, cause error) {
	if err := s.documents.UpdateStatus(context.Background(), documentID, models.StatusFailed, cause.Error()); err != nil {
		logger.Error("Failed to mark document failed", "document_id", documentID, "error", err)
	}
}
