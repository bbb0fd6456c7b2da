package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/services"
	"rag-docqa-platform/utils"

	"github.com/hibiken/asynq"
)

const TaskIngestDocument = "document:ingest"

type IngestPayload struct {
	OwnerID    string `json:"owner_id"`
	DocumentID string `json:"document_id"`
}

// NewIngestTask enqueues one document for background ingestion.
func NewIngestTask(ownerID, documentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestPayload{
		OwnerID:    ownerID,
		DocumentID: documentID,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor executes queued ingestions on the worker.
type TaskProcessor struct {
	documents services.DocumentStore
	ingester  *services.IngestionService
}

func NewTaskProcessor(documents services.DocumentStore, ingester *services.IngestionService) *TaskProcessor {
	return &TaskProcessor{
		documents: documents,
		ingester:  ingester,
	}
}

func (p *TaskProcessor) HandleIngestDocument(ctx context.Context, t *asynq.Task) error {
	var payload IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("Processing queued ingestion", "document_id", payload.DocumentID)

	doc, err := p.documents.Get(ctx, payload.OwnerID, payload.DocumentID)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			// Deleted before the worker got to it; nothing to retry.
			return fmt.Errorf("document %s gone: %w", payload.DocumentID, asynq.SkipRetry)
		}
		return err
	}

	content, err := utils.DecompressText(doc.Content, utils.CompressionAlgorithm(doc.Compression))
	if err != nil {
		return fmt.Errorf("decompress %s: %v: %w", doc.ID, err, asynq.SkipRetry)
	}

	count, err := p.ingester.Ingest(ctx, doc, content)
	if err != nil {
		// Input problems will not improve on retry; provider and storage
		// hiccups might.
		if errors.Is(err, ai.ErrInvalidInput) || errors.Is(err, services.ErrUnsupportedType) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info("Queued ingestion complete", "document_id", doc.ID, "chunks", count)
	return nil
}
