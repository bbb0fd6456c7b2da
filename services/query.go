package services

import (
	"context"
	"fmt"
	"strings"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// SystemInstruction constrains the model to the supplied context and
// makes it admit when the context is insufficient.
const SystemInstruction = "You are a helpful assistant that answers questions based on the provided context. Use only the information from the context to answer. If the context does not contain enough information, say so clearly."

// NoEvidenceAnswer is returned when no stored chunk clears the
// similarity threshold. This is a normal outcome, not an error.
const NoEvidenceAnswer = "I couldn't find any relevant information in your documents to answer this question."

// Synthesizer turns a grounded prompt into an answer via the chat model.
type Synthesizer interface {
	Synthesize(ctx context.Context, systemInstruction, contextBlock, question string) (string, error)
}

// QueryService runs the per-question pipeline:
// received -> embedding -> retrieving -> synthesizing -> answered | no_evidence | failed.
type QueryService struct {
	embedder    Embedder
	synthesizer Synthesizer
	chunks      ChunkStore
	threshold   float64
	topK        int
}

func NewQueryService(embedder Embedder, synthesizer Synthesizer, chunks ChunkStore, threshold float64, topK int) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	return &QueryService{
		embedder:    embedder,
		synthesizer: synthesizer,
		chunks:      chunks,
		threshold:   threshold,
		topK:        topK,
	}
}

// Answer resolves one question against the owner's indexed documents.
func (s *QueryService) Answer(ctx context.Context, ownerID, question string) (models.Answer, error) {
	tracer := otel.Tracer("query")
	ctx, span := tracer.Start(ctx, "query.answer")
	defer span.End()
	span.SetAttributes(attribute.Int("query.chars", len(question)))

	if strings.TrimSpace(question) == "" {
		return models.Answer{}, fmt.Errorf("empty question: %w", ai.ErrInvalidInput)
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		logger.Error("Query embedding failed", "owner_id", ownerID, "error", err)
		return models.Answer{}, fmt.Errorf("embed query: %w", err)
	}

	passages, err := s.chunks.QuerySimilar(ctx, ownerID, queryVec, s.threshold, s.topK)
	if err != nil {
		logger.Error("Similarity search failed", "owner_id", ownerID, "error", err)
		return models.Answer{}, fmt.Errorf("retrieve passages: %w", err)
	}
	span.SetAttributes(attribute.Int("query.passages", len(passages)))

	if len(passages) == 0 {
		logger.Info("No evidence above threshold", "owner_id", ownerID)
		return models.Answer{
			Text:       NoEvidenceAnswer,
			Sources:    []models.RetrievedPassage{},
			NoEvidence: true,
		}, nil
	}

	contextBlock := buildContext(passages)
	answerText, err := s.synthesizer.Synthesize(ctx, SystemInstruction, contextBlock, question)
	if err != nil {
		logger.Error("Answer synthesis failed", "owner_id", ownerID, "error", err)
		return models.Answer{}, fmt.Errorf("synthesize answer: %w", err)
	}

	return models.Answer{Text: answerText, Sources: passages}, nil
}

// buildContext joins passage texts in retrieval order, separated by a
// blank line.
func buildContext(passages []models.RetrievedPassage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}
