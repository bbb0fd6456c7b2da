package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	DocumentsIngested metric.Int64Counter
	ChunksStored      metric.Int64Counter
	IngestDuration    metric.Float64Histogram
	QueriesAnswered   metric.Int64Counter
	QueryDuration     metric.Float64Histogram
	NoEvidenceQueries metric.Int64Counter
	ProviderErrors    metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("rag-docqa-platform")

	documentsIngested, err := meter.Int64Counter(
		"ingest.documents.total",
		metric.WithDescription("Documents ingested"),
	)
	if err != nil {
		return nil, err
	}

	chunksStored, err := meter.Int64Counter(
		"ingest.chunks.total",
		metric.WithDescription("Chunks embedded and stored"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest.duration",
		metric.WithDescription("Document ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queriesAnswered, err := meter.Int64Counter(
		"query.answered.total",
		metric.WithDescription("Questions answered"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"query.duration",
		metric.WithDescription("Query pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	noEvidenceQueries, err := meter.Int64Counter(
		"query.no_evidence.total",
		metric.WithDescription("Queries with no passage above the similarity threshold"),
	)
	if err != nil {
		return nil, err
	}

	providerErrors, err := meter.Int64Counter(
		"provider.errors.total",
		metric.WithDescription("AI provider call failures"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DocumentsIngested: documentsIngested,
		ChunksStored:      chunksStored,
		IngestDuration:    ingestDuration,
		QueriesAnswered:   queriesAnswered,
		QueryDuration:     queryDuration,
		NoEvidenceQueries: noEvidenceQueries,
		ProviderErrors:    providerErrors,
	}, nil
}

// RecordProviderError increments the provider failure counter with the
// failing operation attached.
func (m *Metrics) RecordProviderError(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
