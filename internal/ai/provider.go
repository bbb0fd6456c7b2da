package ai

import (
	"context"
	"fmt"
	"time"

	"rag-docqa-platform/internal/config"
)

// Provider is the request/response contract both hosted AI backends
// satisfy: text in, vector or answer out, taxonomy errors on failure.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Synthesize(ctx context.Context, systemInstruction, contextBlock, question string) (string, error)
}

// NewProvider builds the configured AI provider. Default is the
// OpenAI-compatible gateway; "google" selects Gemini.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.AIProvider {
	case "gateway", "":
		return NewGatewayClient(GatewayConfig{
			BaseURL:        cfg.AIGatewayURL,
			APIKey:         cfg.AIGatewayAPIKey,
			EmbeddingModel: cfg.EmbeddingModel,
			ChatModel:      cfg.ChatModel,
			Temperature:    float32(cfg.Temperature),
			Timeout:        time.Duration(cfg.ProviderTimeout) * time.Second,
			RequestsPerMin: cfg.RateLimitReqs,
		})
	case "google":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			EmbeddingModel: cfg.GeminiEmbeddingModel,
			ChatModel:      cfg.GeminiChatModel,
			Temperature:    float32(cfg.Temperature),
		})
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
	}
}
