package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient is the Google Generative AI provider. It implements the
// same embed/synthesize contract as GatewayClient.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
	chatModel      string
	temperature    float32
}

type GeminiConfig struct {
	APIKey         string
	EmbeddingModel string // e.g. "text-embedding-004"
	ChatModel      string // e.g. "gemini-2.0-flash"
	Temperature    float32
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client:         client,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		temperature:    cfg.Temperature,
	}, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed: empty text: %w", ErrInvalidInput)
	}

	model := g.client.EmbeddingModel(g.embeddingModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, mapGoogleError(err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned: %w", ErrProviderUnavailable)
	}
	return resp.Embedding.Values, nil
}

func (g *GeminiClient) Synthesize(ctx context.Context, systemInstruction, contextBlock, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("synthesize: empty question: %w", ErrInvalidInput)
	}

	model := g.client.GenerativeModel(g.chatModel)
	model.SetTemperature(g.temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	prompt := fmt.Sprintf(
		"Context:\n%s\n\nQuestion: %s\n\nPlease provide a clear, concise answer based on the context above.",
		contextBlock, question)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapGoogleError(err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no completion returned: %w", ErrProviderUnavailable)
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// mapGoogleError translates genai SDK errors into the taxonomy.
func mapGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%v: %w", err, ErrRateLimited)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%v: %w", err, ErrQuotaExhausted)
		}
	}
	return fmt.Errorf("%v: %w", err, ErrProviderUnavailable)
}
