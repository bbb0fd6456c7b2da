package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// GatewayClient talks to an OpenAI-compatible AI gateway for both
// embeddings and chat completions. It is stateless between calls and
// safe for concurrent use.
type GatewayClient struct {
	baseURL        string
	apiKey         string
	embeddingModel string
	chatModel      string
	temperature    float32
	httpClient     *http.Client
	breaker        *gobreaker.CircuitBreaker
	rateLimiter    *rate.Limiter
}

// GatewayConfig configures the gateway client. Zero values fall back to
// sensible defaults except APIKey, which is required.
type GatewayConfig struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Temperature    float32
	Timeout        time.Duration
	RequestsPerMin int
}

func NewGatewayClient(cfg GatewayConfig) (*GatewayClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI gateway API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-ada-002"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 60
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AIGateway",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	// RPM limit with some buffer
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)*0.9/60.0), cfg.RequestsPerMin/10+1)

	return &GatewayClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		temperature:    cfg.Temperature,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		breaker:        breaker,
		rateLimiter:    limiter,
	}, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text.
func (c *GatewayClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed: empty text: %w", ErrInvalidInput)
	}

	tracer := otel.Tracer("ai-gateway")
	ctx, span := tracer.Start(ctx, "gateway.embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", c.embeddingModel),
		attribute.Int("ai.input_chars", len(text)),
	)

	body, err := c.post(ctx, "/embeddings", embeddingRequest{
		Model: c.embeddingModel,
		Input: text,
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("ai.error", true))
		return nil, err
	}

	var out embeddingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %v: %w", err, ErrProviderUnavailable)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned: %w", ErrProviderUnavailable)
	}
	span.SetAttributes(attribute.Int("ai.vector_dim", len(out.Data[0].Embedding)))
	return out.Data[0].Embedding, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Synthesize asks the chat model for an answer grounded in the supplied
// context block.
func (c *GatewayClient) Synthesize(ctx context.Context, systemInstruction, contextBlock, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("synthesize: empty question: %w", ErrInvalidInput)
	}

	tracer := otel.Tracer("ai-gateway")
	ctx, span := tracer.Start(ctx, "gateway.synthesize")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", c.chatModel),
		attribute.Int("ai.context_chars", len(contextBlock)),
	)

	userContent := fmt.Sprintf(
		"Context:\n%s\n\nQuestion: %s\n\nPlease provide a clear, concise answer based on the context above.",
		contextBlock, question)

	body, err := c.post(ctx, "/chat/completions", chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: userContent},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("ai.error", true))
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %v: %w", err, ErrProviderUnavailable)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no completion returned: %w", ErrProviderUnavailable)
	}
	return out.Choices[0].Message.Content, nil
}

// post sends one JSON request through the rate limiter and circuit
// breaker and maps the response status to the error taxonomy.
func (c *GatewayClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %v: %w", err, ErrProviderUnavailable)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %v: %w", err, ErrInvalidInput)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("build request: %v: %w", err, ErrProviderUnavailable)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrProviderUnavailable)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %v: %w", err, ErrProviderUnavailable)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("gateway returned 429: %w", ErrRateLimited)
		case resp.StatusCode == http.StatusPaymentRequired:
			return nil, fmt.Errorf("gateway returned 402: %w", ErrQuotaExhausted)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, fmt.Errorf("gateway returned %d: %w", resp.StatusCode, ErrProviderUnavailable)
		}
		return body, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("circuit breaker open: %w", ErrProviderUnavailable)
		}
		return nil, err
	}
	return result.([]byte), nil
}
