package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GatewayClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGatewayClient(GatewayConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		EmbeddingModel: "test-embed",
		ChatModel:      "test-chat",
	})
	if err != nil {
		t.Fatalf("NewGatewayClient: %v", err)
	}
	return client, server
}

func TestEmbedDecodesVector(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	})

	vec, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("vector length = %d, want 3", len(vec))
	}
	if gotPath != "/embeddings" {
		t.Errorf("request path = %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotReq["model"] != "test-embed" || gotReq["input"] != "hello" {
		t.Errorf("request body = %v", gotReq)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Embed(context.Background(), "   ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Errorf("gateway called for empty input")
	}
}

func TestEmbedErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"quota exhausted", http.StatusPaymentRequired, ErrQuotaExhausted},
		{"server error", http.StatusInternalServerError, ErrProviderUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.Embed(context.Background(), "hello")
			if !errors.Is(err, tt.want) {
				t.Fatalf("status %d: expected %v, got %v", tt.status, tt.want, err)
			}
		})
	}
}

func TestEmbedEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})
	_, err := client.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable for empty data, got %v", err)
	}
}

func TestEmbedUnreachableGateway(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSynthesizeBuildsGroundedPrompt(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("request path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "The sky is blue."}},
			},
		})
	})

	answer, err := client.Synthesize(context.Background(), "system text", "The sky is blue. Grass is green.", "What color is the sky?")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if answer != "The sky is blue." {
		t.Errorf("answer = %q", answer)
	}

	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "system text" {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
	user := gotReq.Messages[1]
	if user.Role != "user" {
		t.Errorf("second message role = %s", user.Role)
	}
	if !strings.Contains(user.Content, "Context:\nThe sky is blue. Grass is green.") {
		t.Errorf("user prompt missing context block: %q", user.Content)
	}
	if !strings.Contains(user.Content, "Question: What color is the sky?") {
		t.Errorf("user prompt missing question: %q", user.Content)
	}
}

func TestSynthesizeEmptyQuestion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("gateway called for empty question")
	})
	_, err := client.Synthesize(context.Background(), "system", "context", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSynthesizeErrorMapping(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := client.Synthesize(context.Background(), "system", "context", "question")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNewGatewayClientRequiresAPIKey(t *testing.T) {
	if _, err := NewGatewayClient(GatewayConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
