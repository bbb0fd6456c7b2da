package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rag-docqa-platform/models"
)

func TestExtractTextPlain(t *testing.T) {
	got, err := ExtractText([]byte("plain content"), models.MediaTypeText)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "plain content" {
		t.Errorf("text passthrough altered content: %q", got)
	}
}

func TestExtractTextHTML(t *testing.T) {
	html := `<html><head><title>ignored</title><style>p { color: red }</style></head>
<body>
  <script>var tracked = true;</script>
  <h1>Heading</h1>
  <p>First   paragraph.</p>
  <p>Second paragraph.</p>
</body></html>`

	got, err := ExtractText([]byte(html), models.MediaTypeHTML)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(got, "Heading") || !strings.Contains(got, "First paragraph.") {
		t.Errorf("extracted text missing body content: %q", got)
	}
	if strings.Contains(got, "tracked") || strings.Contains(got, "color: red") {
		t.Errorf("script or style content leaked into text: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("whitespace runs not collapsed: %q", got)
	}
}

func TestExtractTextUnsupportedType(t *testing.T) {
	if _, err := ExtractText([]byte("data"), "image/png"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>page content</p></body></html>"))
	}))
	defer server.Close()

	body, mediaType, err := FetchPage(context.Background(), server.URL, 1<<20)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if mediaType != models.MediaTypeHTML {
		t.Errorf("media type = %s, want %s", mediaType, models.MediaTypeHTML)
	}
	if !strings.Contains(string(body), "page content") {
		t.Errorf("body = %q", body)
	}
}

func TestFetchPageCapsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer server.Close()

	body, _, err := FetchPage(context.Background(), server.URL, 100)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("body length = %d, want 100", len(body))
	}
}

func TestFetchPageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, _, err := FetchPage(context.Background(), server.URL, 1<<20); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
