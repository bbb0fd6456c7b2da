package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"rag-docqa-platform/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var whitespaceRegex = regexp.MustCompile(`[ \t]+`)

// ExtractText reduces uploaded content to plain text according to its
// declared media type. PDF and HTML are flattened; anything else in the
// supported set passes through unchanged.
func ExtractText(data []byte, mediaType string) (string, error) {
	switch mediaType {
	case models.MediaTypeText:
		return string(data), nil
	case models.MediaTypePDF:
		return extractPDFText(data)
	case models.MediaTypeHTML:
		return extractHTMLText(data)
	default:
		return "", fmt.Errorf("media type %q: %w", mediaType, ErrUnsupportedType)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, textReader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return sb.String(), nil
}

func extractHTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	// Collapse runs of spaces left behind by removed markup
	text = whitespaceRegex.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}

// FetchPage downloads a single page for URL ingestion and returns the
// body with its media type (text/html unless the server says otherwise).
func FetchPage(ctx context.Context, pageURL string, maxBytes int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch %q: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read %q: %w", pageURL, err)
	}

	mediaType := models.MediaTypeHTML
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, models.MediaTypeText) {
		mediaType = models.MediaTypeText
	}
	return body, mediaType, nil
}
