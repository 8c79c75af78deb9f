package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// userAgent identifies knowledge-base fetches to origin servers.
const userAgent = "Mozilla/5.0 (compatible; BankingKB/1.0)"

// maxFetchBytes caps how much of a response body is read.
const maxFetchBytes = 10 << 20 // 10 MiB

// Fetcher downloads a URL and extracts its indexable text. HTML bodies
// are reduced to visible text; plain text and JSON pass through; other
// content types are rejected.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a 30-second-timeout
// default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch retrieves the URL and returns its extracted text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch url: %s", resp.Status)
	}

	body := io.LimitReader(resp.Body, maxFetchBytes)
	contentType := resp.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "text/html"):
		return extractHTMLText(body)
	case strings.Contains(contentType, "text/plain"), strings.Contains(contentType, "application/json"):
		raw, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// extractHTMLText returns the visible text of an HTML document with
// script and style contents removed and whitespace collapsed.
func extractHTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Text()
	return strings.Join(strings.Fields(text), " "), nil
}
