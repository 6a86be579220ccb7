// Package fetcher defines the page retrieval contract used by enrichment.
package fetcher

import (
	"context"
	"net/http"
	"time"
)

// Page is a fetched listing page.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// ContentType returns the response media type header, if any.
func (p Page) ContentType() string {
	if p.Headers == nil {
		return ""
	}
	return p.Headers.Get("Content-Type")
}

// Fetcher retrieves a single URL with one GET and no retries.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}
