// Package collyfetcher implements fetcher.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/eventfeed/internal/fetcher"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher implements fetcher.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher. Each Fetch clones the base collector, so one Fetcher
// is safe for concurrent use.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	c.WithTransport(newHTTPTransport())
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly. Transport errors and non-2xx
// responses are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (fetcher.Page, error) {
	var (
		result   fetcher.Page
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector()
	f.configureCollectorHooks(collector, rawURL, start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, rawURL, &fetchErr); err != nil {
		return fetcher.Page{}, err
	}
	return result, nil
}

// buildCollector clones the base so callbacks stay per request. The clone
// shares the base HTTP backend, which must not be reconfigured here.
func (f *Fetcher) buildCollector() *colly.Collector {
	return f.baseCollector.Clone()
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	rawURL string,
	start time.Time,
	result *fetcher.Page,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		page := fetcher.Page{
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
		if r.Request != nil && r.Request.URL != nil {
			page.FinalURL = r.Request.URL.String()
		}
		if r.Headers != nil {
			page.Headers = r.Headers.Clone()
		}
		*result = page
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		if r != nil && r.StatusCode != 0 {
			err = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
