package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/eventfeed/internal/feed"
	"github.com/JakeFAU/eventfeed/internal/fetcher"
	"github.com/JakeFAU/eventfeed/internal/metrics"
)

// Limiter throttles requests per host.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Config controls the fan-out.
type Config struct {
	// MaxConcurrency caps simultaneous lookups. Zero means one goroutine per
	// listing with no cap.
	MaxConcurrency int
}

// Enricher looks up listing metadata.
type Enricher struct {
	fetcher fetcher.Fetcher
	limiter Limiter
	cfg     Config
	logger  *zap.Logger
}

// New constructs an Enricher. limiter may be nil.
func New(f fetcher.Fetcher, limiter Limiter, cfg Config, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		fetcher: f,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Lookup fetches rawURL and extracts its metadata. It never returns an
// error; failures become OutcomeNoMetadata.
func (e *Enricher) Lookup(ctx context.Context, rawURL string) Result {
	res := e.lookup(ctx, rawURL)
	metrics.ObserveEnrichment(rawURL, string(res.Outcome))
	if res.Cause != nil {
		e.logger.Debug("metadata unavailable", zap.String("url", rawURL), zap.Error(res.Cause))
	}
	return res
}

func (e *Enricher) lookup(ctx context.Context, rawURL string) Result {
	if e.fetcher == nil {
		return withoutMetadata(errors.New("no fetcher configured"))
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, rawURL); err != nil {
			return withoutMetadata(err)
		}
	}

	start := time.Now()
	defer func() {
		metrics.ObserveFetchDuration(rawURL, time.Since(start))
	}()

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return withoutMetadata(fmt.Errorf("fetch: %w", err))
	}
	if err := CheckContentType(page.ContentType()); err != nil {
		return withoutMetadata(err)
	}
	md, err := Extract(page.Body)
	if err != nil {
		return withoutMetadata(err)
	}
	return withMetadata(md)
}

// Enrich returns a copy of listings with page metadata applied. Lookups run
// concurrently and each writes only its own slot, so output order matches
// input order.
func (e *Enricher) Enrich(ctx context.Context, listings []feed.Listing) []feed.Listing {
	results := make([]Result, len(listings))

	var g errgroup.Group
	if e.cfg.MaxConcurrency > 0 {
		g.SetLimit(e.cfg.MaxConcurrency)
	}
	for i := range listings {
		g.Go(func() error {
			results[i] = e.Lookup(ctx, listings[i].URL)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]feed.Listing, len(listings))
	failed := 0
	for i, listing := range listings {
		out[i] = Apply(listing, results[i])
		if results[i].Outcome != OutcomeOK {
			failed++
		}
	}
	e.logger.Info("listings enriched",
		zap.Int("listings", len(listings)),
		zap.Int("without_metadata", failed),
	)
	return out
}

// Apply copies the metadata of res onto listing. A no-metadata result clears
// every enrichment field.
func Apply(listing feed.Listing, res Result) feed.Listing {
	if res.Outcome != OutcomeOK {
		listing.Image = ""
		listing.Twitter = ""
		listing.Description = ""
		listing.Keywords = nil
		return listing
	}
	listing.Image = res.Metadata.Image
	listing.Twitter = res.Metadata.Twitter
	listing.Description = res.Metadata.Description
	listing.Keywords = res.Metadata.Keywords
	return listing
}
