// Package app wires the feed build pipeline: read the markdown source, parse
// the event table, enrich listings with page metadata and print the feed.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/JakeFAU/eventfeed/internal/config"
	"github.com/JakeFAU/eventfeed/internal/enrich"
	"github.com/JakeFAU/eventfeed/internal/feed"
	collyfetcher "github.com/JakeFAU/eventfeed/internal/fetcher/colly"
	"github.com/JakeFAU/eventfeed/internal/metrics"
	"github.com/JakeFAU/eventfeed/internal/output"
	"github.com/JakeFAU/eventfeed/internal/policy/ratelimit"
)

// Enricher attaches page metadata to listings.
type Enricher interface {
	Enrich(ctx context.Context, listings []feed.Listing) []feed.Listing
}

// App holds the services used by one feed build.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	enricher Enricher
	readFile func(name string) ([]byte, error)
}

// Option customizes an App.
type Option func(*App)

// WithEnricher replaces the network-backed enricher.
func WithEnricher(e Enricher) Option {
	return func(a *App) {
		a.enricher = e
	}
}

// WithReadFile replaces os.ReadFile for loading the input document.
func WithReadFile(fn func(name string) ([]byte, error)) Option {
	return func(a *App) {
		a.readFile = fn
	}
}

// New builds an App from configuration. Enrichment uses the Colly fetcher
// and, when configured, a per-host rate limiter.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	a := &App{
		cfg:      cfg,
		logger:   logger,
		readFile: os.ReadFile,
	}
	if cfg.Enrich.Enabled {
		a.enricher = newEnricher(cfg, logger)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func newEnricher(cfg config.Config, logger *zap.Logger) *enrich.Enricher {
	fetch := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.HTTP.UserAgent,
		RespectRobots: cfg.Enrich.RespectRobots,
		Timeout:       cfg.RequestTimeout(),
	})
	var limiter enrich.Limiter
	if cfg.Enrich.RateLimitPerHost > 0 {
		limiter = ratelimit.New(ratelimit.Config{DefaultRPS: cfg.Enrich.RateLimitPerHost})
	}
	return enrich.New(
		fetch,
		limiter,
		enrich.Config{MaxConcurrency: cfg.Enrich.MaxConcurrency},
		logger.Named("enrich"),
	)
}

// Run executes one build and writes the JSON feed to out. Nothing is written
// when an error is returned, including when ctx is cancelled before the feed
// is complete.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	path := a.cfg.Input.Path
	raw, err := a.readFile(path)
	if err != nil {
		return fmt.Errorf("read input %q: %w", path, err)
	}

	listings, stats, err := feed.Parse(string(raw), a.logger.Named("feed"))
	if err != nil {
		return fmt.Errorf("parse %q: %w", path, err)
	}
	a.logger.Info("table parsed",
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("listings", stats.Listings),
	)

	if a.enricher != nil {
		listings = a.enricher.Enrich(ctx, listings)
	} else {
		a.logger.Info("enrichment disabled")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enrich listings: %w", err)
	}

	if err := output.Write(out, listings); err != nil {
		return err
	}

	if a.cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("metrics textfile not written", zap.Error(err))
		}
	}
	return nil
}
