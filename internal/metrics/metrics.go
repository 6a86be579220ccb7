// Package metrics exposes Prometheus collectors for a feed build.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Row results.
const (
	RowListing = "listing"
	RowSkipped = "skipped"
)

var (
	rowsTotal              *prometheus.CounterVec
	enrichmentsTotal       *prometheus.CounterVec
	fetchDurationSeconds   *prometheus.HistogramVec
	rateLimitDelaysSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		rowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventfeed_rows_total",
				Help: "Total number of table rows processed, labeled by result.",
			},
			[]string{"result"},
		)

		enrichmentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventfeed_enrichments_total",
				Help: "Total number of metadata lookups, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventfeed_fetch_duration_seconds",
				Help:    "Histogram of listing page fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"site"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventfeed_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveRow counts one processed table row.
func ObserveRow(result string) {
	Init()
	rowsTotal.WithLabelValues(result).Inc()
}

// ObserveEnrichment counts the outcome of one metadata lookup.
func ObserveEnrichment(site, outcome string) {
	Init()
	enrichmentsTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveFetchDuration records how long a listing page took to fetch and
// parse. Rate limit waits are not included.
func ObserveFetchDuration(site string, duration time.Duration) {
	Init()
	fetchDurationSeconds.WithLabelValues(SanitizeSite(site)).Observe(duration.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// WriteTextfile dumps the default registry in the node exporter textfile
// format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
