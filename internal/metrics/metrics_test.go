package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()

	require.NotNil(t, rowsTotal)
	require.NotNil(t, enrichmentsTotal)
	require.NotNil(t, fetchDurationSeconds)
	require.NotNil(t, rateLimitDelaysSeconds)
}

func TestObserveRow(t *testing.T) {
	Init()
	before := testutil.ToFloat64(rowsTotal.WithLabelValues(RowSkipped))

	ObserveRow(RowSkipped)
	ObserveRow(RowSkipped)

	after := testutil.ToFloat64(rowsTotal.WithLabelValues(RowSkipped))
	require.Equal(t, before+2, after)
}

func TestObserveEnrichmentSanitizesSite(t *testing.T) {
	Init()
	counter := enrichmentsTotal.WithLabelValues("metrics-test.example", "ok")
	before := testutil.ToFloat64(counter)

	ObserveEnrichment("https://Metrics-Test.example/page", "ok")

	require.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestObserveFetchDuration(t *testing.T) {
	Init()
	before := testutil.CollectAndCount(fetchDurationSeconds)

	ObserveFetchDuration("https://Fetch-Duration.example/page", 20*time.Millisecond)

	require.Equal(t, before+1, testutil.CollectAndCount(fetchDurationSeconds))
}

func TestWriteTextfile(t *testing.T) {
	ObserveRow(RowListing)
	ObserveRateLimitDelay("example.com", 150*time.Millisecond)

	path := filepath.Join(t.TempDir(), "eventfeed.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "eventfeed_rows_total")
	require.Contains(t, string(data), "eventfeed_rate_limit_delays_seconds")
}

func TestWriteTextfileBadPath(t *testing.T) {
	Init()
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "eventfeed.prom"))
	require.Error(t, err)
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
