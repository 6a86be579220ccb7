package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/eventfeed/internal/feed"
	"github.com/JakeFAU/eventfeed/internal/fetcher"
	collyfetcher "github.com/JakeFAU/eventfeed/internal/fetcher/colly"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (fetcher.Page, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(fetcher.Page), args.Error(1)
}

func htmlPage(body string) fetcher.Page {
	return fetcher.Page{
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func TestLookupOK(t *testing.T) {
	t.Parallel()

	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "https://a.example").Return(htmlPage(fullPage), nil)

	res := New(f, nil, Config{}, zap.NewNop()).Lookup(context.Background(), "https://a.example")
	require.Equal(t, OutcomeOK, res.Outcome)
	require.NoError(t, res.Cause)
	require.Equal(t, "@gophercon", res.Metadata.Twitter)
	f.AssertExpectations(t)
}

func TestLookupFetchError(t *testing.T) {
	t.Parallel()

	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "https://down.example").Return(fetcher.Page{}, errors.New("connection refused"))

	res := New(f, nil, Config{}, zap.NewNop()).Lookup(context.Background(), "https://down.example")
	require.Equal(t, OutcomeNoMetadata, res.Outcome)
	require.Equal(t, Metadata{}, res.Metadata)
	require.ErrorContains(t, res.Cause, "connection refused")
}

func TestLookupNotHTML(t *testing.T) {
	t.Parallel()

	page := htmlPage(`{"description":"json"}`)
	page.Headers.Set("Content-Type", "application/json")
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "https://api.example").Return(page, nil)

	res := New(f, nil, Config{}, nil).Lookup(context.Background(), "https://api.example")
	require.Equal(t, OutcomeNoMetadata, res.Outcome)
	require.ErrorIs(t, res.Cause, ErrNotHTML)
}

func TestLookupLimiterError(t *testing.T) {
	t.Parallel()

	f := new(MockFetcher)
	res := New(f, failingLimiter{}, Config{}, zap.NewNop()).Lookup(context.Background(), "https://a.example")
	require.Equal(t, OutcomeNoMetadata, res.Outcome)
	f.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestLookupFetchDurationExcludesLimiterWait(t *testing.T) {
	t.Parallel()

	const rawURL = "https://slow-limiter.example/page"
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, rawURL).Return(htmlPage(fullPage), nil)

	res := New(f, sleepingLimiter{delay: 300 * time.Millisecond}, Config{}, zap.NewNop()).Lookup(context.Background(), rawURL)
	require.Equal(t, OutcomeOK, res.Outcome)

	count, sum := fetchDuration(t, "slow-limiter.example")
	require.Equal(t, uint64(1), count)
	require.Less(t, sum, 0.3)
}

func TestLookupWithoutFetcher(t *testing.T) {
	t.Parallel()

	res := New(nil, nil, Config{}, zap.NewNop()).Lookup(context.Background(), "https://a.example")
	require.Equal(t, OutcomeNoMetadata, res.Outcome)
}

func TestEnrichIsolatesFailures(t *testing.T) {
	t.Parallel()

	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "https://ok.example").Return(htmlPage(fullPage), nil)
	f.On("Fetch", mock.Anything, "https://down.example").Return(fetcher.Page{}, errors.New("boom"))

	in := []feed.Listing{
		{Name: "Down", URL: "https://down.example", StartDay: "2024-06-05", EndDay: "2024-06-05", Price: "Free"},
		{Name: "OK", URL: "https://ok.example", StartDay: "2024-06-06", EndDay: "2024-06-07"},
	}
	out := New(f, nil, Config{}, zap.NewNop()).Enrich(context.Background(), in)

	require.Len(t, out, 2)
	require.Equal(t, in[0], out[0])
	require.Equal(t, "OK", out[1].Name)
	require.Equal(t, "https://cdn.example/tw.png", out[1].Image)
	require.Equal(t, "@gophercon", out[1].Twitter)
	require.Equal(t, "The Go conference.", out[1].Description)
	require.Equal(t, []string{"go", "golang", "conference"}, out[1].Keywords)
	require.Equal(t, "", in[1].Image, "input listings must not be mutated")
}

func TestEnrichEmpty(t *testing.T) {
	t.Parallel()

	out := New(new(MockFetcher), nil, Config{}, zap.NewNop()).Enrich(context.Background(), []feed.Listing{})
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestEnrichRespectsMaxConcurrency(t *testing.T) {
	t.Parallel()

	f := &gaugeFetcher{delay: 20 * time.Millisecond}
	listings := make([]feed.Listing, 12)
	for i := range listings {
		listings[i] = feed.Listing{URL: "https://a.example"}
	}

	New(f, nil, Config{MaxConcurrency: 3}, zap.NewNop()).Enrich(context.Background(), listings)
	require.LessOrEqual(t, f.peak.Load(), int32(3))
	require.Equal(t, int32(12), f.calls.Load())
}

func TestEnrichUnboundedFansOut(t *testing.T) {
	t.Parallel()

	f := &gaugeFetcher{delay: 50 * time.Millisecond}
	listings := make([]feed.Listing, 8)
	for i := range listings {
		listings[i] = feed.Listing{URL: "https://a.example"}
	}

	New(f, nil, Config{}, zap.NewNop()).Enrich(context.Background(), listings)
	require.Greater(t, f.peak.Load(), int32(1))
}

func TestEnrichOverHTTP(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fullPage))
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := collyfetcher.New(collyfetcher.Config{Timeout: 2 * time.Second})
	out := New(f, nil, Config{}, zap.NewNop()).Enrich(context.Background(), []feed.Listing{
		{Name: "ok", URL: srv.URL + "/ok"},
		{Name: "missing", URL: srv.URL + "/missing"},
		{Name: "json", URL: srv.URL + "/json"},
	})

	require.Equal(t, "@gophercon", out[0].Twitter)
	for _, l := range out[1:] {
		require.Empty(t, l.Image)
		require.Empty(t, l.Twitter)
		require.Empty(t, l.Description)
		require.Nil(t, l.Keywords)
	}
}

func TestApplyClearsOnNoMetadata(t *testing.T) {
	t.Parallel()

	listing := feed.Listing{Name: "x", Image: "stale", Keywords: []string{"k"}}
	got := Apply(listing, withoutMetadata(errors.New("boom")))
	require.Equal(t, feed.Listing{Name: "x"}, got)
}

type failingLimiter struct{}

func (failingLimiter) Wait(context.Context, string) error {
	return errors.New("limiter closed")
}

type sleepingLimiter struct {
	delay time.Duration
}

func (l sleepingLimiter) Wait(ctx context.Context, _ string) error {
	select {
	case <-time.After(l.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchDuration returns the sample count and sum of the fetch latency
// histogram for site.
func fetchDuration(t *testing.T, site string) (uint64, float64) {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "eventfeed_fetch_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "site" && lp.GetValue() == site {
					return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
				}
			}
		}
	}
	return 0, 0
}

type gaugeFetcher struct {
	delay    time.Duration
	mu       sync.Mutex
	inFlight int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (g *gaugeFetcher) Fetch(_ context.Context, _ string) (fetcher.Page, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.peak.Load() {
		g.peak.Store(g.inFlight)
	}
	g.mu.Unlock()

	time.Sleep(g.delay)

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return htmlPage("<html></html>"), nil
}
