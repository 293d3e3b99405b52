package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sec_insights/pkg/core/cache"
	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/metrics"
)

const factsJSON = `{
  "cik": 320193,
  "entityName": "Apple Inc.",
  "facts": {
    "us-gaap": {
      "Assets": {
        "label": "Assets",
        "units": {"USD": [{"end": "2023-09-30", "val": 352583000000, "accn": "x", "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}]}
      }
    }
  }
}`

// sleepRecorder captures retry sleeps instead of waiting.
type sleepRecorder struct{ waits []time.Duration }

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *sleepRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rec := &sleepRecorder{}
	base := []ClientOption{
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL),
		WithTickersURL(srv.URL + "/files/company_tickers.json"),
		WithMinInterval(0),
		WithRetry(3, time.Second),
		WithSleep(rec.sleep),
	}
	return NewClient(append(base, opts...)...), rec
}

func TestCompanyFactsRequest(t *testing.T) {
	var gotPath, gotUA, gotAccept string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(factsJSON))
	}, WithUserAgent("Test Agent test@example.com"))

	facts, err := client.CompanyFacts(context.Background(), "320193")
	require.NoError(t, err)

	assert.Equal(t, "/api/xbrl/companyfacts/CIK0000320193.json", gotPath)
	assert.Equal(t, "Test Agent test@example.com", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, CIK("0000320193"), facts.CIK)
	assert.Equal(t, 352583000000.0, facts.Facts["us-gaap"]["Assets"].Units["USD"][0].Val)
}

func TestEndpointPaths(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := client.CompanySubmissions(ctx, "0000789019")
	require.NoError(t, err)
	_, err = client.CompanyConcept(ctx, "789019", "us-gaap", "Revenues")
	require.NoError(t, err)
	_, err = client.Frames(ctx, FrameQuery{Taxonomy: "us-gaap", Tag: "Assets", Unit: "USD", Year: 2023, Quarter: 4, Instantaneous: true})
	require.NoError(t, err)
	_, err = client.Frames(ctx, FrameQuery{Taxonomy: "us-gaap", Tag: "Revenues", Unit: "USD", Year: 2023})
	require.NoError(t, err)
	_, err = client.CompanyTickers(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/submissions/CIK0000789019.json",
		"/api/xbrl/companyconcept/CIK0000789019/us-gaap/Revenues.json",
		"/api/xbrl/frames/us-gaap/Assets/USD/CY2023Q4I.json",
		"/api/xbrl/frames/us-gaap/Revenues/USD/CY2023.json",
		"/files/company_tickers.json",
	}, paths)
}

func TestCachedResponsesSkipNetwork(t *testing.T) {
	var hits int32
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(factsJSON))
	}, WithCache(cache.New(t.TempDir(), cache.WithMetrics(m))), WithMetrics(m))
	ctx := context.Background()

	first, err := client.CompanyFacts(ctx, "320193")
	require.NoError(t, err)
	second, err := client.CompanyFacts(ctx, "0000320193")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, first, second)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP sec_cache_hits_total Cached SEC responses served from disk.
# TYPE sec_cache_hits_total counter
sec_cache_hits_total 1
# HELP sec_cache_misses_total Cache lookups that had to call SEC (absent, expired or unreadable).
# TYPE sec_cache_misses_total counter
sec_cache_misses_total 1
`), "sec_cache_hits_total", "sec_cache_misses_total"))
}

func TestRateLimitedRetriesWithLinearBackoff(t *testing.T) {
	var hits int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(factsJSON))
	})

	_, err := client.CompanyFacts(context.Background(), "320193")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
}

func TestRateLimitedExhausted(t *testing.T) {
	var hits int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.CompanySubmissions(context.Background(), "320193")
	assert.ErrorIs(t, err, errs.ErrRateLimited)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
}

func TestDataErrorAfterRetries(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{name: "not found", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{name: "invalid json", handler: func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				tt.handler(w, r)
			})

			_, err := client.CompanyFacts(context.Background(), "320193")
			assert.ErrorIs(t, err, errs.ErrDataRetrieval)
			assert.NotErrorIs(t, err, errs.ErrRateLimited)
			assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
			assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.waits)
		})
	}
}

func TestTransientFailureRecovers(t *testing.T) {
	var hits int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(factsJSON))
	})

	facts, err := client.CompanyFacts(context.Background(), "320193")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", facts.EntityName)
	assert.Equal(t, []time.Duration{time.Second}, rec.waits)
}

func TestFailuresAreNotCached(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(factsJSON))
	}, WithCache(cache.New(t.TempDir())))
	ctx := context.Background()

	_, err := client.CompanyFacts(ctx, "320193")
	require.ErrorIs(t, err, errs.ErrDataRetrieval)

	_, err = client.CompanyFacts(ctx, "320193")
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
}

func TestInvalidInputNeverHitsNetwork(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := client.Frames(ctx, FrameQuery{Taxonomy: "us-gaap", Tag: "Assets", Unit: "USD", Year: 2024, Quarter: 5})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = client.CompanyFacts(ctx, "not-a-cik")
	assert.ErrorIs(t, err, errs.ErrInvalidIdentifier)

	_, err = client.CompanyConcept(ctx, "320193", "us-gaap", "")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestThrottleSpacing(t *testing.T) {
	const interval = 50 * time.Millisecond
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}, WithMinInterval(interval))
	ctx := context.Background()

	start := time.Now()
	for _, cik := range []string{"1", "2", "3", "4"} {
		_, err := client.CompanySubmissions(ctx, cik)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 3*interval-time.Millisecond)
}

func TestLookupCIK(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}}`))
	})
	ctx := context.Background()

	cik, err := client.LookupCIK(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", cik)

	_, err = client.LookupCIK(ctx, "ZZZZ")
	assert.ErrorIs(t, err, errs.ErrInvalidIdentifier)
}

func TestContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := client.CompanyFacts(ctx, "320193")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
