package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodaten-labs/streetcrawl/internal/resilience"
)

func newTestFetcher() *HTTPFetcher {
	return New(Options{
		UserAgent:         "test-agent",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			JitterFraction: 0,
		},
	})
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "Ahorn", r.URL.Query().Get("street"))
		w.Write([]byte(`{"value":42}`))
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	f := newTestFetcher()
	err := f.GetJSON(context.Background(), srv.URL, url.Values{"street": {"Ahorn"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	f := newTestFetcher()
	err := f.GetJSON(context.Background(), srv.URL, nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int64(3), calls.Load())
}

func TestGetJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out any
	f := newTestFetcher()
	err := f.GetJSON(context.Background(), srv.URL, nil, &out)
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestGetJSON_ExhaustedRetriesFail(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out any
	f := newTestFetcher()
	err := f.GetJSON(context.Background(), srv.URL, nil, &out)
	require.Error(t, err)
	assert.Equal(t, int64(3), calls.Load())
}

func TestGetJSON_InvalidURL(t *testing.T) {
	f := newTestFetcher()
	var out any
	err := f.GetJSON(context.Background(), "://bad", nil, &out)
	require.Error(t, err)
}

func TestGetJSON_RateLimiterHonorsContext(t *testing.T) {
	f := New(Options{
		RequestsPerSecond: 0.001,
		Burst:             1,
		Retry:             resilience.RetryConfig{MaxAttempts: 1},
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// First request consumes the burst token.
	var out any
	require.NoError(t, f.GetJSON(context.Background(), srv.URL, nil, &out))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := f.GetJSON(ctx, srv.URL, nil, &out)
	require.Error(t, err)
}
