package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-worldstats/internal/model"
)

func fastRetry() model.RetryConfig {
	return model.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffMultiplier: 2}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("Country Name,Country Code,Year,Value\nFrance,FRA,2000,1\n"))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), nil)
	f.Retry = fastRetry()
	res, err := f.Fetch(context.Background(), Source{Metric: model.MetricPopulation, URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, 3, res.Attempts)
	require.False(t, res.Cached)
	require.Equal(t, filepath.Join(f.Dir, "population.csv"), res.Path)
	require.Len(t, res.SHA256, 64)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "France,FRA")

	// second call is served from the cache
	again, err := f.Fetch(context.Background(), Source{Metric: model.MetricPopulation, URL: srv.URL})
	require.NoError(t, err)
	require.True(t, again.Cached)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), nil)
	f.Retry = fastRetry()
	_, err := f.Fetch(context.Background(), Source{Metric: model.MetricGDP, URL: srv.URL})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	_, statErr := os.Stat(filepath.Join(f.Dir, "gdp.csv"))
	require.True(t, os.IsNotExist(statErr))
}

func TestFetchAllKeepsGoingAfterFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pop.csv", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("a,b\n")) })
	mux.HandleFunc("/gdp.csv", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(t.TempDir(), nil)
	f.Retry = fastRetry()
	results, err := f.FetchAll(context.Background(), []Source{
		{Metric: model.MetricPopulation, URL: srv.URL + "/pop.csv", File: "population.csv"},
		{Metric: model.MetricGDP, URL: srv.URL + "/gdp.csv", File: "gdp.csv"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "gdp")
	require.Len(t, results, 1)
	require.Equal(t, model.MetricPopulation, results[0].Source.Metric)
}

func TestCalculateDelay(t *testing.T) {
	cfg := model.RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffMultiplier: 2}
	require.Equal(t, time.Second, calculateDelay(cfg, 1))
	require.Equal(t, 2*time.Second, calculateDelay(cfg, 2))
	require.Equal(t, 4*time.Second, calculateDelay(cfg, 3))
	require.Equal(t, 5*time.Second, calculateDelay(cfg, 4))

	cfg.Jitter = true
	d := calculateDelay(cfg, 2)
	require.InDelta(t, float64(2*time.Second), float64(d), float64(200*time.Millisecond))
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := model.RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, BackoffMultiplier: 1}
	attempts, err := retry(ctx, cfg, func(int, time.Duration, error) { cancel() }, func(context.Context) error {
		return &StatusError{URL: "x", StatusCode: 503}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}
