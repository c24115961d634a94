// Package ingest downloads the raw population and GDP datasets into a local
// cache directory.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"go-worldstats/internal/logging"
	"go-worldstats/internal/model"
)

// Source is one downloadable dataset
type Source struct {
	Metric model.Metric `json:"metric"`
	URL    string       `json:"url"`
	File   string       `json:"file"`
}

// DefaultSources are the public datasets the pipeline is built around
var DefaultSources = []Source{
	{Metric: model.MetricPopulation, URL: "https://raw.githubusercontent.com/datasets/population/master/data/population.csv", File: "population.csv"},
	{Metric: model.MetricGDP, URL: "https://raw.githubusercontent.com/datasets/gdp/master/data/gdp.csv", File: "gdp.csv"},
}

// Result describes one fetched file
type Result struct {
	Source   Source `json:"source"`
	Path     string `json:"path"`
	Bytes    int64  `json:"bytes"`
	SHA256   string `json:"sha256,omitempty"`
	Cached   bool   `json:"cached"`
	Attempts int    `json:"attempts"`
}

// Fetcher downloads sources into Dir
type Fetcher struct {
	Client *http.Client
	Dir    string
	Retry  model.RetryConfig
	Force  bool // download even when the file is already cached
	Logger *logging.ComponentLogger
}

// NewFetcher returns a fetcher with a 30s per-request timeout and the default retry policy
func NewFetcher(dir string, logger *logging.ComponentLogger) *Fetcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: 30 * time.Second},
		Dir:    dir,
		Retry:  DefaultRetryConfig,
		Logger: logger,
	}
}

// FetchAll downloads every source concurrently. A failing source does not stop
// the others; all failures are returned joined.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			res, err := f.Fetch(ctx, src)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Metric, err)
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	g.Wait()

	var ok []Result
	for i := range sources {
		if errs[i] == nil {
			ok = append(ok, results[i])
		}
	}
	return ok, errors.Join(errs...)
}

// Fetch downloads one source unless it is cached. The file is written to a
// temporary name and renamed, so a failed download never leaves a partial file.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*Result, error) {
	if src.File == "" {
		src.File = string(src.Metric) + ".csv"
	}
	path := filepath.Join(f.Dir, filepath.Base(src.File))

	if !f.Force {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			f.Logger.Info().Str("url", src.URL).Str("path", path).Msg("Using cached dataset")
			return &Result{Source: src, Path: path, Bytes: info.Size(), Cached: true}, nil
		}
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return nil, err
	}

	var (
		n   int64
		sum string
	)
	attempts, err := retry(ctx, f.Retry,
		func(attempt int, delay time.Duration, err error) {
			f.Logger.Warn().Err(err).Str("url", src.URL).Int("attempt", attempt).Dur("retry_in", delay).Msg("Download failed, retrying")
		},
		func(ctx context.Context) error {
			var err error
			n, sum, err = f.download(ctx, src.URL, path)
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("download %s after %d attempts: %w", src.URL, attempts, err)
	}

	f.Logger.Info().Str("url", src.URL).Str("path", path).Int64("bytes", n).Int("attempts", attempts).Msg("Downloaded dataset")
	return &Result{Source: src, Path: path, Bytes: n, SHA256: sum, Attempts: attempts}, nil
}

func (f *Fetcher) download(ctx context.Context, url, path string) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return 0, "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return 0, "", err
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if err != nil {
		tmp.Close()
		return 0, "", err
	}
	if err := tmp.Close(); err != nil {
		return 0, "", err
	}
	if n == 0 {
		return 0, "", fmt.Errorf("GET %s: empty body", url)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}
