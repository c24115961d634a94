package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"go-worldstats/internal/api/handler"
	"go-worldstats/internal/facttable"
	"go-worldstats/internal/logging"
	"go-worldstats/internal/metrics"
	"go-worldstats/internal/model"
	"go-worldstats/internal/store"
	"go-worldstats/pkg/router"
)

func sampleRecords() []model.CountryYearRecord {
	var out []model.CountryYearRecord
	for y := 2006; y <= 2010; y++ {
		out = append(out, model.CountryYearRecord{
			CountryID:  "FRA",
			Year:       y,
			Population: model.Int64Ptr(int64(60000 + y)),
			GDP:        model.Float64Ptr(float64(100 + y - 2006)),
		})
	}
	out = append(out, model.CountryYearRecord{CountryID: "CHL", Year: 2008, Population: model.Int64Ptr(17000)})
	return out
}

type testServer struct {
	router  *router.Router
	handler *handler.Handler
	ledger  *store.Store
}

func newTestServer(t *testing.T, records []model.CountryYearRecord) *testServer {
	t.Helper()
	root := t.TempDir()
	if records != nil {
		w, err := facttable.NewWriter(root, facttable.Options{}, logging.Nop())
		require.NoError(t, err)
		_, err = w.Write(context.Background(), records)
		require.NoError(t, err)
	}
	ledger, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	h := &handler.Handler{Root: root, Ledger: ledger, Logger: logging.Nop()}
	r := router.New(zerolog.Nop())
	RegisterRoutes(r, h, metrics.New(false))
	return &testServer{router: r, handler: h, ledger: ledger}
}

func (s *testServer) get(t *testing.T, path string, out interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestFactsWithoutTable(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusNotFound, s.get(t, "/api/v1/facts", nil))
}

func TestGetFacts(t *testing.T) {
	s := newTestServer(t, sampleRecords())

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 6},
		{"?from=2008&to=2008", http.StatusOK, 2},
		{"?from=2009", http.StatusOK, 2},
		{"?country=chl", http.StatusOK, 1},
		{"?country=FRA,CHL&to=2007", http.StatusOK, 2},
		{"?from=2010&to=2001", http.StatusBadRequest, 0},
		{"?from=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var resp handler.FactsResponse
			require.Equal(t, tt.code, s.get(t, "/api/v1/facts"+tt.query, &resp))
			if tt.code == http.StatusOK {
				require.Equal(t, tt.count, resp.Count)
				require.Len(t, resp.Records, tt.count)
				require.NotEmpty(t, resp.Version)
			}
		})
	}
}

func TestFactsKeepNulls(t *testing.T) {
	s := newTestServer(t, sampleRecords())

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/facts?country=CHL", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"gdp":null`)
}

func TestFactsThroughDuckDB(t *testing.T) {
	s := newTestServer(t, sampleRecords())

	var parquet, duck handler.FactsResponse
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/facts?from=2007&to=2009", &parquet))
	s.handler.UseDuckDB = true
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/facts?from=2007&to=2009", &duck))
	require.Equal(t, parquet.Records, duck.Records)
}

func TestClassificationsMarkInsufficient(t *testing.T) {
	s := newTestServer(t, sampleRecords())

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/classifications", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"insufficient_data":true`)

	var resp handler.ClassificationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Classifications, 2)
	chl := resp.Classifications[0]
	require.Equal(t, "CHL", chl.CountryID)
	require.Equal(t, model.BucketInsufficient, chl.GDPBucket)
	require.Equal(t, model.QuadrantUnclassified, chl.Quadrant)
	require.False(t, chl.RepresentativeGDP.Valid)
	require.Equal(t, 1, resp.QuadrantCounts[model.QuadrantUnclassified])
}

func TestAnalysisEndpoints(t *testing.T) {
	s := newTestServer(t, sampleRecords())

	var periods handler.PeriodsResponse
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/periods?cutoff=2008&min_years=2", &periods))
	require.Equal(t, 2008, periods.Cutoff)
	require.NotEmpty(t, periods.Periods)
	require.Equal(t, http.StatusBadRequest, s.get(t, "/api/v1/periods?min_years=0", nil))

	var shocks handler.ShocksResponse
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/shocks?events=2008", &shocks))
	require.Equal(t, []int{2008}, shocks.EventYears)
	require.Len(t, shocks.Trends, 2)
	fra := shocks.Trends[1]
	require.Equal(t, "FRA", fra.CountryID)
	require.True(t, fra.Decline.Valid)
	require.InDelta(t, 102.0/101.0-1, fra.Decline.Value, 1e-12)
	require.False(t, shocks.Trends[0].Decline.Valid)
	require.Equal(t, http.StatusBadRequest, s.get(t, "/api/v1/shocks?events=x", nil))

	var growth handler.GrowthResponse
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/growth?metric=population", &growth))
	require.Equal(t, model.MetricPopulation, growth.Metric)
	require.Equal(t, http.StatusBadRequest, s.get(t, "/api/v1/growth?metric=bogus", nil))

	var describe handler.DescribeResponse
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/describe", &describe))
	require.Len(t, describe.Summaries, 2)
	require.Equal(t, 6, describe.Summaries[0].Count)
	require.Equal(t, 5, describe.Summaries[1].Count)
}

func TestRunsEndpoints(t *testing.T) {
	s := newTestServer(t, sampleRecords())
	require.NoError(t, s.ledger.SaveRun("run-1", model.RunSpec{OutputPath: "out"}))
	require.NoError(t, s.ledger.SaveRunError("run-1", errors.New("boom")))

	var runs []store.Run
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/runs", &runs))
	require.Len(t, runs, 1)

	var run store.Run
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/runs/run-1", &run))
	require.Equal(t, "out", run.Spec.OutputPath)
	require.Equal(t, []string{"boom"}, run.Errors)

	require.Equal(t, http.StatusNotFound, s.get(t, "/api/v1/runs/missing", nil))

	s.handler.Ledger = nil
	require.Equal(t, http.StatusServiceUnavailable, s.get(t, "/api/v1/runs", nil))
}

func TestMetricsAndDocs(t *testing.T) {
	s := newTestServer(t, sampleRecords())
	require.Equal(t, http.StatusOK, s.get(t, "/api/v1/facts", nil))

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `worldstats_http_requests_total{code="200",route="/api/v1/facts"} 1`)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"/classifications"`)
}
