package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMatchWildcardRoute(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"/api/v1/runs/abc", "/api/v1/runs/*", true},
		{"/api/v1/runs/abc/stages", "/api/v1/runs/*", true},
		{"/api/v1/runs", "/api/v1/runs/*", false},
		{"/api/v1/runs/", "/api/v1/runs/*", false},
		{"/api/v1/runs/abc/errors", "/api/v1/runs/*/errors", true},
		{"/api/v1/runs/abc/stages", "/api/v1/runs/*/errors", false},
		{"/api/v1/facts", "/api/v1/runs/*", false},
	}
	for _, tt := range tests {
		t.Run(tt.path+"~"+tt.pattern, func(t *testing.T) {
			require.Equal(t, tt.want, matchWildcardRoute(tt.path, tt.pattern))
		})
	}
}

func text(body string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func TestRouterDispatch(t *testing.T) {
	var logs bytes.Buffer
	r := New(zerolog.New(&logs))

	type hit struct {
		route string
		code  int
	}
	var hits []hit
	r.OnRequest(func(route string, code int, d time.Duration) {
		hits = append(hits, hit{route, code})
	})

	r.GET("/api/v1/runs", text("list"))
	r.GET("/api/v1/runs/*/errors", text("errors"))
	r.GET("/api/v1/runs/*", text("one"))
	r.Handle("/swagger/", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("docs"))
	}))

	tests := []struct {
		method string
		path   string
		code   int
		body   string
		route  string
	}{
		{http.MethodGet, "/api/v1/runs", 200, "list", "/api/v1/runs"},
		{http.MethodGet, "/api/v1/runs/x/errors", 200, "errors", "/api/v1/runs/*/errors"},
		{http.MethodGet, "/api/v1/runs/x", 200, "one", "/api/v1/runs/*"},
		{http.MethodGet, "/swagger/index.html", 200, "docs", "/swagger/"},
		{http.MethodPost, "/api/v1/runs", 405, "", "/api/v1/runs"},
		{http.MethodPost, "/api/v1/runs/x", 405, "", "/api/v1/runs/*"},
		{http.MethodGet, "/nope", 404, "", "unmatched"},
	}
	for _, tt := range tests {
		hits = nil
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		require.Equal(t, tt.code, rec.Code, tt.path)
		if tt.body != "" {
			require.Equal(t, tt.body, rec.Body.String())
		}
		require.Len(t, hits, 1)
		require.Equal(t, tt.code, hits[0].code)
		if tt.code == 200 {
			require.Equal(t, tt.route, hits[0].route)
		}
	}
	require.Contains(t, logs.String(), `"path":"/nope"`)
	require.Contains(t, logs.String(), `"status":404`)
}

func TestPathParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/abc/", nil)
	require.Equal(t, "abc", PathParam(req, 3))
	require.Equal(t, "", PathParam(req, 4))
}
