package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"go-worldstats/internal/api/handler"
	"go-worldstats/internal/metrics"
	"go-worldstats/pkg/router"

	_ "go-worldstats/docs"
)

// RegisterRoutes wires the query API, the metrics endpoint and the API docs.
// A nil m leaves /metrics unregistered.
func RegisterRoutes(r *router.Router, h *handler.Handler, m *metrics.Metrics) {
	r.GET("/api/v1/facts", h.GetFacts)
	r.GET("/api/v1/classifications", h.GetClassifications)
	r.GET("/api/v1/periods", h.GetPeriods)
	r.GET("/api/v1/shocks", h.GetShocks)
	r.GET("/api/v1/growth", h.GetGrowth)
	r.GET("/api/v1/describe", h.GetDescribe)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/*", h.GetRun)

	if m != nil {
		r.Handle("/metrics", m.Handler())
		r.OnRequest(m.RecordRequest)
	}
	r.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
