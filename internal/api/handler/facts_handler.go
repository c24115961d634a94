package handler

import (
	"net/http"

	"go-worldstats/internal/analysis"
	"go-worldstats/internal/model"
	"go-worldstats/pkg/utils"
)

// FactsResponse is the fact table slice of one version
type FactsResponse struct {
	Version string                    `json:"version"`
	Count   int                       `json:"count"`
	Records []model.CountryYearRecord `json:"records"`
}

// ClassificationsResponse holds the median-bucket classification
type ClassificationsResponse struct {
	Version         string                        `json:"version"`
	Classifications []model.CountryClassification `json:"classifications"`
	QuadrantCounts  map[model.Quadrant]int        `json:"quadrant_counts"`
}

// PeriodsResponse holds the pre/post cutoff comparison
type PeriodsResponse struct {
	Version  string                   `json:"version"`
	Cutoff   int                      `json:"cutoff"`
	MinYears int                      `json:"min_years"`
	Periods  []model.PeriodComparison `json:"periods"`
}

// ShocksResponse holds per-country trends and their quadrant means
type ShocksResponse struct {
	Version    string             `json:"version"`
	EventYears []int              `json:"event_years"`
	Trends     []model.ShockTrend `json:"trends"`
	ByQuadrant []model.GroupShock `json:"by_quadrant"`
}

// GrowthResponse holds growth and stability per country for one metric
type GrowthResponse struct {
	Version string                  `json:"version"`
	Metric  model.Metric            `json:"metric"`
	Growth  []model.GrowthStability `json:"growth"`
}

// DescribeResponse holds descriptive statistics
type DescribeResponse struct {
	Version   string          `json:"version"`
	Summaries []model.Summary `json:"summaries"`
}

// GetFacts returns fact table records
// @Summary Get facts
// @Description Return the country-year records of the current fact table version. Missing metrics are null.
// @Tags facts
// @Produce json
// @Param from query int false "First year"
// @Param to query int false "Last year"
// @Param country query string false "Comma separated country ids"
// @Success 200 {object} FactsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No version published"
// @Router /facts [get]
func (h *Handler) GetFacts(w http.ResponseWriter, r *http.Request) {
	version, records, code, err := h.snapshot(r.Context(), r)
	if err != nil {
		h.fail(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, FactsResponse{Version: version, Count: len(records), Records: records})
}

// GetClassifications returns the median-bucket classification
// @Summary Classify countries
// @Description Split countries into HIGH/LOW population and GDP buckets around the cross-country median of their latest values
// @Tags analysis
// @Produce json
// @Param from query int false "First year"
// @Param to query int false "Last year"
// @Param country query string false "Comma separated country ids"
// @Success 200 {object} ClassificationsResponse
// @Failure 404 {object} ErrorResponse
// @Router /classifications [get]
func (h *Handler) GetClassifications(w http.ResponseWriter, r *http.Request) {
	version, records, code, err := h.snapshot(r.Context(), r)
	if err != nil {
		h.fail(w, code, err)
		return
	}
	cls := analysis.ComputeMedianBuckets(records)
	writeJSON(w, http.StatusOK, ClassificationsResponse{
		Version:         version,
		Classifications: cls,
		QuadrantCounts:  analysis.QuadrantCounts(cls),
	})
}

// GetPeriods compares the pre and post cutoff means
// @Summary Compare periods
// @Description Mean population and GDP before and from the cutoff year, per country
// @Tags analysis
// @Produce json
// @Param cutoff query int false "Cutoff year" default(2000)
// @Param min_years query int false "Minimum non-null years per period" default(3)
// @Param country query string false "Comma separated country ids"
// @Success 200 {object} PeriodsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /periods [get]
func (h *Handler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cutoff, err := queryYear(q.Get("cutoff"), analysis.DefaultCutoff)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	minYears, err := queryInt(q.Get("min_years"), analysis.DefaultMinYears)
	if err != nil || minYears == 0 {
		h.fail(w, http.StatusBadRequest, errBadParam("min_years"))
		return
	}
	version, records, code, err := h.snapshot(r.Context(), r)
	if err != nil {
		h.fail(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, PeriodsResponse{
		Version:  version,
		Cutoff:   cutoff,
		MinYears: minYears,
		Periods:  analysis.ComparePeriods(records, cutoff, minYears),
	})
}

// GetShocks returns GDP trends around the event years
// @Summary Shock analysis
// @Description GDP at y-1, y and y+1 around each event year, per country and averaged per quadrant
// @Tags analysis
// @Produce json
// @Param events query string false "Comma separated event years" default(2008,2019)
// @Param country query string false "Comma separated country ids"
// @Success 200 {object} ShocksResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shocks [get]
func (h *Handler) GetShocks(w http.ResponseWriter, r *http.Request) {
	events := analysis.DefaultEventYears
	if s := r.URL.Query().Get("events"); s != "" {
		var err error
		if events, err = utils.ParseYearList(s); err != nil {
			h.fail(w, http.StatusBadRequest, err)
			return
		}
	}
	version, records, code, err := h.snapshot(r.Context(), r)
	if err != nil {
		h.fail(w, code, err)
		return
	}
	trends := analysis.ShockAnalysis(records, events)
	writeJSON(w, http.StatusOK, ShocksResponse{
		Version:    version,
		EventYears: events,
		Trends:     trends,
		ByQuadrant: analysis.ShockByGroup(trends, analysis.ComputeMedianBuckets(records)),
	})
}

// GetGrowth returns growth and stability scores
// @Summary Growth and stability
// @Description CAGR and volatility over each country's longest continuous span
// @Tags analysis
// @Produce json
// @Param metric query string false "population or gdp" default(gdp)
// @Param country query string false "Comma separated country ids"
// @Success 200 {object} GrowthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /growth [get]
func (h *Handler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	metric := model.MetricGDP
	if s := r.URL.Query().Get("metric"); s != "" {
		var err error
		if metric, err = model.ParseMetric(s); err != nil {
			h.fail(w, http.StatusBadRequest, err)
			return
		}
	}
	version, records, code, err := h.snapshot(r.Context(), r)
	if err != nil {
		h.fail(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, GrowthResponse{
		Version: version,
		Metric:  metric,
		Growth:  analysis.GrowthAndStability(records, metric),
	})
}

// GetDescribe returns descriptive statistics
// @Summary Describe
// @Description Count, mean, standard deviation, min, median and max of each metric
// @Tags analysis
// @Produce json
// @Param metric query string false "population or gdp; both when empty"
// @Param from query int false "First year"
// @Param to query int false "Last year"
// @Param country query string false "Comma separated country ids"
// @Success 200 {object} DescribeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /describe [get]
func (h *Handler) GetDescribe(w http.ResponseWriter, r *http.Request) {
	metrics := []model.Metric{model.MetricPopulation, model.MetricGDP}
	if s := r.URL.Query().Get("metric"); s != "" {
		m, err := model.ParseMetric(s)
		if err != nil {
			h.fail(w, http.StatusBadRequest, err)
			return
		}
		metrics = []model.Metric{m}
	}
	version, records, code, err := h.snapshot(r.Context(), r)
	if err != nil {
		h.fail(w, code, err)
		return
	}
	resp := DescribeResponse{Version: version}
	for _, m := range metrics {
		resp.Summaries = append(resp.Summaries, analysis.Describe(records, m))
	}
	writeJSON(w, http.StatusOK, resp)
}

type errBadParam string

func (e errBadParam) Error() string { return "invalid " + string(e) }
