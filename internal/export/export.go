// Package export writes the analytical tables derived from one fact table
// version as CSV and JSON files for the presentation layer.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"go-worldstats/internal/analysis"
	"go-worldstats/internal/model"
	"go-worldstats/pkg/utils"
)

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ExportManager writes report tables below <BaseDir>/<version>/
type ExportManager struct {
	output *utils.OutputManager
}

// NewExportManager creates an export manager rooted at baseDir
func NewExportManager(baseDir string) *ExportManager {
	return &ExportManager{output: utils.NewOutputManager(baseDir)}
}

// table is one CSV file: a header and its rows
type table struct {
	name   string
	header []string
	rows   [][]string
}

// ExportReport writes every table of the report as CSV plus the full report as
// JSON. A failing file does not stop the others.
func (em *ExportManager) ExportReport(report *analysis.Report) []ExportResult {
	if err := em.output.EnsureOutputDirExists(); err != nil {
		return []ExportResult{{Type: "dir", Path: em.output.BaseOutputDir, Error: err.Error(), ExportedAt: time.Now().UTC()}}
	}
	var results []ExportResult
	for _, t := range reportTables(report) {
		results = append(results, em.exportCSV(report.Version, t))
	}
	results = append(results, em.exportJSON(report.Version, "report.json", report))
	return results
}

func (em *ExportManager) exportCSV(version string, t table) ExportResult {
	result := ExportResult{Type: em.output.GetFileType(t.name), ExportedAt: time.Now().UTC()}
	path, err := em.output.GetOutputFilePath(version, t.name)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Path = path

	file, err := os.Create(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create file: %v", err)
		return result
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.header); err != nil {
		result.Error = fmt.Sprintf("failed to write header: %v", err)
		return result
	}
	if err := writer.WriteAll(t.rows); err != nil {
		result.Error = fmt.Sprintf("failed to write rows: %v", err)
		return result
	}

	result.RecordCount = len(t.rows)
	result.Success = true
	return result
}

func (em *ExportManager) exportJSON(version, name string, v interface{}) ExportResult {
	result := ExportResult{Type: em.output.GetFileType(name), ExportedAt: time.Now().UTC()}
	path, err := em.output.GetOutputFilePath(version, name)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Path = path

	file, err := os.Create(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create file: %v", err)
		return result
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		result.Error = fmt.Sprintf("failed to encode JSON: %v", err)
		return result
	}
	result.RecordCount = 1
	result.Success = true
	return result
}

func reportTables(r *analysis.Report) []table {
	classifications := table{
		name:   "classifications.csv",
		header: []string{"country_id", "population_bucket", "gdp_bucket", "quadrant", "population_year", "gdp_year", "representative_population", "representative_gdp"},
	}
	for _, c := range r.Classifications {
		classifications.rows = append(classifications.rows, []string{
			c.CountryID, string(c.PopulationBucket), string(c.GDPBucket), string(c.Quadrant),
			yearCell(c.PopulationYear), yearCell(c.GDPYear), c.RepresentativePop.String(), c.RepresentativeGDP.String(),
		})
	}

	quadrants := table{name: "quadrant_counts.csv", header: []string{"quadrant", "countries"}}
	keys := make([]string, 0, len(r.QuadrantCounts))
	for q := range r.QuadrantCounts {
		keys = append(keys, string(q))
	}
	sort.Strings(keys)
	for _, q := range keys {
		quadrants.rows = append(quadrants.rows, []string{q, strconv.Itoa(r.QuadrantCounts[model.Quadrant(q)])})
	}

	periods := table{
		name:   "periods.csv",
		header: []string{"country_id", "metric", "period", "value", "years"},
	}
	for _, c := range r.Periods {
		for _, agg := range c.Aggregates() {
			periods.rows = append(periods.rows, []string{
				agg.CountryID, string(agg.Metric), string(agg.Period), agg.Value.String(), strconv.Itoa(agg.Years),
			})
		}
	}
	for _, s := range r.Shocks {
		agg := s.Aggregate()
		periods.rows = append(periods.rows, []string{
			agg.CountryID, string(agg.Metric), string(agg.Period), agg.Value.String(), strconv.Itoa(agg.Years),
		})
	}

	shocks := table{
		name:   "shocks.csv",
		header: []string{"country_id", "event_year", "gdp_before", "gdp_at", "gdp_after", "decline", "recovery"},
	}
	for _, s := range r.Shocks {
		shocks.rows = append(shocks.rows, []string{
			s.CountryID, strconv.Itoa(s.EventYear), s.Before.String(), s.At.String(), s.After.String(), s.Decline.String(), s.Recovery.String(),
		})
	}

	groups := table{
		name:   "shocks_by_quadrant.csv",
		header: []string{"quadrant", "event_year", "countries", "excluded", "decline_countries", "recovery_countries", "mean_decline", "mean_recovery"},
	}
	for _, g := range r.ShocksByQuadrant {
		groups.rows = append(groups.rows, []string{
			string(g.Quadrant), strconv.Itoa(g.EventYear), strconv.Itoa(g.Countries), strconv.Itoa(g.Excluded),
			strconv.Itoa(g.DeclineCountries), strconv.Itoa(g.RecoveryCountries), g.Decline.String(), g.Recovery.String(),
		})
	}

	growth := table{
		name:   "growth.csv",
		header: []string{"country_id", "metric", "start_year", "end_year", "transitions", "cagr", "volatility"},
	}
	for _, set := range [][]model.GrowthStability{r.PopulationGrowth, r.GDPGrowth} {
		for _, g := range set {
			growth.rows = append(growth.rows, []string{
				g.CountryID, string(g.Metric), yearCell(g.StartYear), yearCell(g.EndYear), strconv.Itoa(g.Transitions), g.CAGR.String(), g.Volatility.String(),
			})
		}
	}

	describe := table{
		name:   "describe.csv",
		header: []string{"metric", "count", "mean", "std_dev", "min", "median", "max"},
	}
	for _, s := range r.Summaries {
		describe.rows = append(describe.rows, []string{
			string(s.Metric), strconv.Itoa(s.Count), s.Mean.String(), s.StdDev.String(), s.Min.String(), s.Median.String(), s.Max.String(),
		})
	}

	return []table{classifications, quadrants, periods, shocks, groups, growth, describe}
}

// yearCell leaves absent years empty rather than writing 0
func yearCell(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}
