package analysis

import (
	"go-worldstats/internal/model"
)

// Params selects the parameters of a full report
type Params struct {
	Cutoff     int   `json:"cutoff"`
	MinYears   int   `json:"min_years"`
	EventYears []int `json:"event_years"`
}

// DefaultParams compares around 2000 and studies the 2008 and 2019 shocks
func DefaultParams() Params {
	return Params{Cutoff: DefaultCutoff, MinYears: DefaultMinYears, EventYears: DefaultEventYears}
}

// Report bundles every analytical table computed from one fact table version
type Report struct {
	Version          string                        `json:"version"`
	Params           Params                        `json:"params"`
	Classifications  []model.CountryClassification `json:"classifications"`
	QuadrantCounts   map[model.Quadrant]int        `json:"quadrant_counts"`
	Periods          []model.PeriodComparison      `json:"periods"`
	Shocks           []model.ShockTrend            `json:"shocks"`
	ShocksByQuadrant []model.GroupShock            `json:"shocks_by_quadrant"`
	PopulationGrowth []model.GrowthStability       `json:"population_growth"`
	GDPGrowth        []model.GrowthStability       `json:"gdp_growth"`
	Summaries        []model.Summary               `json:"summaries"`
}

// BuildReport runs every query over records
func BuildReport(version string, records []model.CountryYearRecord, p Params) *Report {
	if p.Cutoff == 0 {
		p.Cutoff = DefaultCutoff
	}
	if p.MinYears <= 0 {
		p.MinYears = DefaultMinYears
	}
	if len(p.EventYears) == 0 {
		p.EventYears = DefaultEventYears
	}

	classifications := ComputeMedianBuckets(records)
	shocks := ShockAnalysis(records, p.EventYears)
	return &Report{
		Version:          version,
		Params:           p,
		Classifications:  classifications,
		QuadrantCounts:   QuadrantCounts(classifications),
		Periods:          ComparePeriods(records, p.Cutoff, p.MinYears),
		Shocks:           shocks,
		ShocksByQuadrant: ShockByGroup(shocks, classifications),
		PopulationGrowth: GrowthAndStability(records, model.MetricPopulation),
		GDPGrowth:        GrowthAndStability(records, model.MetricGDP),
		Summaries: []model.Summary{
			Describe(records, model.MetricPopulation),
			Describe(records, model.MetricGDP),
		},
	}
}
