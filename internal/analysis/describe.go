package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go-worldstats/internal/model"
)

// Describe returns descriptive statistics of every non-null value of metric
func Describe(records []model.CountryYearRecord, metric model.Metric) model.Summary {
	var values []float64
	for _, r := range records {
		if v, ok := r.Value(metric); ok {
			values = append(values, v)
		}
	}
	s := model.Summary{Metric: metric, Count: len(values)}
	if len(values) == 0 {
		none := model.Insufficient("no values")
		s.Mean, s.StdDev, s.Min, s.Median, s.Max = none, none, none, none, none
		return s
	}
	s.Mean = model.Of(stat.Mean(values, nil))
	if len(values) > 1 {
		s.StdDev = model.Of(stat.StdDev(values, nil))
	} else {
		s.StdDev = model.Insufficient("one value")
	}
	s.Min = model.Of(floats.Min(values))
	s.Median = Median(values)
	s.Max = model.Of(floats.Max(values))
	return s
}

// FilterYears keeps records with from <= year <= to
func FilterYears(records []model.CountryYearRecord, from, to int) []model.CountryYearRecord {
	var out []model.CountryYearRecord
	for _, r := range records {
		if r.Year >= from && r.Year <= to {
			out = append(out, r)
		}
	}
	return out
}

// FilterCountries keeps records of the given countries. An empty list keeps everything.
func FilterCountries(records []model.CountryYearRecord, ids []string) []model.CountryYearRecord {
	if len(ids) == 0 {
		return records
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.CountryYearRecord
	for _, r := range records {
		if want[r.CountryID] {
			out = append(out, r)
		}
	}
	return out
}
