package analysis

import (
	"gonum.org/v1/gonum/stat"

	"go-worldstats/internal/model"
)

// DefaultCutoff and DefaultMinYears are the parameters of the standard comparison
const (
	DefaultCutoff   = 2000
	DefaultMinYears = 3
)

// ComparePeriods computes, per country and metric, the mean over years before
// cutoff and the mean over years from cutoff on. A side backed by fewer than
// minYears non-null years is insufficient.
func ComparePeriods(records []model.CountryYearRecord, cutoff, minYears int) []model.PeriodComparison {
	if minYears <= 0 {
		minYears = DefaultMinYears
	}
	var out []model.PeriodComparison
	metrics := []model.Metric{model.MetricPopulation, model.MetricGDP}
	perMetric := make(map[model.Metric]map[string][]point, len(metrics))
	for _, m := range metrics {
		perMetric[m] = series(records, m)
	}

	for _, id := range countryIDs(records) {
		for _, m := range metrics {
			var pre, post []float64
			for _, p := range perMetric[m][id] {
				if p.year < cutoff {
					pre = append(pre, p.value)
				} else {
					post = append(post, p.value)
				}
			}
			c := model.PeriodComparison{
				CountryID: id,
				Metric:    m,
				Cutoff:    cutoff,
				Pre:       periodMean(pre, minYears),
				Post:      periodMean(post, minYears),
				PreYears:  len(pre),
				PostYears: len(post),
			}
			c.Change = relativeChange(c.Pre, c.Post)
			out = append(out, c)
		}
	}
	return out
}

func periodMean(values []float64, minYears int) model.Stat {
	if len(values) < minYears {
		return model.Insufficient("%d of %d required years", len(values), minYears)
	}
	return model.Of(stat.Mean(values, nil))
}

// relativeChange is to/from - 1
func relativeChange(from, to model.Stat) model.Stat {
	switch {
	case !from.Valid || !to.Valid:
		return model.Insufficient("missing side")
	case from.Value <= 0:
		return model.Insufficient("non-positive base")
	}
	return model.Of(to.Value/from.Value - 1)
}
