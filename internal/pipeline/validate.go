package pipeline

import (
	"math"

	"go-worldstats/internal/model"
)

// ValidateLong applies the fact table schema to reshaped values of one metric.
// Values outside the year range, negative values and non-integral populations
// are dropped. When a (country_id, year) key occurs more than once among the
// remaining values, the one earliest in the source file wins.
func ValidateLong(values []model.LongValue, metric model.Metric, rules model.ValidationRules, source string) ([]model.LongValue, *model.DropCounts) {
	drops := model.NewDropCounts()

	sorted := make([]model.LongValue, len(values))
	copy(sorted, values)
	SortLong(sorted)

	out := make([]model.LongValue, 0, len(sorted))
	seen := make(map[model.RecordKey]bool, len(sorted))
	for _, v := range sorted {
		if reason, bad := checkValue(v, metric, rules); bad {
			drops.Record(&model.RowDataError{
				Source:  source,
				Line:    v.Line,
				Country: v.CountryID,
				Year:    v.Year,
				Reason:  reason,
				Value:   formatValue(v.Value),
			})
			continue
		}
		key := model.RecordKey{CountryID: v.CountryID, Year: v.Year}
		if seen[key] {
			drops.Record(&model.RowDataError{Source: source, Line: v.Line, Country: v.CountryID, Year: v.Year, Reason: model.DropDuplicateKey, Value: formatValue(v.Value)})
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out, drops
}

func checkValue(v model.LongValue, metric model.Metric, rules model.ValidationRules) (model.DropReason, bool) {
	switch {
	case v.Year < rules.MinYear || v.Year > rules.MaxYear:
		return model.DropYearOutOfRange, true
	case math.IsNaN(v.Value) || math.IsInf(v.Value, 0):
		return model.DropNonNumeric, true
	case v.Value < 0:
		return model.DropNegativeValue, true
	case metric == model.MetricPopulation && (v.Value != math.Trunc(v.Value) || v.Value >= math.MaxInt64):
		return model.DropNonIntegral, true
	}
	return "", false
}
