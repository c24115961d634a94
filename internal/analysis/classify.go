// Package analysis holds the pure analytical queries over the fact table.
// Nothing here fills gaps: whatever cannot be computed from present values is
// reported as an insufficient model.Stat.
package analysis

import (
	"sort"

	"go-worldstats/internal/model"
)

// Representative is the value a country is ranked by for one metric: its most
// recent non-null observation.
type Representative struct {
	Year  int
	Value float64
}

// Representatives picks the latest non-null value of metric for every country
func Representatives(records []model.CountryYearRecord, metric model.Metric) map[string]Representative {
	out := make(map[string]Representative)
	for _, r := range records {
		v, ok := r.Value(metric)
		if !ok {
			continue
		}
		if cur, seen := out[r.CountryID]; !seen || r.Year > cur.Year {
			out[r.CountryID] = Representative{Year: r.Year, Value: v}
		}
	}
	return out
}

// Median of values; the mean of the two middle values for even counts
func Median(values []float64) model.Stat {
	if len(values) == 0 {
		return model.Insufficient("no values")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return model.Of(sorted[mid])
	}
	return model.Of((sorted[mid-1] + sorted[mid]) / 2)
}

// ComputeMedianBuckets classifies every country in records as HIGH or LOW
// against the cross-country median of its representative population and GDP.
// Values equal to the median are HIGH. A country with no value for a metric is
// INSUFFICIENT_DATA for that metric and does not take part in its median.
func ComputeMedianBuckets(records []model.CountryYearRecord) []model.CountryClassification {
	pops := Representatives(records, model.MetricPopulation)
	gdps := Representatives(records, model.MetricGDP)
	popMedian := Median(repValues(pops))
	gdpMedian := Median(repValues(gdps))

	ids := countryIDs(records)
	out := make([]model.CountryClassification, 0, len(ids))
	for _, id := range ids {
		c := model.CountryClassification{
			CountryID:         id,
			PopulationBucket:  model.BucketInsufficient,
			GDPBucket:         model.BucketInsufficient,
			RepresentativePop: model.Insufficient("no population data"),
			RepresentativeGDP: model.Insufficient("no gdp data"),
		}
		if rep, ok := pops[id]; ok {
			c.PopulationBucket = bucket(rep.Value, popMedian)
			c.PopulationYear = rep.Year
			c.RepresentativePop = model.Of(rep.Value)
		}
		if rep, ok := gdps[id]; ok {
			c.GDPBucket = bucket(rep.Value, gdpMedian)
			c.GDPYear = rep.Year
			c.RepresentativeGDP = model.Of(rep.Value)
		}
		c.Quadrant = model.QuadrantOf(c.PopulationBucket, c.GDPBucket)
		out = append(out, c)
	}
	return out
}

func bucket(v float64, median model.Stat) model.Bucket {
	if !median.Valid {
		return model.BucketInsufficient
	}
	if v >= median.Value {
		return model.BucketHigh
	}
	return model.BucketLow
}

// QuadrantCounts tallies classifications per quadrant
func QuadrantCounts(classifications []model.CountryClassification) map[model.Quadrant]int {
	counts := make(map[model.Quadrant]int)
	for _, c := range classifications {
		counts[c.Quadrant]++
	}
	return counts
}

func repValues(reps map[string]Representative) []float64 {
	vals := make([]float64, 0, len(reps))
	for _, r := range reps {
		vals = append(vals, r.Value)
	}
	return vals
}

// countryIDs returns the distinct countries of records, sorted
func countryIDs(records []model.CountryYearRecord) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range records {
		if !seen[r.CountryID] {
			seen[r.CountryID] = true
			ids = append(ids, r.CountryID)
		}
	}
	sort.Strings(ids)
	return ids
}

// series returns the non-null values of metric per country, sorted by year
func series(records []model.CountryYearRecord, metric model.Metric) map[string][]point {
	out := make(map[string][]point)
	for _, r := range records {
		if v, ok := r.Value(metric); ok {
			out[r.CountryID] = append(out[r.CountryID], point{year: r.Year, value: v})
		}
	}
	for _, pts := range out {
		sort.Slice(pts, func(i, j int) bool { return pts[i].year < pts[j].year })
	}
	return out
}

type point struct {
	year  int
	value float64
}
