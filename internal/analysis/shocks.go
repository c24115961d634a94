package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"go-worldstats/internal/model"
)

// DefaultEventYears are the shock years studied by default
var DefaultEventYears = []int{2008, 2019}

// ShockAnalysis compares GDP at y-1, y and y+1 around each event year.
// Countries missing any of the three years get an insufficient trend.
func ShockAnalysis(records []model.CountryYearRecord, eventYears []int) []model.ShockTrend {
	gdp := make(map[model.RecordKey]float64)
	for _, r := range records {
		if r.GDP != nil {
			gdp[r.Key()] = *r.GDP
		}
	}
	lookup := func(id string, year int) model.Stat {
		if v, ok := gdp[model.RecordKey{CountryID: id, Year: year}]; ok {
			return model.Of(v)
		}
		return model.Insufficient("no gdp for %d", year)
	}

	var out []model.ShockTrend
	for _, id := range countryIDs(records) {
		for _, y := range eventYears {
			t := model.ShockTrend{
				CountryID: id,
				EventYear: y,
				Before:    lookup(id, y-1),
				At:        lookup(id, y),
				After:     lookup(id, y+1),
			}
			if t.Sufficient() {
				t.Decline = relativeChange(t.Before, t.At)
				t.Recovery = relativeChange(t.At, t.After)
			} else {
				t.Decline = model.Insufficient("incomplete window around %d", y)
				t.Recovery = model.Insufficient("incomplete window around %d", y)
			}
			out = append(out, t)
		}
	}
	return out
}

// ShockByGroup averages decline and recovery per classification quadrant and event year.
// Each side is averaged over the countries where that side is valid, so a country
// with a zero GDP before the event still contributes its recovery. Countries with
// neither side valid are counted as excluded.
func ShockByGroup(trends []model.ShockTrend, classifications []model.CountryClassification) []model.GroupShock {
	quadrant := make(map[string]model.Quadrant, len(classifications))
	for _, c := range classifications {
		quadrant[c.CountryID] = c.Quadrant
	}

	type key struct {
		q    model.Quadrant
		year int
	}
	type acc struct {
		declines, recoveries []float64
		countries, excluded  int
	}
	groups := make(map[key]*acc)
	for _, t := range trends {
		q, ok := quadrant[t.CountryID]
		if !ok {
			q = model.QuadrantUnclassified
		}
		k := key{q, t.EventYear}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		if !t.Decline.Valid && !t.Recovery.Valid {
			a.excluded++
			continue
		}
		a.countries++
		if t.Decline.Valid {
			a.declines = append(a.declines, t.Decline.Value)
		}
		if t.Recovery.Valid {
			a.recoveries = append(a.recoveries, t.Recovery.Value)
		}
	}

	out := make([]model.GroupShock, 0, len(groups))
	for k, a := range groups {
		out = append(out, model.GroupShock{
			Quadrant:          k.q,
			EventYear:         k.year,
			Countries:         a.countries,
			Excluded:          a.excluded,
			DeclineCountries:  len(a.declines),
			RecoveryCountries: len(a.recoveries),
			Decline:           groupMean(a.declines, "decline"),
			Recovery:          groupMean(a.recoveries, "recovery"),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventYear != out[j].EventYear {
			return out[i].EventYear < out[j].EventYear
		}
		return out[i].Quadrant < out[j].Quadrant
	})
	return out
}

func groupMean(values []float64, side string) model.Stat {
	if len(values) == 0 {
		return model.Insufficient("no country with a valid %s", side)
	}
	return model.Of(stat.Mean(values, nil))
}
