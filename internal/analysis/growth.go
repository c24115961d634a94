package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"go-worldstats/internal/model"
)

// GrowthAndStability scores each country's metric over its longest run of
// consecutive years with positive values (the most recent run wins ties).
// CAGR is (end/start)^(1/years) - 1; volatility is the sample standard
// deviation of the year-over-year growth rates in the run. Runs with fewer
// than two transitions are insufficient.
func GrowthAndStability(records []model.CountryYearRecord, metric model.Metric) []model.GrowthStability {
	bySeries := series(records, metric)
	var out []model.GrowthStability
	for _, id := range countryIDs(records) {
		g := model.GrowthStability{CountryID: id, Metric: metric}
		run := longestPositiveRun(bySeries[id])
		if len(run) > 0 {
			g.StartYear = run[0].year
			g.EndYear = run[len(run)-1].year
			g.Transitions = len(run) - 1
		}
		if g.Transitions < 2 {
			g.CAGR = model.Insufficient("%d year-over-year transitions", g.Transitions)
			g.Volatility = model.Insufficient("%d year-over-year transitions", g.Transitions)
			out = append(out, g)
			continue
		}

		first, last := run[0], run[len(run)-1]
		g.CAGR = model.Of(math.Pow(last.value/first.value, 1/float64(last.year-first.year)) - 1)

		rates := make([]float64, 0, len(run)-1)
		for i := 1; i < len(run); i++ {
			rates = append(rates, run[i].value/run[i-1].value-1)
		}
		g.Volatility = model.Of(stat.StdDev(rates, nil))
		out = append(out, g)
	}
	return out
}

// longestPositiveRun expects points sorted by year
func longestPositiveRun(pts []point) []point {
	var best []point
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if run := pts[start:end]; len(run) >= len(best) {
			best = run
		}
		start = -1
	}
	for i, p := range pts {
		if p.value <= 0 {
			flush(i)
			continue
		}
		if start >= 0 && p.year != pts[i-1].year+1 {
			flush(i)
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(pts))
	return best
}
