package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"go-worldstats/internal/model"
)

func pop(id string, year int, v int64) model.CountryYearRecord {
	return model.CountryYearRecord{CountryID: id, Year: year, Population: model.Int64Ptr(v)}
}

func gdp(id string, year int, v float64) model.CountryYearRecord {
	return model.CountryYearRecord{CountryID: id, Year: year, GDP: model.Float64Ptr(v)}
}

func both(id string, year int, p int64, g float64) model.CountryYearRecord {
	return model.CountryYearRecord{CountryID: id, Year: year, Population: model.Int64Ptr(p), GDP: model.Float64Ptr(g)}
}

func byCountry(cls []model.CountryClassification) map[string]model.CountryClassification {
	out := make(map[string]model.CountryClassification)
	for _, c := range cls {
		out[c.CountryID] = c
	}
	return out
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name  string
		in    []float64
		want  float64
		valid bool
	}{
		{"empty", nil, 0, false},
		{"odd", []float64{3, 1, 2}, 2, true},
		{"even", []float64{10, 20, 20, 40}, 20, true},
		{"even average", []float64{1, 2, 3, 4}, 2.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Median(tt.in)
			require.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				require.Equal(t, tt.want, got.Value)
			}
		})
	}
}

func TestMedianBucketsTiesAreHigh(t *testing.T) {
	records := []model.CountryYearRecord{
		both("AAA", 2020, 10, 1),
		both("BBB", 2020, 20, 2),
		both("CCC", 2020, 20, 3),
		both("DDD", 2020, 40, 4),
	}
	cls := byCountry(ComputeMedianBuckets(records))
	require.Equal(t, model.BucketLow, cls["AAA"].PopulationBucket)
	require.Equal(t, model.BucketHigh, cls["BBB"].PopulationBucket)
	require.Equal(t, model.BucketHigh, cls["CCC"].PopulationBucket)
	require.Equal(t, model.BucketHigh, cls["DDD"].PopulationBucket)

	// gdp median is 2.5
	require.Equal(t, model.BucketLow, cls["BBB"].GDPBucket)
	require.Equal(t, model.BucketHigh, cls["CCC"].GDPBucket)
	require.Equal(t, model.QuadrantHighPopLowGDP, cls["BBB"].Quadrant)
	require.Equal(t, model.QuadrantLowPopLowGDP, cls["AAA"].Quadrant)
	require.Equal(t, model.QuadrantHighPopHighGDP, cls["DDD"].Quadrant)
}

func TestMedianBucketsInsufficientAndRepresentativeYear(t *testing.T) {
	records := []model.CountryYearRecord{
		pop("AAA", 1990, 1000), // superseded by the 2010 value
		pop("AAA", 2010, 5),
		gdp("AAA", 2010, 100),
		both("BBB", 2010, 50, 10),
		both("CCC", 2005, 60, 1),
		pop("NOG", 2010, 70), // no gdp at all
	}
	cls := byCountry(ComputeMedianBuckets(records))
	require.Len(t, cls, 4)

	// pop reps: 5, 50, 60, 70 -> median 55
	require.Equal(t, model.BucketLow, cls["AAA"].PopulationBucket)
	require.Equal(t, 2010, cls["AAA"].PopulationYear)
	require.Equal(t, 5.0, cls["AAA"].RepresentativePop.Value)
	require.Equal(t, model.BucketHigh, cls["CCC"].PopulationBucket)

	// gdp reps: 100, 10, 1 -> median 10; NOG does not count
	require.Equal(t, model.BucketInsufficient, cls["NOG"].GDPBucket)
	require.False(t, cls["NOG"].RepresentativeGDP.Valid)
	require.Equal(t, model.QuadrantUnclassified, cls["NOG"].Quadrant)
	require.Equal(t, model.BucketHigh, cls["BBB"].GDPBucket)
	require.Equal(t, model.BucketLow, cls["CCC"].GDPBucket)

	counts := QuadrantCounts(ComputeMedianBuckets(records))
	require.Equal(t, 1, counts[model.QuadrantUnclassified])
}

func TestComparePeriods(t *testing.T) {
	var records []model.CountryYearRecord
	records = append(records, gdp("AAA", 1998, 10), gdp("AAA", 1999, 20))
	for y, v := range map[int]float64{2000: 10, 2001: 20, 2002: 30, 2003: 40, 2004: 50} {
		records = append(records, gdp("AAA", y, v))
	}
	for _, y := range []int{1995, 1996, 1997, 2001, 2002, 2003} {
		records = append(records, pop("AAA", y, int64(y-1990)))
	}

	got := ComparePeriods(records, DefaultCutoff, DefaultMinYears)
	require.Len(t, got, 2)

	var popCmp, gdpCmp model.PeriodComparison
	for _, c := range got {
		if c.Metric == model.MetricGDP {
			gdpCmp = c
		} else {
			popCmp = c
		}
	}

	require.False(t, gdpCmp.Pre.Valid)
	require.Equal(t, 2, gdpCmp.PreYears)
	require.True(t, gdpCmp.Post.Valid)
	require.Equal(t, 30.0, gdpCmp.Post.Value)
	require.Equal(t, 5, gdpCmp.PostYears)
	require.False(t, gdpCmp.Change.Valid)

	require.Equal(t, 6.0, popCmp.Pre.Value)
	require.Equal(t, 12.0, popCmp.Post.Value)
	require.InDelta(t, 1.0, popCmp.Change.Value, 1e-12)

	aggs := gdpCmp.Aggregates()
	require.Equal(t, model.PeriodPre2000, aggs[0].Period)
	require.Equal(t, model.PeriodPost2000, aggs[1].Period)
}

func TestShockAnalysis(t *testing.T) {
	records := []model.CountryYearRecord{
		gdp("AAA", 2007, 100), gdp("AAA", 2008, 90), gdp("AAA", 2009, 99),
		gdp("BBB", 2007, 100), gdp("BBB", 2009, 120), // 2008 missing
		gdp("AAA", 2018, 100), gdp("AAA", 2019, 110), gdp("AAA", 2020, 88),
	}
	trends := ShockAnalysis(records, DefaultEventYears)
	require.Len(t, trends, 4)

	aaa2008 := trends[0]
	require.Equal(t, "AAA", aaa2008.CountryID)
	require.Equal(t, 2008, aaa2008.EventYear)
	require.True(t, aaa2008.Sufficient())
	require.InDelta(t, -0.1, aaa2008.Decline.Value, 1e-12)
	require.InDelta(t, 0.1, aaa2008.Recovery.Value, 1e-12)
	require.Equal(t, model.PeriodYear2008, aaa2008.Aggregate().Period)

	bbb2008 := trends[2]
	require.Equal(t, "BBB", bbb2008.CountryID)
	require.False(t, bbb2008.Sufficient())
	require.False(t, bbb2008.Decline.Valid)
	require.False(t, bbb2008.Recovery.Valid)
	require.Equal(t, 0, bbb2008.Aggregate().Years)

	cls := []model.CountryClassification{
		{CountryID: "AAA", Quadrant: model.QuadrantHighPopHighGDP},
		{CountryID: "BBB", Quadrant: model.QuadrantHighPopHighGDP},
	}
	groups := ShockByGroup(trends, cls)
	require.Len(t, groups, 2)
	require.Equal(t, 2008, groups[0].EventYear)
	require.Equal(t, 1, groups[0].Countries)
	require.Equal(t, 1, groups[0].Excluded)
	require.InDelta(t, -0.1, groups[0].Decline.Value, 1e-12)
	require.Equal(t, 2019, groups[1].EventYear)
	require.Equal(t, 1, groups[1].Excluded)
	require.InDelta(t, -0.2, groups[1].Recovery.Value, 1e-12)
}

func TestShockByGroupAveragesEachSide(t *testing.T) {
	records := []model.CountryYearRecord{
		gdp("AAA", 2007, 100), gdp("AAA", 2008, 90), gdp("AAA", 2009, 99),
		// zero before the event leaves only the recovery side
		gdp("ZZZ", 2007, 0), gdp("ZZZ", 2008, 50), gdp("ZZZ", 2009, 65),
		gdp("BBB", 2007, 100),
	}
	trends := ShockAnalysis(records, []int{2008})
	require.Len(t, trends, 3)
	zzz := trends[2]
	require.Equal(t, "ZZZ", zzz.CountryID)
	require.False(t, zzz.Decline.Valid)
	require.True(t, zzz.Recovery.Valid)

	groups := ShockByGroup(trends, nil)
	require.Len(t, groups, 1)
	g := groups[0]
	require.Equal(t, model.QuadrantUnclassified, g.Quadrant)
	require.Equal(t, 2, g.Countries)
	require.Equal(t, 1, g.Excluded)
	require.Equal(t, 1, g.DeclineCountries)
	require.Equal(t, 2, g.RecoveryCountries)
	require.InDelta(t, -0.1, g.Decline.Value, 1e-12)
	require.InDelta(t, (0.1+0.3)/2, g.Recovery.Value, 1e-12)
}

func TestGrowthAndStability(t *testing.T) {
	records := []model.CountryYearRecord{
		// run 2000-2002, gap, run 2010-2012: equal length, the later one wins
		gdp("AAA", 2000, 1), gdp("AAA", 2001, 2), gdp("AAA", 2002, 4),
		gdp("AAA", 2010, 100), gdp("AAA", 2011, 110), gdp("AAA", 2012, 121),
		// zero breaks the run, leaving one transition
		gdp("BBB", 2000, 10), gdp("BBB", 2001, 0), gdp("BBB", 2002, 10), gdp("BBB", 2003, 20),
		pop("CCC", 2000, 5),
	}
	got := GrowthAndStability(records, model.MetricGDP)
	require.Len(t, got, 3)

	aaa := got[0]
	require.Equal(t, 2010, aaa.StartYear)
	require.Equal(t, 2012, aaa.EndYear)
	require.Equal(t, 2, aaa.Transitions)
	require.InDelta(t, 0.1, aaa.CAGR.Value, 1e-12)
	require.InDelta(t, 0, aaa.Volatility.Value, 1e-12)

	bbb := got[1]
	require.Equal(t, 1, bbb.Transitions)
	require.False(t, bbb.CAGR.Valid)
	require.False(t, bbb.Volatility.Valid)

	ccc := got[2]
	require.Equal(t, 0, ccc.Transitions)
	require.False(t, ccc.CAGR.Valid)
}

func TestGrowthVolatilityIsSampleStdDev(t *testing.T) {
	records := []model.CountryYearRecord{
		gdp("AAA", 2000, 100), gdp("AAA", 2001, 110), gdp("AAA", 2002, 99), gdp("AAA", 2003, 99),
	}
	got := GrowthAndStability(records, model.MetricGDP)[0]
	rates := []float64{0.1, -0.1, 0}
	mean := 0.0
	var ss float64
	for _, r := range rates {
		ss += (r - mean) * (r - mean)
	}
	require.InDelta(t, math.Sqrt(ss/2), got.Volatility.Value, 1e-12)
	require.InDelta(t, math.Pow(0.99, 1.0/3)-1, got.CAGR.Value, 1e-12)
}

func TestDescribe(t *testing.T) {
	records := []model.CountryYearRecord{
		gdp("AAA", 2000, 1), gdp("BBB", 2000, 2), gdp("CCC", 2000, 3), gdp("DDD", 2000, 4), pop("EEE", 2000, 9),
	}
	s := Describe(records, model.MetricGDP)
	require.Equal(t, 4, s.Count)
	require.Equal(t, 2.5, s.Mean.Value)
	require.Equal(t, 2.5, s.Median.Value)
	require.Equal(t, 1.0, s.Min.Value)
	require.Equal(t, 4.0, s.Max.Value)
	require.InDelta(t, math.Sqrt(5.0/3), s.StdDev.Value, 1e-12)

	empty := Describe(nil, model.MetricPopulation)
	require.Equal(t, 0, empty.Count)
	require.False(t, empty.Mean.Valid)
}

func TestFilters(t *testing.T) {
	records := []model.CountryYearRecord{gdp("AAA", 1999, 1), gdp("AAA", 2001, 1), gdp("BBB", 2001, 1)}
	require.Len(t, FilterYears(records, 2000, 2010), 2)
	require.Len(t, FilterCountries(records, []string{"BBB"}), 1)
	require.Len(t, FilterCountries(records, nil), 3)
}

func TestBuildReportDefaults(t *testing.T) {
	records := []model.CountryYearRecord{
		both("AAA", 2007, 1, 100), both("AAA", 2008, 2, 90), both("AAA", 2009, 3, 99),
		both("BBB", 2008, 5, 10),
	}
	r := BuildReport("v1", records, Params{})
	require.Equal(t, DefaultParams(), r.Params)
	require.Len(t, r.Classifications, 2)
	require.Len(t, r.Periods, 4)
	require.Len(t, r.Shocks, 4)
	require.Len(t, r.Summaries, 2)
	require.Equal(t, 4, r.Summaries[1].Count)
	require.Equal(t, 2, r.QuadrantCounts[model.QuadrantHighPopHighGDP]+r.QuadrantCounts[model.QuadrantLowPopLowGDP]+
		r.QuadrantCounts[model.QuadrantHighPopLowGDP]+r.QuadrantCounts[model.QuadrantLowPopHighGDP])
}
