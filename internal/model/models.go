package model

import (
	"fmt"
	"strconv"
)

// Metric names one of the two raw measures joined into the fact table
type Metric string

const (
	MetricPopulation Metric = "population"
	MetricGDP        Metric = "gdp"
)

// ParseMetric accepts the metric names used on the command line and in query strings
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricPopulation, MetricGDP:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q (want population or gdp)", s)
}

// CountryYearRecord is one row of the fact table. Nil pointers are nulls.
type CountryYearRecord struct {
	CountryID  string   `json:"country_id"`
	Year       int      `json:"year"`
	Population *int64   `json:"population"`
	GDP        *float64 `json:"gdp"`
}

// Key returns the (country_id, year) identity of the record
func (r CountryYearRecord) Key() RecordKey {
	return RecordKey{CountryID: r.CountryID, Year: r.Year}
}

// Value returns the metric value of the record as a float and whether it is present
func (r CountryYearRecord) Value(m Metric) (float64, bool) {
	switch m {
	case MetricPopulation:
		if r.Population == nil {
			return 0, false
		}
		return float64(*r.Population), true
	case MetricGDP:
		if r.GDP == nil {
			return 0, false
		}
		return *r.GDP, true
	}
	return 0, false
}

func (r CountryYearRecord) String() string {
	pop, gdp := "null", "null"
	if r.Population != nil {
		pop = strconv.FormatInt(*r.Population, 10)
	}
	if r.GDP != nil {
		gdp = strconv.FormatFloat(*r.GDP, 'g', -1, 64)
	}
	return fmt.Sprintf("(%s,%d,pop=%s,gdp=%s)", r.CountryID, r.Year, pop, gdp)
}

// RecordKey is the unique key of the fact table
type RecordKey struct {
	CountryID string
	Year      int
}

// Less orders keys by country then year
func (k RecordKey) Less(o RecordKey) bool {
	if k.CountryID != o.CountryID {
		return k.CountryID < o.CountryID
	}
	return k.Year < o.Year
}

// LongValue is a single (country, year, value) cell produced by the reshape step
type LongValue struct {
	CountryID string  `json:"country_id"`
	Year      int     `json:"year"`
	Value     float64 `json:"value"`
	Line      int     `json:"line"` // source line, for diagnostics and first-wins dedupe
}

// Input layouts accepted by the loader
const (
	LayoutWide = "wide"
	LayoutLong = "long"
)

// RawWideTable holds one metric in wide layout: one row per country, one column per year.
// It only lives for the duration of the reshape.
type RawWideTable struct {
	Source string
	Metric Metric
	Layout string // LayoutWide, or LayoutLong when pivoted; absent cells of a pivoted table are empty
	Years  []int
	Rows   []RawWideRow
}

// RawWideRow is one country row. Cells line up with RawWideTable.Years.
type RawWideRow struct {
	Line  int
	Name  string
	Code  string
	Cells []string
}

// Int64Ptr and Float64Ptr build nullable fields
func Int64Ptr(v int64) *int64 { return &v }

func Float64Ptr(v float64) *float64 { return &v }
