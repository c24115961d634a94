package pipeline

import (
	"sort"
	"strconv"

	"go-worldstats/internal/model"
)

// JoinStats describes the completeness of a join
type JoinStats struct {
	Records        int `json:"records"`
	Complete       int `json:"complete"`
	PopulationOnly int `json:"population_only"`
	GDPOnly        int `json:"gdp_only"`
	Countries      int `json:"countries"`
	Years          int `json:"years"`
}

// Partial is the number of records missing one of the two metrics
func (s JoinStats) Partial() int {
	return s.PopulationOnly + s.GDPOnly
}

// Join full-outer-joins validated population and GDP values on (country_id, year).
// A key present on one side only yields a record with the other metric nil.
// Both inputs must already be free of duplicate keys; the output is sorted.
func Join(population, gdp []model.LongValue) ([]model.CountryYearRecord, JoinStats) {
	byKey := make(map[model.RecordKey]*model.CountryYearRecord, len(population)+len(gdp))
	get := func(id string, year int) *model.CountryYearRecord {
		key := model.RecordKey{CountryID: id, Year: year}
		rec, ok := byKey[key]
		if !ok {
			rec = &model.CountryYearRecord{CountryID: id, Year: year}
			byKey[key] = rec
		}
		return rec
	}

	for _, v := range population {
		get(v.CountryID, v.Year).Population = model.Int64Ptr(int64(v.Value))
	}
	for _, v := range gdp {
		get(v.CountryID, v.Year).GDP = model.Float64Ptr(v.Value)
	}

	records := make([]model.CountryYearRecord, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, *rec)
	}
	SortRecords(records)

	var stats JoinStats
	countries := make(map[string]bool)
	years := make(map[int]bool)
	for _, rec := range records {
		stats.Records++
		switch {
		case rec.Population != nil && rec.GDP != nil:
			stats.Complete++
		case rec.Population != nil:
			stats.PopulationOnly++
		default:
			stats.GDPOnly++
		}
		countries[rec.CountryID] = true
		years[rec.Year] = true
	}
	stats.Countries = len(countries)
	stats.Years = len(years)
	return records, stats
}

// SortRecords orders fact table records by (country_id, year)
func SortRecords(records []model.CountryYearRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().Less(records[j].Key())
	})
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
