package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Stat is a derived statistic that is either a value or an explicit
// insufficient-data marker. The zero Stat is insufficient.
type Stat struct {
	Value  float64
	Valid  bool
	Reason string
}

// Of returns a valid Stat. Non-finite inputs are turned into an insufficient marker.
func Of(v float64) Stat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Insufficient("non-finite result")
	}
	return Stat{Value: v, Valid: true}
}

// Insufficient returns the insufficient-data marker with a reason
func Insufficient(format string, args ...interface{}) Stat {
	return Stat{Reason: fmt.Sprintf(format, args...)}
}

func (s Stat) String() string {
	if !s.Valid {
		return "insufficient_data"
	}
	return fmt.Sprintf("%g", s.Value)
}

func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return json.Marshal(struct {
			InsufficientData bool   `json:"insufficient_data"`
			Reason           string `json:"reason,omitempty"`
		}{true, s.Reason})
	}
	return json.Marshal(struct {
		Value float64 `json:"value"`
	}{s.Value})
}

func (s *Stat) UnmarshalJSON(b []byte) error {
	var raw struct {
		Value            *float64 `json:"value"`
		InsufficientData bool     `json:"insufficient_data"`
		Reason           string   `json:"reason"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Value != nil && !raw.InsufficientData {
		*s = Stat{Value: *raw.Value, Valid: true}
		return nil
	}
	*s = Stat{Reason: raw.Reason}
	return nil
}

// Bucket is a HIGH/LOW median-split classification
type Bucket string

const (
	BucketHigh         Bucket = "HIGH"
	BucketLow          Bucket = "LOW"
	BucketInsufficient Bucket = "INSUFFICIENT_DATA"
)

// Quadrant combines the population and GDP buckets
type Quadrant string

const (
	QuadrantHighPopHighGDP Quadrant = "HIGH_POP_HIGH_GDP"
	QuadrantHighPopLowGDP  Quadrant = "HIGH_POP_LOW_GDP"
	QuadrantLowPopHighGDP  Quadrant = "LOW_POP_HIGH_GDP"
	QuadrantLowPopLowGDP   Quadrant = "LOW_POP_LOW_GDP"
	QuadrantUnclassified   Quadrant = "UNCLASSIFIED"
)

// QuadrantOf maps two buckets to their quadrant
func QuadrantOf(pop, gdp Bucket) Quadrant {
	switch {
	case pop == BucketHigh && gdp == BucketHigh:
		return QuadrantHighPopHighGDP
	case pop == BucketHigh && gdp == BucketLow:
		return QuadrantHighPopLowGDP
	case pop == BucketLow && gdp == BucketHigh:
		return QuadrantLowPopHighGDP
	case pop == BucketLow && gdp == BucketLow:
		return QuadrantLowPopLowGDP
	}
	return QuadrantUnclassified
}

// CountryClassification is the median-bucket assignment of one country
type CountryClassification struct {
	CountryID         string   `json:"country_id"`
	PopulationBucket  Bucket   `json:"population_bucket"`
	GDPBucket         Bucket   `json:"gdp_bucket"`
	Quadrant          Quadrant `json:"quadrant"`
	PopulationYear    int      `json:"population_year,omitempty"`
	GDPYear           int      `json:"gdp_year,omitempty"`
	RepresentativePop Stat     `json:"representative_population"`
	RepresentativeGDP Stat     `json:"representative_gdp"`
}

// PeriodLabel identifies the slice of years an aggregate covers
type PeriodLabel string

const (
	PeriodPre2000  PeriodLabel = "PRE_2000"
	PeriodPost2000 PeriodLabel = "POST_2000"
	PeriodYear2008 PeriodLabel = "YEAR_2008"
	PeriodYear2019 PeriodLabel = "YEAR_2019"
)

// PreLabel, PostLabel and YearLabel build labels for arbitrary cutoffs and event years
func PreLabel(cutoff int) PeriodLabel  { return PeriodLabel(fmt.Sprintf("PRE_%d", cutoff)) }
func PostLabel(cutoff int) PeriodLabel { return PeriodLabel(fmt.Sprintf("POST_%d", cutoff)) }
func YearLabel(year int) PeriodLabel   { return PeriodLabel(fmt.Sprintf("YEAR_%d", year)) }

// PeriodAggregate is one value of one metric for one country over one period
type PeriodAggregate struct {
	CountryID string      `json:"country_id"`
	Period    PeriodLabel `json:"period"`
	Metric    Metric      `json:"metric"`
	Value     Stat        `json:"value"`
	Years     int         `json:"years"` // number of non-null years that went into Value
}

// PeriodComparison holds both sides of a cutoff comparison for one country and metric
type PeriodComparison struct {
	CountryID string `json:"country_id"`
	Metric    Metric `json:"metric"`
	Cutoff    int    `json:"cutoff"`
	Pre       Stat   `json:"pre"`
	Post      Stat   `json:"post"`
	PreYears  int    `json:"pre_years"`
	PostYears int    `json:"post_years"`
	Change    Stat   `json:"change"` // post/pre - 1
}

// Aggregates flattens the comparison into its two PeriodAggregate rows
func (c PeriodComparison) Aggregates() []PeriodAggregate {
	return []PeriodAggregate{
		{CountryID: c.CountryID, Period: PreLabel(c.Cutoff), Metric: c.Metric, Value: c.Pre, Years: c.PreYears},
		{CountryID: c.CountryID, Period: PostLabel(c.Cutoff), Metric: c.Metric, Value: c.Post, Years: c.PostYears},
	}
}

// ShockTrend is the GDP path of one country around an event year
type ShockTrend struct {
	CountryID string `json:"country_id"`
	EventYear int    `json:"event_year"`
	Before    Stat   `json:"before"`
	At        Stat   `json:"at"`
	After     Stat   `json:"after"`
	Decline   Stat   `json:"decline"`  // at/before - 1
	Recovery  Stat   `json:"recovery"` // after/at - 1
}

// Sufficient reports whether all three years were present
func (s ShockTrend) Sufficient() bool {
	return s.Before.Valid && s.At.Valid && s.After.Valid
}

// Aggregate returns the event-year GDP as a PeriodAggregate
func (s ShockTrend) Aggregate() PeriodAggregate {
	years := 0
	if s.At.Valid {
		years = 1
	}
	return PeriodAggregate{CountryID: s.CountryID, Period: YearLabel(s.EventYear), Metric: MetricGDP, Value: s.At, Years: years}
}

// GroupShock is the mean shock of the countries in one quadrant. Decline and
// Recovery are averaged independently over DeclineCountries and RecoveryCountries.
type GroupShock struct {
	Quadrant          Quadrant `json:"quadrant"`
	EventYear         int      `json:"event_year"`
	Countries         int      `json:"countries"`
	Excluded          int      `json:"excluded"`
	DeclineCountries  int      `json:"decline_countries"`
	RecoveryCountries int      `json:"recovery_countries"`
	Decline           Stat     `json:"decline"`
	Recovery          Stat     `json:"recovery"`
}

// GrowthStability scores one country's growth over its longest continuous span
type GrowthStability struct {
	CountryID   string `json:"country_id"`
	Metric      Metric `json:"metric"`
	StartYear   int    `json:"start_year,omitempty"`
	EndYear     int    `json:"end_year,omitempty"`
	Transitions int    `json:"transitions"`
	CAGR        Stat   `json:"cagr"`
	Volatility  Stat   `json:"volatility"`
}

// Summary is a descriptive-statistics row for one metric
type Summary struct {
	Metric Metric `json:"metric"`
	Count  int    `json:"count"`
	Mean   Stat   `json:"mean"`
	StdDev Stat   `json:"std_dev"`
	Min    Stat   `json:"min"`
	Median Stat   `json:"median"`
	Max    Stat   `json:"max"`
}
