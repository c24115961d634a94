package model

import (
	"sort"
	"sync"
	"time"
)

// DropReason classifies why a row or cell did not reach the fact table
type DropReason string

const (
	DropUnmappedCountry DropReason = "unmapped_country"
	DropMissingValue    DropReason = "missing_value"
	DropNonNumeric      DropReason = "non_numeric"
	DropNegativeValue   DropReason = "negative_value"
	DropNonIntegral     DropReason = "non_integral"
	DropYearOutOfRange  DropReason = "year_out_of_range"
	DropDuplicateKey    DropReason = "duplicate_key"
	DropMalformedRow    DropReason = "malformed_row"
)

// maxSamples bounds how many individual drops a DropCounts keeps for logging
const maxSamples = 20

// DropCounts tallies drops per reason. Safe for concurrent use.
type DropCounts struct {
	mu       sync.Mutex
	counts   map[DropReason]int
	unmapped map[string]int
	samples  []*RowDataError
}

func NewDropCounts() *DropCounts {
	return &DropCounts{
		counts:   make(map[DropReason]int),
		unmapped: make(map[string]int),
	}
}

// Record counts one drop and keeps it as a sample while there is room
func (d *DropCounts) Record(e *RowDataError) {
	d.mu.Lock()
	d.counts[e.Reason]++
	if e.Reason == DropUnmappedCountry {
		d.unmapped[e.Country]++
	}
	if len(d.samples) < maxSamples {
		d.samples = append(d.samples, e)
	}
	d.mu.Unlock()
}

// Samples returns the first recorded drops
func (d *DropCounts) Samples() []*RowDataError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*RowDataError(nil), d.samples...)
}

// Merge folds another counter into d
func (d *DropCounts) Merge(o *DropCounts) {
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	for r, n := range o.counts {
		d.counts[r] += n
	}
	for name, n := range o.unmapped {
		d.unmapped[name] += n
	}
	for _, e := range o.samples {
		if len(d.samples) >= maxSamples {
			break
		}
		d.samples = append(d.samples, e)
	}
}

// Get returns the count for a reason
func (d *DropCounts) Get(reason DropReason) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[reason]
}

// Total returns the sum over all reasons
func (d *DropCounts) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}

// Snapshot copies the counts into a plain map
func (d *DropCounts) Snapshot() map[DropReason]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[DropReason]int, len(d.counts))
	for r, n := range d.counts {
		out[r] = n
	}
	return out
}

// UnmappedNames returns the distinct unresolved country names, sorted
func (d *DropCounts) UnmappedNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.unmapped))
	for name := range d.unmapped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SourceSummary reports what happened to one raw input
type SourceSummary struct {
	Source        string             `json:"source"`
	Metric        Metric             `json:"metric"`
	Layout        string             `json:"layout"`
	RowsRead      int                `json:"rows_read"`
	YearColumns   int                `json:"year_columns"`
	ValuesEmitted int                `json:"values_emitted"`
	Drops         map[DropReason]int `json:"drops"`
	UnmappedNames []string           `json:"unmapped_names,omitempty"`
}

// DroppedTotal sums the per-reason drops of the source
func (s SourceSummary) DroppedTotal() int {
	total := 0
	for _, n := range s.Drops {
		total += n
	}
	return total
}

// RunSummary is returned by a successful cleaning run
type RunSummary struct {
	RunID          string          `json:"run_id"`
	Version        string          `json:"version"`
	OutputPath     string          `json:"output_path"`
	Sources        []SourceSummary `json:"sources"`
	RecordsWritten int             `json:"records_written"`
	PartialRecords int             `json:"partial_records"`
	Partitions     int             `json:"partitions"`
	Countries      int             `json:"countries"`
	StartedAt      time.Time       `json:"started_at"`
	Duration       time.Duration   `json:"duration"`
}
