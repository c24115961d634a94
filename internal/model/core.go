package model

import "time"

// Workers defines number of workers per stage
type Workers struct {
	Reshape   int `json:"reshape"`
	Partition int `json:"partition"`
}

// ValidationRules is the statically declared schema every long value must satisfy
type ValidationRules struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}

// DefaultValidationRules accepts 1900 through the current calendar year
func DefaultValidationRules() ValidationRules {
	return ValidationRules{MinYear: 1900, MaxYear: time.Now().Year()}
}

// RunSpec is the explicit execution context of one cleaning run.
// It is created per run and discarded when the run ends.
type RunSpec struct {
	PopulationPath string          `json:"population_path"`
	GDPPath        string          `json:"gdp_path"`
	OutputPath     string          `json:"output_path"`
	CountriesFile  string          `json:"countries_file,omitempty"`
	RetainVersions int             `json:"retain_versions"`
	MaxRowsPerFile int             `json:"max_rows_per_file"`
	Compression    string          `json:"compression"`
	Workers        Workers         `json:"workers"`
	Validation     ValidationRules `json:"validation"`
	Timeout        string          `json:"timeout"` // e.g., "5m"
}

// RetryConfig defines retry behavior for downloads
type RetryConfig struct {
	MaxAttempts       int           `json:"max_attempts"`
	InitialDelay      time.Duration `json:"initial_delay"`
	MaxDelay          time.Duration `json:"max_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
	Jitter            bool          `json:"jitter"`
}
