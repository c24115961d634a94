package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses duration string like "5m"
func ParseDuration(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// CellKind classifies a raw table cell
type CellKind int

const (
	CellNumber CellKind = iota
	CellMissing
	CellNonNumeric
)

// missingTokens are the spellings of "no observation" seen in the World Bank exports
var missingTokens = map[string]bool{
	"":     true,
	"..":   true,
	"-":    true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// ParseCell parses a numeric cell. Missing and unparseable cells are reported,
// never turned into zero.
func ParseCell(s string) (float64, CellKind) {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToLower(s)] {
		return 0, CellMissing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, CellNonNumeric
	}
	return f, CellNumber
}

// ParseYear reports whether a header is a four digit year
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 0 {
		return 0, false
	}
	return y, true
}

// ParseYearList parses "2008,2019" into years, skipping blanks
func ParseYearList(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, nil
}
