// Package countries maps free-form country names and codes to ISO 3166-1 alpha-3 identifiers
package countries

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var defaultTable []byte

// Country is one entry of the lookup table
type Country struct {
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Table is the YAML document shape
type Table struct {
	Countries []Country `yaml:"countries"`
}

// Resolver is an immutable lookup built from a Table
type Resolver struct {
	byCode  map[string]Country
	byName  map[string]string
	ordered []string
}

var (
	codePattern = regexp.MustCompile(`^[A-Z]{3}$`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Default returns the resolver built from the embedded table
func Default() (*Resolver, error) {
	return Parse(defaultTable)
}

// Load reads a lookup table from path, falling back to the embedded table when path is empty
func Load(path string) (*Resolver, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read country table: %w", err)
	}
	return Parse(data)
}

// Parse builds a resolver from YAML. Codes and normalized names must be unique.
func Parse(data []byte) (*Resolver, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse country table YAML: %w", err)
	}
	if len(table.Countries) == 0 {
		return nil, fmt.Errorf("country table is empty")
	}

	r := &Resolver{
		byCode: make(map[string]Country, len(table.Countries)),
		byName: make(map[string]string, len(table.Countries)*2),
	}
	for _, c := range table.Countries {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if !codePattern.MatchString(code) {
			return nil, fmt.Errorf("invalid country code %q", c.Code)
		}
		if _, dup := r.byCode[code]; dup {
			return nil, fmt.Errorf("duplicate country code %s", code)
		}
		c.Code = code
		r.byCode[code] = c
		r.ordered = append(r.ordered, code)

		for _, name := range append([]string{c.Name}, c.Aliases...) {
			key := NormalizeName(name)
			if key == "" {
				return nil, fmt.Errorf("empty name for country %s", code)
			}
			if other, dup := r.byName[key]; dup && other != code {
				return nil, fmt.Errorf("name %q maps to both %s and %s", name, other, code)
			}
			r.byName[key] = code
		}
	}
	sort.Strings(r.ordered)
	return r, nil
}

// Resolve returns the canonical identifier for a raw row. The code column wins
// when it holds a known identifier; otherwise the name is looked up.
func (r *Resolver) Resolve(name, code string) (string, bool) {
	if c := strings.ToUpper(strings.TrimSpace(code)); c != "" {
		if _, ok := r.byCode[c]; ok {
			return c, true
		}
	}
	if id, ok := r.byName[NormalizeName(name)]; ok {
		return id, true
	}
	// some files put the code in the name column
	if c := strings.ToUpper(strings.TrimSpace(name)); codePattern.MatchString(c) {
		if _, ok := r.byCode[c]; ok {
			return c, true
		}
	}
	return "", false
}

// Name returns the canonical display name of an identifier
func (r *Resolver) Name(id string) string {
	return r.byCode[id].Name
}

// Codes lists all identifiers in sorted order
func (r *Resolver) Codes() []string {
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len is the number of countries in the table
func (r *Resolver) Len() int { return len(r.byCode) }

// NormalizeName lower-cases, folds "&" to "and" and collapses punctuation and whitespace
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", " and ")
	s = punctuation.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
