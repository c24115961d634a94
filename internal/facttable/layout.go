// Package facttable stores the country/year fact table as versioned,
// year-partitioned Parquet files under a single root directory:
//
//	<root>/CURRENT                        id of the visible version
//	<root>/versions/<id>/manifest.json    partitions, row counts, checksums
//	<root>/versions/<id>/year=YYYY/part-NNNNN.parquet
//	<root>/.staging-<id>/                 in-progress write, never read
//	<root>/.lock                          held by the writing run
//
// A version becomes visible only when CURRENT is renamed into place, so
// readers see either the previous or the new table, never a mix.
package facttable

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-worldstats/internal/model"
)

const (
	currentFile   = "CURRENT"
	lockFile      = ".lock"
	versionsDir   = "versions"
	stagingPrefix = ".staging-"
	manifestFile  = "manifest.json"
)

// Manifest describes one published version
type Manifest struct {
	Version    string          `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	Records    int             `json:"records"`
	Countries  int             `json:"countries"`
	Partitions []PartitionFile `json:"partitions"`
}

// PartitionFile is one Parquet file of a version
type PartitionFile struct {
	Year   int    `json:"year"`
	Path   string `json:"path"` // relative to the version directory
	Rows   int    `json:"rows"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// Years returns the distinct partition years in ascending order
func (m *Manifest) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, p := range m.Partitions {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	sort.Ints(years)
	return years
}

func versionDir(root, version string) string {
	return filepath.Join(root, versionsDir, version)
}

func partitionDir(year int) string {
	return fmt.Sprintf("year=%d", year)
}

func partitionPath(year, part int) string {
	return filepath.Join(partitionDir(year), fmt.Sprintf("part-%05d.parquet", part))
}

// readCurrent returns the visible version id
func readCurrent(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", model.ErrNoTable
	}
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", model.ErrNoTable
	}
	return version, nil
}

func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", dir, err)
	}
	return &m, nil
}

// ListVersions returns the published version ids, oldest first
func ListVersions(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, versionsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func sortRecords(records []model.CountryYearRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().Less(records[j].Key())
	})
}

// CurrentVersion returns the id the CURRENT pointer names
func CurrentVersion(root string) (string, error) {
	return readCurrent(root)
}
