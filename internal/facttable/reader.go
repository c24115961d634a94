package facttable

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"go-worldstats/internal/model"
)

// Snapshot is a reader pinned to one published version. A swap that happens
// after Open does not change what the snapshot returns, as long as the version
// has not been pruned.
type Snapshot struct {
	Root     string
	Version  string
	Manifest *Manifest
	dir      string
	pool     memory.Allocator
}

// Open pins the version CURRENT names
func Open(root string) (*Snapshot, error) {
	version, err := readCurrent(root)
	if err != nil {
		return nil, err
	}
	return OpenVersion(root, version)
}

// OpenVersion pins a specific published version
func OpenVersion(root, version string) (*Snapshot, error) {
	dir := versionDir(root, version)
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Root:     root,
		Version:  version,
		Manifest: manifest,
		dir:      dir,
		pool:     memory.NewGoAllocator(),
	}, nil
}

// Dir is the directory holding the snapshot's partitions
func (s *Snapshot) Dir() string { return s.dir }

// Years lists the partition years of the snapshot
func (s *Snapshot) Years() []int { return s.Manifest.Years() }

// Records reads the whole table, sorted by (country_id, year)
func (s *Snapshot) Records(ctx context.Context) ([]model.CountryYearRecord, error) {
	return s.read(ctx, func(int) bool { return true })
}

// ReadYears reads only the partitions with from <= year <= to
func (s *Snapshot) ReadYears(ctx context.Context, from, to int) ([]model.CountryYearRecord, error) {
	if from > to {
		return nil, fmt.Errorf("invalid year range %d..%d", from, to)
	}
	return s.read(ctx, func(y int) bool { return y >= from && y <= to })
}

func (s *Snapshot) read(ctx context.Context, keep func(year int) bool) ([]model.CountryYearRecord, error) {
	var out []model.CountryYearRecord
	for _, p := range s.Manifest.Partitions {
		if !keep(p.Year) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readPartition(ctx, filepath.Join(s.dir, filepath.FromSlash(p.Path)), p.Year, s.pool)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", s.Version, err)
		}
		out = append(out, recs...)
	}
	sortRecords(out)
	return out, nil
}

// Verify checks every partition file against the manifest checksums
func (s *Snapshot) Verify() error {
	for _, p := range s.Manifest.Partitions {
		data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(p.Path)))
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != p.SHA256 {
			return fmt.Errorf("%s: checksum mismatch: manifest %s, file %s", p.Path, p.SHA256, got)
		}
	}
	return nil
}
