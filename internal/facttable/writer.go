package facttable

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-worldstats/internal/logging"
	"go-worldstats/internal/model"
)

// MinRetainVersions is the smallest number of versions a writer keeps
const MinRetainVersions = 2

// Options configures a Writer
type Options struct {
	RetainVersions int    // published versions kept after a swap, at least MinRetainVersions
	MaxRowsPerFile int    // 0 writes one file per year
	Workers        int    // partitions encoded in parallel
	Compression    string // snappy, zstd, gzip or none
}

// Writer publishes new versions of the fact table under one root
type Writer struct {
	root   string
	opts   Options
	codec  compress.Compression
	pool   memory.Allocator
	logger *logging.ComponentLogger
}

// NewWriter validates the options and returns a writer for root
func NewWriter(root string, opts Options, logger *logging.ComponentLogger) (*Writer, error) {
	if root == "" {
		return nil, errors.New("fact table root is required")
	}
	codec, err := ParseCompression(opts.Compression)
	if err != nil {
		return nil, err
	}
	if opts.RetainVersions < MinRetainVersions {
		opts.RetainVersions = MinRetainVersions
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRowsPerFile < 0 {
		opts.MaxRowsPerFile = 0
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Writer{
		root:   root,
		opts:   opts,
		codec:  codec,
		pool:   memory.NewGoAllocator(),
		logger: logger,
	}, nil
}

// Root returns the directory the writer publishes into
func (w *Writer) Root() string { return w.root }

// Write replaces the visible table with records. Nothing becomes visible unless
// every partition and the manifest were written; on any failure the staging
// directory is removed and the previous version stays current.
func (w *Writer) Write(ctx context.Context, records []model.CountryYearRecord) (*Manifest, error) {
	byYear, err := groupByYear(records)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return nil, &model.WriteError{Op: "mkdir", Path: w.root, Err: err}
	}
	unlock, err := acquireLock(w.root)
	if err != nil {
		return nil, err
	}
	defer unlock()
	w.sweepStaging()

	now := time.Now().UTC()
	version := newVersionID(now)
	staging := filepath.Join(w.root, stagingPrefix+version)
	published := false
	defer func() {
		if !published {
			os.RemoveAll(staging)
		}
	}()

	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, &model.WriteError{Op: "mkdir", Path: staging, Err: err}
	}

	partitions, err := w.writePartitions(ctx, staging, byYear)
	if err != nil {
		return nil, err
	}

	countries := make(map[string]bool)
	for _, r := range records {
		countries[r.CountryID] = true
	}
	manifest := &Manifest{
		Version:    version,
		CreatedAt:  now,
		Records:    len(records),
		Countries:  len(countries),
		Partitions: partitions,
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, &model.WriteError{Op: "encode manifest", Path: staging, Err: err}
	}
	if err := writeFileSync(filepath.Join(staging, manifestFile), manifestJSON); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, &model.WriteError{Op: "publish", Path: staging, Err: err}
	}

	final := versionDir(w.root, version)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, &model.WriteError{Op: "mkdir", Path: filepath.Dir(final), Err: err}
	}
	if err := os.Rename(staging, final); err != nil {
		return nil, &model.WriteError{Op: "rename", Path: staging, Err: err}
	}
	syncDir(filepath.Dir(final))

	if err := w.swapCurrent(version); err != nil {
		// the version directory is not referenced by anything yet
		os.RemoveAll(final)
		return nil, err
	}
	published = true

	w.logger.Info().
		Str("version", version).
		Int("records", manifest.Records).
		Int("partitions", len(manifest.Partitions)).
		Msg("Published fact table version")

	if err := w.prune(version); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to prune old versions")
	}
	return manifest, nil
}

func (w *Writer) writePartitions(ctx context.Context, staging string, byYear map[int][]model.CountryYearRecord) ([]PartitionFile, error) {
	type job struct {
		year    int
		part    int
		records []model.CountryYearRecord
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var jobs []job
	for _, y := range years {
		recs := byYear[y]
		size := w.opts.MaxRowsPerFile
		if size == 0 || size > len(recs) {
			size = len(recs)
		}
		for part, start := 0, 0; start < len(recs); part, start = part+1, start+size {
			end := start + size
			if end > len(recs) {
				end = len(recs)
			}
			jobs = append(jobs, job{year: y, part: part, records: recs[start:end]})
		}
	}

	files := make([]PartitionFile, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return &model.WriteError{Op: "write partition", Path: partitionDir(j.year), Err: err}
			}
			data, err := encodePartition(j.records, w.codec, w.pool)
			if err != nil {
				return &model.WriteError{Op: "encode", Path: partitionDir(j.year), Err: err}
			}
			rel := partitionPath(j.year, j.part)
			full := filepath.Join(staging, rel)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return &model.WriteError{Op: "mkdir", Path: filepath.Dir(full), Err: err}
			}
			if err := writeFileSync(full, data); err != nil {
				return err
			}
			sum := sha256.Sum256(data)
			files[i] = PartitionFile{
				Year:   j.year,
				Path:   filepath.ToSlash(rel),
				Rows:   len(j.records),
				Bytes:  int64(len(data)),
				SHA256: hex.EncodeToString(sum[:]),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (w *Writer) swapCurrent(version string) error {
	tmp := filepath.Join(w.root, currentFile+".tmp")
	if err := writeFileSync(tmp, []byte(version+"\n")); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(w.root, currentFile)); err != nil {
		os.Remove(tmp)
		return &model.WriteError{Op: "rename", Path: tmp, Err: err}
	}
	syncDir(w.root)
	return nil
}

// prune removes the oldest versions beyond the retention count. The current
// version is never removed.
func (w *Writer) prune(current string) error {
	versions, err := ListVersions(w.root)
	if err != nil {
		return err
	}
	excess := len(versions) - w.opts.RetainVersions
	for _, v := range versions {
		if excess <= 0 {
			break
		}
		if v == current {
			continue
		}
		if err := os.RemoveAll(versionDir(w.root, v)); err != nil {
			return err
		}
		w.logger.Debug().Str("version", v).Msg("Pruned fact table version")
		excess--
	}
	return nil
}

// sweepStaging removes staging directories left behind by runs that died
// before publishing. Only called while holding the lock.
func (w *Writer) sweepStaging() {
	leftovers, _ := filepath.Glob(filepath.Join(w.root, stagingPrefix+"*"))
	for _, dir := range leftovers {
		if err := os.RemoveAll(dir); err != nil {
			w.logger.Warn().Err(err).Str("path", dir).Msg("Failed to remove stale staging directory")
			continue
		}
		w.logger.Info().Str("path", dir).Msg("Removed stale staging directory")
	}
}

// groupByYear splits records into partitions sorted by country_id and rejects duplicate keys
func groupByYear(records []model.CountryYearRecord) (map[int][]model.CountryYearRecord, error) {
	byYear := make(map[int][]model.CountryYearRecord)
	for _, r := range records {
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	for year, recs := range byYear {
		sort.Slice(recs, func(i, j int) bool { return recs[i].CountryID < recs[j].CountryID })
		for i := 1; i < len(recs); i++ {
			if recs[i].CountryID == recs[i-1].CountryID {
				return nil, fmt.Errorf("duplicate fact table key (%s, %d)", recs[i].CountryID, year)
			}
		}
	}
	return byYear, nil
}

func newVersionID(t time.Time) string {
	return t.Format("20060102T150405.000000000Z") + "-" + uuid.NewString()[:8]
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &model.WriteError{Op: "create", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &model.WriteError{Op: "write", Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &model.WriteError{Op: "fsync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &model.WriteError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// syncDir flushes a directory entry; not every platform supports it
func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
}
