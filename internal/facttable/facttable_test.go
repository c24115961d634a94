package facttable

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-worldstats/internal/model"
)

func sampleRecords() []model.CountryYearRecord {
	return []model.CountryYearRecord{
		{CountryID: "USA", Year: 2000, Population: model.Int64Ptr(282_000_000), GDP: model.Float64Ptr(1.025e13)},
		{CountryID: "ARG", Year: 2000, Population: model.Int64Ptr(37_000_000)},
		{CountryID: "ARG", Year: 1990, GDP: model.Float64Ptr(1.4e11)},
		{CountryID: "USA", Year: 1990, Population: model.Int64Ptr(250_000_000), GDP: model.Float64Ptr(5.9e12)},
		{CountryID: "FRA", Year: 2010, Population: model.Int64Ptr(65_000_000), GDP: model.Float64Ptr(2.6e12)},
	}
}

func newTestWriter(t *testing.T, root string, opts Options) *Writer {
	t.Helper()
	w, err := NewWriter(root, opts, nil)
	require.NoError(t, err)
	return w
}

func TestWriteAndReadBack(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root, Options{})

	manifest, err := w.Write(context.Background(), sampleRecords())
	require.NoError(t, err)
	require.Equal(t, 5, manifest.Records)
	require.Equal(t, 3, manifest.Countries)
	require.Equal(t, []int{1990, 2000, 2010}, manifest.Years())

	_, err = os.Stat(filepath.Join(root, "versions", manifest.Version, "year=2000", "part-00000.parquet"))
	require.NoError(t, err)

	snap, err := Open(root)
	require.NoError(t, err)
	require.Equal(t, manifest.Version, snap.Version)
	require.NoError(t, snap.Verify())

	got, err := snap.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 5)
	require.Equal(t, "ARG", got[0].CountryID)
	require.Equal(t, 1990, got[0].Year)
	require.Nil(t, got[0].Population)
	require.Equal(t, 1.4e11, *got[0].GDP)
	require.Equal(t, "ARG", got[1].CountryID)
	require.Nil(t, got[1].GDP)
	require.Equal(t, int64(37_000_000), *got[1].Population)
	require.Equal(t, "USA", got[4].CountryID)
	require.Equal(t, 2000, got[4].Year)
}

func TestReadYearsRange(t *testing.T) {
	root := t.TempDir()
	_, err := newTestWriter(t, root, Options{}).Write(context.Background(), sampleRecords())
	require.NoError(t, err)

	snap, err := Open(root)
	require.NoError(t, err)
	got, err := snap.ReadYears(context.Background(), 1995, 2005)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		require.Equal(t, 2000, r.Year)
	}

	_, err = snap.ReadYears(context.Background(), 2005, 1995)
	require.Error(t, err)
}

func TestIdenticalInputsGiveIdenticalFiles(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root, Options{})
	first, err := w.Write(context.Background(), sampleRecords())
	require.NoError(t, err)

	// reversed input order must not matter
	recs := sampleRecords()
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	second, err := w.Write(context.Background(), recs)
	require.NoError(t, err)
	require.NotEqual(t, first.Version, second.Version)
	require.Equal(t, len(first.Partitions), len(second.Partitions))

	for i := range first.Partitions {
		require.Equal(t, first.Partitions[i].SHA256, second.Partitions[i].SHA256)
		a, err := os.ReadFile(filepath.Join(root, "versions", first.Version, first.Partitions[i].Path))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(root, "versions", second.Version, second.Partitions[i].Path))
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestPinnedSnapshotSurvivesSwap(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root, Options{RetainVersions: 2})
	_, err := w.Write(context.Background(), sampleRecords())
	require.NoError(t, err)

	old, err := Open(root)
	require.NoError(t, err)

	replacement := []model.CountryYearRecord{{CountryID: "DEU", Year: 2020, Population: model.Int64Ptr(83_000_000)}}
	_, err = w.Write(context.Background(), replacement)
	require.NoError(t, err)

	got, err := old.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 5)

	current, err := Open(root)
	require.NoError(t, err)
	require.NotEqual(t, old.Version, current.Version)
	got, err = current.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "DEU", got[0].CountryID)
}

func TestCancelledWriteKeepsPreviousVersion(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root, Options{})
	before, err := w.Write(context.Background(), sampleRecords())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Write(ctx, []model.CountryYearRecord{{CountryID: "DEU", Year: 2020}})
	require.Error(t, err)
	require.ErrorIs(t, err, model.ErrWrite)
	require.ErrorIs(t, err, context.Canceled)

	version, err := CurrentVersion(root)
	require.NoError(t, err)
	require.Equal(t, before.Version, version)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), stagingPrefix)
		require.NotEqual(t, lockFile, e.Name())
	}
}

func TestConcurrentWriterIsLocked(t *testing.T) {
	root := t.TempDir()
	unlock, err := acquireLock(root)
	require.NoError(t, err)
	defer unlock()

	_, err = newTestWriter(t, root, Options{}).Write(context.Background(), sampleRecords())
	require.ErrorIs(t, err, model.ErrLocked)

	_, err = Open(root)
	require.ErrorIs(t, err, model.ErrNoTable)
}

func TestPruneKeepsRetainedVersions(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root, Options{RetainVersions: 2})
	var last *Manifest
	for i := 0; i < 4; i++ {
		m, err := w.Write(context.Background(), sampleRecords())
		require.NoError(t, err)
		last = m
	}
	versions, err := ListVersions(root)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, last.Version, versions[1])
}

func TestMaxRowsPerFileSplitsPartitions(t *testing.T) {
	root := t.TempDir()
	recs := []model.CountryYearRecord{
		{CountryID: "AAA", Year: 2000, GDP: model.Float64Ptr(1)},
		{CountryID: "BBB", Year: 2000, GDP: model.Float64Ptr(2)},
		{CountryID: "CCC", Year: 2000, GDP: model.Float64Ptr(3)},
	}
	m, err := newTestWriter(t, root, Options{MaxRowsPerFile: 2}).Write(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, m.Partitions, 2)
	require.Equal(t, "year=2000/part-00001.parquet", m.Partitions[1].Path)
	require.Equal(t, 1, m.Partitions[1].Rows)

	snap, err := Open(root)
	require.NoError(t, err)
	got, err := snap.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "CCC", got[2].CountryID)
}

func TestWriteRejectsDuplicateKeys(t *testing.T) {
	recs := append(sampleRecords(), model.CountryYearRecord{CountryID: "USA", Year: 2000})
	_, err := newTestWriter(t, t.TempDir(), Options{}).Write(context.Background(), recs)
	require.Error(t, err)
}

func TestDuckDBReaderAgreesWithParquetReader(t *testing.T) {
	root := t.TempDir()
	_, err := newTestWriter(t, root, Options{}).Write(context.Background(), sampleRecords())
	require.NoError(t, err)

	snap, err := Open(root)
	require.NoError(t, err)
	want, err := snap.Records(context.Background())
	require.NoError(t, err)

	db, err := NewDuckDBReader(snap)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Records(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	ranged, err := db.ReadYears(context.Background(), 2000, 2010)
	require.NoError(t, err)
	require.Len(t, ranged, 3)

	counts, err := db.CountByYear(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[int]int{1990: 2, 2000: 2, 2010: 1}, counts)
}
