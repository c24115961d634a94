package facttable

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"go-worldstats/internal/model"
)

// DuckDBReader queries a snapshot through DuckDB's Parquet scanner. The year
// column comes from the hive-style partition directories.
type DuckDBReader struct {
	db   *sql.DB
	snap *Snapshot
}

// NewDuckDBReader opens an in-memory DuckDB over a snapshot
func NewDuckDBReader(snap *Snapshot) (*DuckDBReader, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBReader{db: db, snap: snap}, nil
}

// Close releases the DuckDB instance
func (r *DuckDBReader) Close() error {
	return r.db.Close()
}

// source renders the read_parquet call for the snapshot's files
func (r *DuckDBReader) source() string {
	glob := filepath.ToSlash(filepath.Join(r.snap.Dir(), "year=*", "*.parquet"))
	return fmt.Sprintf("read_parquet('%s', hive_partitioning = true)", strings.ReplaceAll(glob, "'", "''"))
}

// Records reads the whole snapshot
func (r *DuckDBReader) Records(ctx context.Context) ([]model.CountryYearRecord, error) {
	if len(r.snap.Manifest.Partitions) == 0 {
		return nil, nil
	}
	return r.query(ctx, fmt.Sprintf(
		`SELECT country_id, CAST(year AS INTEGER), population, gdp FROM %s ORDER BY country_id, year`, r.source()))
}

// ReadYears reads from <= year <= to; DuckDB prunes partitions from the filter
func (r *DuckDBReader) ReadYears(ctx context.Context, from, to int) ([]model.CountryYearRecord, error) {
	if from > to {
		return nil, fmt.Errorf("invalid year range %d..%d", from, to)
	}
	if len(r.snap.Manifest.Partitions) == 0 {
		return nil, nil
	}
	return r.query(ctx, fmt.Sprintf(
		`SELECT country_id, CAST(year AS INTEGER), population, gdp FROM %s WHERE year BETWEEN ? AND ? ORDER BY country_id, year`, r.source()),
		from, to)
}

// CountByYear returns the number of records per partition year
func (r *DuckDBReader) CountByYear(ctx context.Context) (map[int]int, error) {
	out := make(map[int]int)
	if len(r.snap.Manifest.Partitions) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT CAST(year AS INTEGER), COUNT(*) FROM %s GROUP BY year`, r.source()))
	if err != nil {
		return nil, fmt.Errorf("duckdb query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var year, n int
		if err := rows.Scan(&year, &n); err != nil {
			return nil, err
		}
		out[year] = n
	}
	return out, rows.Err()
}

func (r *DuckDBReader) query(ctx context.Context, q string, args ...interface{}) ([]model.CountryYearRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("duckdb query: %w", err)
	}
	defer rows.Close()

	var out []model.CountryYearRecord
	for rows.Next() {
		var (
			rec model.CountryYearRecord
			pop sql.NullInt64
			gdp sql.NullFloat64
		)
		if err := rows.Scan(&rec.CountryID, &rec.Year, &pop, &gdp); err != nil {
			return nil, err
		}
		if pop.Valid {
			rec.Population = model.Int64Ptr(pop.Int64)
		}
		if gdp.Valid {
			rec.GDP = model.Float64Ptr(gdp.Float64)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
