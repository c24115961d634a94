package export

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-worldstats/internal/model"
)

// PostgresLoader copies a fact table version into a Postgres table, replacing
// its contents in a single transaction.
type PostgresLoader struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresLoader connects to dsn. table defaults to country_year_facts.
func NewPostgresLoader(ctx context.Context, dsn, table string) (*PostgresLoader, error) {
	if table == "" {
		table = "country_year_facts"
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresLoader{pool: pool, table: table}, nil
}

// Close closes the pool
func (l *PostgresLoader) Close() {
	l.pool.Close()
}

// Load replaces the table contents with records and returns the rows copied.
// Readers of the table see either the old or the new contents.
func (l *PostgresLoader) Load(ctx context.Context, version string, records []model.CountryYearRecord) (int64, error) {
	ident := pgx.Identifier{l.table}.Sanitize()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		country_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		population BIGINT,
		gdp DOUBLE PRECISION,
		version TEXT NOT NULL,
		PRIMARY KEY (country_id, year)
	)`, ident)
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", ident)); err != nil {
		return 0, fmt.Errorf("clear table: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{l.table},
		[]string{"country_id", "year", "population", "gdp", "version"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.CountryID, int32(r.Year), r.Population, r.GDP, version}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy facts: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns the number of rows currently in the table
func (l *PostgresLoader) Count(ctx context.Context) (int64, error) {
	var n int64
	err := l.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{l.table}.Sanitize())).Scan(&n)
	return n, err
}
