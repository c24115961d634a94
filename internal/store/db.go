package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-worldstats/internal/model"
)

// Run statuses written to the ledger
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCleaning  = "cleaning"
	StatusJoining   = "joining"
	StatusWriting   = "writing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrNotFound is returned when a run id is not in the ledger
var ErrNotFound = errors.New("run not found")

// Store is the SQLite ledger of cleaning runs
type Store struct {
	db *sql.DB
}

// Run is one ledger entry
type Run struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Spec      *model.RunSpec    `json:"spec,omitempty"`
	Summary   *model.RunSummary `json:"summary,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Stages    []StageProgress   `json:"stages,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// StageProgress records one finished stage of a run
type StageProgress struct {
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	Records    int       `json:"records"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Open opens (and creates if needed) the ledger database
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	// Create tables if not exists
	schema := []string{`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		version TEXT,
		summary TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`, `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`, `
	CREATE TABLE IF NOT EXISTS run_stages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		status TEXT,
		records INTEGER,
		started_at DATETIME,
		duration_ms INTEGER
	);
	`}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init ledger schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a new cleaning run
func (s *Store) SaveRun(runID string, spec model.RunSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO runs (id, spec, status, version, summary, created_at, updated_at) VALUES (?, ?, ?, '', '', ?, ?)`,
		runID, string(specJSON), StatusPending, now, now)
	return err
}

// UpdateRunStatus updates run status
func (s *Store) UpdateRunStatus(runID string, status string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CompleteRun marks a run completed and stores its summary
func (s *Store) CompleteRun(runID string, summary model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE runs SET status = ?, version = ?, summary = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, summary.Version, string(summaryJSON), now, runID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SaveRunError records an error for a run
func (s *Store) SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// SaveStageProgress records a finished stage
func (s *Store) SaveStageProgress(runID string, p StageProgress) error {
	_, err := s.db.Exec(`INSERT INTO run_stages (run_id, stage, status, records, started_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, p.Stage, p.Status, p.Records, p.StartedAt.UTC(), p.DurationMS)
	return err
}

// ListRuns returns the most recent runs with basic info, newest first
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, status, version, created_at, updated_at FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Status, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches a run with its spec, summary, errors and stages
func (s *Store) GetRun(runID string) (*Run, error) {
	var specJSON, summaryJSON string
	r := &Run{ID: runID}

	err := s.db.QueryRow(`SELECT spec, status, version, summary, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &r.Status, &r.Version, &summaryJSON, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}
	r.Spec = &spec
	if summaryJSON != "" {
		var summary model.RunSummary
		if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
			return nil, err
		}
		r.Summary = &summary
	}

	errRows, err := s.db.Query(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer errRows.Close()
	for errRows.Next() {
		var msg string
		if err := errRows.Scan(&msg); err != nil {
			return nil, err
		}
		r.Errors = append(r.Errors, msg)
	}
	if err := errRows.Err(); err != nil {
		return nil, err
	}

	stageRows, err := s.db.Query(`SELECT stage, status, records, started_at, duration_ms FROM run_stages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer stageRows.Close()
	for stageRows.Next() {
		var p StageProgress
		if err := stageRows.Scan(&p.Stage, &p.Status, &p.Records, &p.StartedAt, &p.DurationMS); err != nil {
			return nil, err
		}
		r.Stages = append(r.Stages, p)
	}
	return r, stageRows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
