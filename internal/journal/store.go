package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"photosorter/internal/outcome"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusFailed    = "failed"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id has no journal row.
var ErrRunNotFound = errors.New("run not found")

// Run is one row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	OutputRoot string
	Inputs     []string
	Status     string
	Placed     int
	Duplicates int
	Failures   int
	BytesMoved int64
}

// Store is a write-mostly audit log of sort runs backed by SQLite. Placement
// never reads from it.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies
// migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts the row for a new run.
func (s *Store) BeginRun(ctx context.Context, runID, outputRoot string, inputs []string, startedAt time.Time) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, output_root, inputs_json, status) VALUES (?, ?, ?, ?, ?)`,
		runID,
		startedAt.UTC().Format(timeLayout),
		outputRoot,
		string(inputsJSON),
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordEntry appends one outcome to a run.
func (s *Store) RecordEntry(ctx context.Context, runID string, entry outcome.Entry) error {
	var sidecars any
	if len(entry.Sidecars) > 0 {
		data, err := json.Marshal(entry.Sidecars)
		if err != nil {
			return fmt.Errorf("marshal sidecars: %w", err)
		}
		sidecars = string(data)
	}
	recorded := entry.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, kind, source, destination, reason, bytes, sidecars_json, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		string(entry.Kind),
		entry.Source,
		nullableString(entry.Destination),
		nullableString(entry.Reason),
		entry.Bytes,
		sidecars,
		recorded.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// FinishRun stores the run totals from report and marks it with status.
func (s *Store) FinishRun(ctx context.Context, report *outcome.Report, status string) error {
	if report == nil {
		return errors.New("finish run: nil report")
	}
	summary := report.Summary()
	finished := report.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	inputsJSON, err := json.Marshal(report.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, inputs_json = ?, placed = ?, duplicates = ?, failures = ?, bytes_moved = ?
         WHERE id = ?`,
		finished.UTC().Format(timeLayout),
		status,
		string(inputsJSON),
		summary.Counts[outcome.KindPlaced],
		summary.Counts[outcome.KindDuplicateSkipped],
		summary.Failures,
		summary.BytesMoved,
		report.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, report.RunID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, output_root, inputs_json, status, placed, duplicates, failures, bytes_moved
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a single run. A unique id prefix is accepted.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, output_root, inputs_json, status, placed, duplicates, failures, bytes_moved
         FROM runs WHERE id = ? OR id LIKE ? ORDER BY (id = ?) DESC LIMIT 1`,
		id, id+"%", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Entries returns the outcomes recorded for a run in insertion order.
func (s *Store) Entries(ctx context.Context, runID string) ([]outcome.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, source, destination, reason, bytes, sidecars_json, recorded_at
         FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []outcome.Entry
	for rows.Next() {
		var (
			kind, source, recorded    string
			destination, reason, side sql.NullString
			entry                     outcome.Entry
		)
		if err := rows.Scan(&kind, &source, &destination, &reason, &entry.Bytes, &side, &recorded); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		entry.Kind = outcome.Kind(kind)
		entry.Source = source
		entry.Destination = destination.String
		entry.Reason = reason.String
		entry.RecordedAt = parseTime(recorded)
		if side.Valid && side.String != "" {
			if err := json.Unmarshal([]byte(side.String), &entry.Sidecars); err != nil {
				return nil, fmt.Errorf("decode sidecars: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run             Run
		started, inputs string
		finished        sql.NullString
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.OutputRoot, &inputs, &run.Status,
		&run.Placed, &run.Duplicates, &run.Failures, &run.BytesMoved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
		return Run{}, fmt.Errorf("decode inputs: %w", err)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
