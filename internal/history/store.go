package history

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

	"subnode/internal/job"
	"subnode/internal/services"
)

// ErrNotFound is returned when no job with the requested id is recorded.
var ErrNotFound = errors.New("job not found")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// Fixed-width so that created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	// DefaultListLimit caps List when the caller passes a non-positive limit.
	DefaultListLimit = 50
)

// Store manages the job ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the ledger at path, creating its parent
// directory when needed.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
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

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a new running job. Recording the same id twice fails.
func (s *Store) Begin(ctx context.Context, j job.Job) (*Record, error) {
	styleJSON, err := json.Marshal(j.Style)
	if err != nil {
		return nil, fmt.Errorf("encode style: %w", err)
	}
	now := s.now().UTC()
	timestamp := now.Format(timeLayout)
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (id, source_path, style_json, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID, j.SourcePath, string(styleJSON), StatusRunning, timestamp, timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	return &Record{
		ID:         j.ID,
		SourcePath: j.SourcePath,
		StyleJSON:  string(styleJSON),
		Status:     StatusRunning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateStage records the stage a running job has entered.
func (s *Store) UpdateStage(ctx context.Context, id, stage string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET stage = ?, updated_at = ? WHERE id = ?`,
		nullableString(stage), s.timestamp(), id,
	)
}

// Complete marks the job succeeded and stores its artifacts.
func (s *Store) Complete(ctx context.Context, id string, artifacts Artifacts) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, stage = NULL, error_kind = NULL, error_message = NULL, exit_code = NULL,
		 audio_path = ?, vtt_path = ?, srt_path = ?, output_path = ?, updated_at = ? WHERE id = ?`,
		StatusSucceeded,
		nullableString(artifacts.AudioPath),
		nullableString(artifacts.VTTPath),
		nullableString(artifacts.SRTPath),
		nullableString(artifacts.OutputPath),
		s.timestamp(),
		id,
	)
}

// Fail marks the job failed. The failure kind, stage and external exit code
// are read from cause.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	var (
		kind    string
		message string
		stage   string
		exit    any
	)
	if cause != nil {
		kind = services.Kind(cause)
		message = cause.Error()
		stage = services.StageOf(cause)
		if result, ok := services.CommandOf(cause); ok {
			exit = result.ExitCode
		}
	}
	stageArg := nullableString(stage)
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, stage = COALESCE(?, stage), error_kind = ?, error_message = ?, exit_code = ?,
		 updated_at = ? WHERE id = ?`,
		StatusFailed, stageArg, nullableString(kind), nullableString(message), exit, s.timestamp(), id,
	)
}

// Get returns the record for id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM jobs WHERE id = ?", id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return record, nil
}

// List returns the most recent jobs first, optionally filtered by status.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Record, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := "SELECT " + recordColumns + " FROM jobs"
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return records, nil
}

// Delete removes the record for id. Deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// MarkInterrupted fails every job still recorded as running. It is used at
// startup, when no job can legitimately be in flight.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_kind = ?, error_message = ?, updated_at = ? WHERE status = ?`,
		StatusFailed, services.KindUnknown, "interrupted before completion", s.timestamp(), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
