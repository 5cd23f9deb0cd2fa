// Package archive persists captured log runs to SQLite so the logs of a
// failed test can be inspected after the test process is gone.
//
// Records keep their capture Seq, and every read returns them ORDER BY seq,
// so a run read back has the same per-part and global order it had in the
// sink.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/adalharness/internal/logcapture"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// createdAtLayout is fixed width so text order in SQLite is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID is not in the archive.
var ErrRunNotFound = errors.New("run not found")

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable run IDs, so ListRuns order and
// ID order agree.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Run describes one archived capture.
type Run struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	RecordCount int       `json:"record_count"`
}

// Archive is a SQLite-backed run store.
type Archive struct {
	db  *sql.DB
	ids IDGenerator
	now func() time.Time
}

// Option configures an Archive.
type Option func(*Archive)

// WithIDGenerator replaces the UUIDv7 run ID source.
func WithIDGenerator(g IDGenerator) Option {
	return func(a *Archive) {
		if g != nil {
			a.ids = g
		}
	}
}

// WithNow replaces the clock used for created_at.
func WithNow(now func() time.Time) Option {
	return func(a *Archive) {
		if now != nil {
			a.now = now
		}
	}
}

// Open creates or opens an archive at path (":memory:" for tests).
//
// The database uses WAL mode, a single connection, a 5-second busy
// timeout and foreign keys. Open is idempotent.
func Open(path string, opts ...Option) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has one writer; a single connection also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	a := &Archive{db: db, ids: UUIDv7Generator{}, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// SaveRun stores records under a new run and returns its ID.
// The whole run is written in one transaction.
func (a *Archive) SaveRun(ctx context.Context, name string, records []logcapture.Record) (string, error) {
	id := a.ids.Generate()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at, record_count) VALUES (?, ?, ?, ?)`,
		id, name, a.now().UTC().Format(createdAtLayout), len(records),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, seq, part, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, id, rec.Seq, rec.Part.String(), rec.Text); err != nil {
			return "", fmt.Errorf("save run: record %d: %w", rec.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// ListRuns returns every run, oldest first.
func (a *Archive) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, name, created_at, record_count FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run or ErrRunNotFound.
func (a *Archive) GetRun(ctx context.Context, runID string) (Run, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, record_count FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// Records returns every record of a run in capture order.
func (a *Archive) Records(ctx context.Context, runID string) ([]logcapture.Record, error) {
	if _, err := a.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return a.queryRecords(ctx,
		`SELECT seq, part, text FROM records WHERE run_id = ? ORDER BY seq`, runID)
}

// RecordsByPart returns the records of one part in capture order.
func (a *Archive) RecordsByPart(ctx context.Context, runID string, part logcapture.Part) ([]logcapture.Record, error) {
	if _, err := a.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return a.queryRecords(ctx,
		`SELECT seq, part, text FROM records WHERE run_id = ? AND part = ? ORDER BY seq`,
		runID, part.String())
}

// Restore replays a run into sink, preserving order. The sink assigns
// fresh Seq values.
func (a *Archive) Restore(ctx context.Context, runID string, sink *logcapture.Sink) error {
	recs, err := a.Records(ctx, runID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		sink.Append(rec.Part, rec.Text)
	}
	return nil
}

func (a *Archive) queryRecords(ctx context.Context, query string, args ...any) ([]logcapture.Record, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var recs []logcapture.Record
	for rows.Next() {
		var (
			rec      logcapture.Record
			partName string
		)
		if err := rows.Scan(&rec.Seq, &partName, &rec.Text); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		part, err := logcapture.ParsePart(partName)
		if err != nil {
			return nil, fmt.Errorf("scan record %d: %w", rec.Seq, err)
		}
		rec.Part = part
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run     Run
		created string
	)
	if err := s.Scan(&run.ID, &run.Name, &created, &run.RecordCount); err != nil {
		return Run{}, err
	}
	ts, err := time.Parse(createdAtLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	run.CreatedAt = ts
	return run, nil
}
