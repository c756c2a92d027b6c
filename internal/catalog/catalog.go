// Package catalog records pipeline runs in a SQLite database in the data
// directory. Each build, prune, or search run gets a row with its stage,
// parameter fingerprint, input and output paths, counts, and status, so
// later stages can find the newest artifact produced under the same
// parameters.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// FileName is the catalog database inside the data directory.
const FileName = "catalog.db"

// Run stages.
const (
	StageBuild  = "build"
	StagePrune  = "prune"
	StageSearch = "search"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoRun means no successful run matches a lookup.
var ErrNoRun = errors.New("no matching run")

//go:embed migrations/*.sql
var migrations embed.FS

// Run is one row of the catalog.
type Run struct {
	ID          string     `json:"id"`
	Stage       string     `json:"stage"`
	Fingerprint string     `json:"fingerprint"`
	Params      string     `json:"params"`
	Input       string     `json:"input,omitempty"`
	Output      string     `json:"output,omitempty"`
	States      int64      `json:"states"`
	Pruned      int64      `json:"pruned"`
	Plans       int64      `json:"plans"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Counts carries the results recorded when a run finishes.
type Counts struct {
	States int64
	Pruned int64
	Plans  int64
}

// Catalog is an open run catalog.
type Catalog struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the catalog in dataDir and applies pending schema
// migrations.
func Open(dataDir string) (*Catalog, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, FileName)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db, now: time.Now}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// m is not closed: closing it would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating catalog: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Begin records a new running run and returns its id.
func (c *Catalog) Begin(ctx context.Context, stage, fingerprint, params, input string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating run id: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, stage, fingerprint, params, input, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), stage, fingerprint, params, input, StatusRunning, c.stamp())
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id.String(), nil
}

// Finish marks a run succeeded with its output path and counts.
func (c *Catalog) Finish(ctx context.Context, id, output string, counts Counts) error {
	return c.update(ctx,
		`UPDATE runs SET status = ?, output = ?, states = ?, pruned = ?, plans = ?, finished_at = ?
		 WHERE run_id = ?`,
		StatusSucceeded, output, counts.States, counts.Pruned, counts.Plans, c.stamp(), id)
}

// Fail marks a run failed with the cause.
func (c *Catalog) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return c.update(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		StatusFailed, msg, c.stamp(), id)
}

func (c *Catalog) update(ctx context.Context, query string, args ...any) error {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n == 0 {
		return ErrNoRun
	}
	return nil
}

// Runs lists runs newest first. A limit of zero or less lists all of them.
func (c *Catalog) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, stage, fingerprint, params, input, output, states, pruned, plans,
		status, error, started_at, finished_at FROM runs ORDER BY started_at DESC, run_id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return out, nil
}

// OutputFingerprint returns the parameter fingerprint of the newest
// successful run that wrote output. It returns ErrNoRun when no recorded run
// produced that file.
func (c *Catalog) OutputFingerprint(ctx context.Context, output string) (string, error) {
	var fp string
	err := c.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM runs WHERE output = ? AND status = ?
		 ORDER BY started_at DESC, run_id DESC LIMIT 1`,
		output, StatusSucceeded).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNoRun, output)
	}
	if err != nil {
		return "", fmt.Errorf("looking up run for %s: %w", output, err)
	}
	return fp, nil
}

// LatestOutput returns the output path of the newest successful run of
// stage with the given fingerprint. It returns ErrNoRun when there is none.
func (c *Catalog) LatestOutput(ctx context.Context, stage, fingerprint string) (string, error) {
	var output string
	err := c.db.QueryRowContext(ctx,
		`SELECT output FROM runs WHERE stage = ? AND fingerprint = ? AND status = ?
		 ORDER BY started_at DESC, run_id DESC LIMIT 1`,
		stage, fingerprint, StatusSucceeded).Scan(&output)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNoRun, stage)
	}
	if err != nil {
		return "", fmt.Errorf("looking up %s run: %w", stage, err)
	}
	return output, nil
}

func (c *Catalog) stamp() string {
	return c.now().UTC().Format(timeLayout)
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	if err := rows.Scan(&r.ID, &r.Stage, &r.Fingerprint, &r.Params, &r.Input, &r.Output,
		&r.States, &r.Pruned, &r.Plans, &r.Status, &r.Error, &started, &finished); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, fmt.Errorf("parsing started_at: %w", err)
	}
	r.StartedAt = t
	if finished.Valid {
		ft, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parsing finished_at: %w", err)
		}
		r.FinishedAt = &ft
	}
	return r, nil
}
