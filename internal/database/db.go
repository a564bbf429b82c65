package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrDatasetNotFound is returned when no dataset of the requested name is
// stored.
var ErrDatasetNotFound = errors.New("dataset not found in database")

// ErrReadOnly is returned by write operations on a read-only database.
var ErrReadOnly = errors.New("database is opened read-only")

// DB is a SQLite file holding datasets and report snapshots.
type DB struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the file and its directory when missing.
	CreateIfNotExists bool

	// ReadOnly opens the file without write access. The schema is not
	// created in this mode, so the file must come from a previous write.
	ReadOnly bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns options for a writable database that is created
// on demand.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the database file at path.
func Open(path string, opts Options) (*DB, error) {
	if opts.ReadOnly && opts.CreateIfNotExists {
		return nil, fmt.Errorf("cannot create %s in read-only mode", path)
	}

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var dsn string
	switch {
	case opts.ReadOnly:
		dsn = path + "?mode=ro"
	case opts.CreateIfNotExists:
		dsn = path + "?mode=rwc"
	default:
		dsn = path + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d := &DB{db: db, path: path, readOnly: opts.ReadOnly}

	if opts.ReadOnly {
		if err := db.PingContext(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return d, nil
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := d.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the file the database was opened from.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		name TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		variant TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	-- Episodes keep their curated order through position.
	CREATE TABLE IF NOT EXISTS episodes (
		dataset TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		custom_id TEXT NOT NULL,
		season TEXT,
		episode_number TEXT,
		title TEXT,
		summary TEXT,
		has_false_suspect TEXT,
		has_public_exposure TEXT,
		needs_deep_review TEXT,
		PRIMARY KEY (dataset, custom_id)
	);

	CREATE TABLE IF NOT EXISTS persons (
		dataset TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		custom_id TEXT NOT NULL,
		person_id TEXT,
		season TEXT,
		name TEXT,
		role_in_plot TEXT,
		accused_of TEXT,
		accusation_origin TEXT,
		innocence_status TEXT,
		exposure_channel TEXT,
		exposure_who_told TEXT,
		consequence_category TEXT,
		consequence_severity TEXT,
		consequence_description TEXT,
		police_conduct_threat TEXT,
		police_apology TEXT,
		prosecutorial_conduct TEXT,
		prosecutorial_apology TEXT,
		quote TEXT,
		notes TEXT,
		tags TEXT,
		PRIMARY KEY (dataset, position)
	);

	CREATE INDEX IF NOT EXISTS idx_persons_episode ON persons(dataset, custom_id);

	-- Report snapshots store complete documents as JSON.
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		dataset TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		selected INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_dataset ON reports(dataset);
	`
	_, err := d.db.ExecContext(context.Background(), schema)
	return err
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries every known format and returns the zero time when
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sortableTimestamp keeps a fixed number of fraction digits so that
// timestamps order correctly as strings.
const sortableTimestamp = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(sortableTimestamp)
}
