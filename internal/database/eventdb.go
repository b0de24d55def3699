package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/phishguard/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "phishguard.db"

// ErrUnknownEventType is returned when an event has no known type.
var ErrUnknownEventType = errors.New("unknown event type")

// EventDB stores classification attempts and system events in SQLite.
// It is safe for concurrent use.
type EventDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures EventDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the event database in dir.
func Open(dir string, opts Options) (*EventDB, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite", dbPath+"?mode="+mode+"&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &EventDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := edb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return edb, nil
}

// Close closes the database connection.
func (edb *EventDB) Close() error {
	return edb.db.Close()
}

// Path returns the database file path.
func (edb *EventDB) Path() string {
	return edb.dbPath
}

func (edb *EventDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		label TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		reason TEXT NOT NULL,
		stage TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_timestamp ON attempts(timestamp);
	CREATE INDEX IF NOT EXISTS idx_attempts_label ON attempts(label);

	CREATE TABLE IF NOT EXISTS system_events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		details TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_system_events_timestamp ON system_events(timestamp);
	`
	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// Record stores event. Attempts go to the attempts table, every other known
// type to system_events. A missing ID or timestamp is filled in.
func (edb *EventDB) Record(ctx context.Context, event model.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	ts := formatTimestamp(event.Timestamp)

	switch event.Type {
	case model.EventAttempt:
		_, err := edb.db.ExecContext(ctx, `
		INSERT INTO attempts (id, url, label, confidence, reason, stage, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			event.ID,
			event.URL,
			string(event.Label),
			event.Confidence,
			event.Reason,
			event.Stage,
			ts,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attempt: %w", err)
		}
	case model.EventStartup, model.EventShutdown, model.EventRecovery:
		_, err := edb.db.ExecContext(ctx, `
		INSERT INTO system_events (id, type, details, timestamp)
		VALUES (?, ?, ?, ?)`,
			event.ID,
			event.Type,
			event.Details,
			ts,
		)
		if err != nil {
			return fmt.Errorf("failed to insert system event: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}
	return nil
}

// ListAttempts returns up to limit attempts, newest first.
// A non-positive limit returns all of them.
func (edb *EventDB) ListAttempts(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := edb.db.QueryContext(ctx, `
	SELECT id, url, label, confidence, reason, stage, timestamp
	FROM attempts
	ORDER BY timestamp DESC, rowid DESC
	LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var label, timestamp string
		if err := rows.Scan(&e.ID, &e.URL, &label, &e.Confidence, &e.Reason, &e.Stage, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		e.Type = model.EventAttempt
		e.Label = model.Label(label)
		e.Timestamp = parseTimestamp(timestamp)
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListSystemEvents returns up to limit system events, newest first.
func (edb *EventDB) ListSystemEvents(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := edb.db.QueryContext(ctx, `
	SELECT id, type, COALESCE(details, ''), timestamp
	FROM system_events
	ORDER BY timestamp DESC, rowid DESC
	LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query system events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var timestamp string
		if err := rows.Scan(&e.ID, &e.Type, &e.Details, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan system event: %w", err)
		}
		e.Timestamp = parseTimestamp(timestamp)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountAttempts returns the number of stored attempts per label.
func (edb *EventDB) CountAttempts(ctx context.Context) (map[model.Label]int, error) {
	rows, err := edb.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM attempts GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Label]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.Label(label)] = n
	}
	return counts, rows.Err()
}

// SQLite treats a negative LIMIT as unlimited.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// timestampLayout sorts lexically in chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
