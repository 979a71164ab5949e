// Package sqlite provides SQLite-based persistent storage for Holdfast.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Task escrows: dual-confirmation settlement
		`CREATE TABLE IF NOT EXISTS escrow_tasks (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			requester           TEXT NOT NULL,
			provider            TEXT NOT NULL,
			amount              INTEGER NOT NULL,
			fee                 INTEGER NOT NULL,
			status              TEXT NOT NULL,
			requester_confirmed BOOLEAN DEFAULT 0,
			provider_confirmed  BOOLEAN DEFAULT 0,
			created_seq         INTEGER NOT NULL,
			created_at          INTEGER NOT NULL,
			settled_at          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_escrow_tasks_status ON escrow_tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_escrow_tasks_seq ON escrow_tasks(created_seq)`,

		// Review bounties: requester-released settlement
		`CREATE TABLE IF NOT EXISTS review_requests (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			requester   TEXT NOT NULL,
			reviewer    TEXT NOT NULL,
			bounty      INTEGER NOT NULL,
			fee         INTEGER NOT NULL,
			status      TEXT NOT NULL,
			created_seq INTEGER NOT NULL,
			created_at  INTEGER NOT NULL,
			settled_at  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_requests_status ON review_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_review_requests_seq ON review_requests(created_seq)`,

		// Treasury: single-row accumulator for platform fees
		`CREATE TABLE IF NOT EXISTS treasury (
			id        INTEGER PRIMARY KEY CHECK (id = 1),
			balance   INTEGER NOT NULL DEFAULT 0,
			accrued   INTEGER NOT NULL DEFAULT 0,
			withdrawn INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT OR IGNORE INTO treasury (id) VALUES (1)`,

		// Monotonic counters shared across escrow kinds
		`CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,

		// Double-entry book ledger (matched DEBIT/CREDIT rows per ref)
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ref        TEXT NOT NULL,
			kind       TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			account    TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			balance    INTEGER NOT NULL,
			memo       TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_ref ON ledger_entries(ref)`,

		// Node identity and bookkeeping
		`CREATE TABLE IF NOT EXISTS node_info (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Node Info ──────────────────────────────────────────────────────────────

// SetNodeInfo stores a key-value pair in node_info.
func (d *DB) SetNodeInfo(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO node_info (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetNodeInfo retrieves a value from node_info.
func (d *DB) GetNodeInfo(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM node_info WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Counters ───────────────────────────────────────────────────────────────

// NextCounter atomically increments and returns the named counter.
// Counters start at 1.
func (d *DB) NextCounter(name string) (int64, error) {
	_, err := d.db.Exec(
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`,
		name,
	)
	if err != nil {
		return 0, err
	}
	var value int64
	err = d.db.QueryRow(`SELECT value FROM counters WHERE name = ?`, name).Scan(&value)
	return value, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
