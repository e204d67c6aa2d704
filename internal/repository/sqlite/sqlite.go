// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. No separate database server to install, configure, or manage. For a
// single-server site like this one it is entirely sufficient, and the
// ":memory:" data source makes repository tests fast and hermetic.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// The server owns the lifecycle: New opens it, Close shuts it down.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite connection pool and runs migrations.
//
// dbPath examples:
//   - "data/whisperwall.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping forces it so that a bad path
	// or permissions problem surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — multiple
	// request handlers share this pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// UNIQUENESS:
// username is UNIQUE — local registration enforces one account per login
// name at the storage layer, not just by lookup-then-insert (which races).
// google_subject is UNIQUE but nullable — NULLs don't collide, so the
// constraint only binds accounts that actually have a Google identity. This
// closes the duplicate-account race on concurrent first-time Google logins.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			username       TEXT NOT NULL UNIQUE,
			credential     TEXT NOT NULL DEFAULT '',
			google_subject TEXT UNIQUE,
			secret         TEXT,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	return nil
}
