package database

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection shared by all repositories.
type DB struct {
	*sql.DB
}

// NewConnection opens (or creates) the SQLite database inside dataDir.
func NewConnection(dataDir string) (*DB, error) {
	path := filepath.Join(dataDir, "tributary.db")

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite tolerates a single writer; the refresh reconciliation phase is
	// serial, so one connection avoids SQLITE_BUSY churn.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{conn}, nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting repositories run
// inside or outside an explicit transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
