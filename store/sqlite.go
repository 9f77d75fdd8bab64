package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/use-agent/stackscout/models"
)

// SQLiteStore mirrors result records into a SQLite table for ad-hoc queries.
// Like the JSON document it keeps every attempt; there is no unique index.
type SQLiteStore struct {
	db *sql.DB
}

const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    domain TEXT NOT NULL,
    outcome TEXT NOT NULL,
    message TEXT,
    technology_stack TEXT NOT NULL,
    recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_results_domain ON results(domain);
CREATE INDEX IF NOT EXISTS idx_results_outcome ON results(outcome);
`

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		slog.Warn("sqlite: failed to set WAL mode", "error", err)
	}
	if _, err := db.Exec(resultsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts rec as a new row.
func (s *SQLiteStore) Append(rec models.ResultRecord) error {
	stack, err := json.Marshal(rec.TechnologyStack)
	if err != nil {
		return fmt.Errorf("store: encode stack: %w", err)
	}

	recordedAt := time.Now().UTC()
	if rec.RecordedAt != nil {
		recordedAt = rec.RecordedAt.UTC()
	}

	const stmt = `INSERT INTO results
        (domain, outcome, message, technology_stack, recorded_at)
        VALUES (?, ?, ?, ?, ?);`

	if _, err := s.db.Exec(stmt,
		rec.Domain,
		string(rec.Outcome),
		rec.Message,
		string(stack),
		recordedAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("store: insert result for %s: %w", rec.Domain, err)
	}
	return nil
}

// CountByDomain returns how many rows exist for domain.
func (s *SQLiteStore) CountByDomain(domain string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE domain = ?`, domain).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count %s: %w", domain, err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
