package store

import (
	"database/sql"
	"fmt"
)

// Migrate brings the schema up to the current user_version.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS applications (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  role TEXT NOT NULL,
  education TEXT NOT NULL,
  motivation TEXT NOT NULL,
  availability TEXT NOT NULL,
  experience TEXT NOT NULL DEFAULT '',
  skills TEXT NOT NULL DEFAULT '',
  resume_ref TEXT,
  applied_at TEXT NOT NULL,
  status TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("create applications: %w", err)
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS attachments (
  key TEXT PRIMARY KEY,
  content_type TEXT NOT NULL,
  bytes BLOB NOT NULL,
  stored_at TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("create attachments: %w", err)
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_applications_status
ON applications(status);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
