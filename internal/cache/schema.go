package cache

import (
	"database/sql"
	"fmt"
)

// Schema v1 - songs mirror, worship-list entry mirror, and meta timestamps
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Master song collection
CREATE TABLE IF NOT EXISTS songs (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  chord TEXT,
  tempo TEXT,
  first_lyrics TEXT,
  file_name TEXT,
  file_path TEXT,
  created_at TEXT,
  updated_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_songs_title ON songs(title);

-- Denormalized set-list snapshots, one row per (date, position)
CREATE TABLE IF NOT EXISTS worship_list_entries (
  date_key TEXT NOT NULL,
  position INTEGER NOT NULL,
  song_id TEXT NOT NULL,
  title TEXT NOT NULL,
  chord TEXT,
  tempo TEXT,
  first_lyrics TEXT,
  file_name TEXT,
  file_path TEXT,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (date_key, position)
);

CREATE INDEX IF NOT EXISTS idx_entries_song_id ON worship_list_entries(song_id);

-- Saved-at timestamps and other key/value state
CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT
);
`

// migrate applies database migrations up to currentSchemaVersion
func (c *Cache) migrate() error {
	version, err := c.getSchemaVersion()
	if err != nil {
		return err
	}
	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		if err := setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	// Future migrations would go here:
	// if version < 2 { ... }

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

// getSchemaVersion returns the current schema version, 0 when no schema exists
func (c *Cache) getSchemaVersion() (int, error) {
	var exists int
	err := c.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}
