// Package cache is the local durability floor: a SQLite mirror of both
// collections plus the last-saved timestamps the sync comparator needs.
// Every save lands here first; the remote store is best-effort on top.
package cache

import (
	"database/sql"
	"fmt"

	"github.com/franz/worshipnote/internal/song"
	_ "modernc.org/sqlite" // SQLite driver
)

const currentSchemaVersion = 1

// Meta keys for the per-collection last-saved timestamps
const (
	metaSongsSavedAt = "songs_saved_at"
	metaListsSavedAt = "lists_saved_at"
)

// Cache wraps the local SQLite database
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path
func Open(path string) (*Cache, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return c, nil
}

// Close closes the database connection
func (c *Cache) Close() error {
	return c.db.Close()
}

// CheckIntegrity runs PRAGMA integrity_check
func (c *Cache) CheckIntegrity() error {
	var result string
	if err := c.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// SaveSongs replaces the cached songs collection wholesale and records savedAt
func (c *Cache) SaveSongs(songs []song.Song, savedAt string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO songs
		(id, title, chord, tempo, first_lyrics, file_name, file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range songs {
		if _, err := stmt.Exec(s.ID, s.Title, s.Chord, s.Tempo, s.FirstLyrics,
			s.FileName, s.FilePath, s.CreatedAt, s.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert song %s: %w", s.ID, err)
		}
	}

	if err := setMeta(tx, metaSongsSavedAt, savedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSongs returns the cached songs and the timestamp they were saved at.
// An empty cache yields an empty slice and an empty timestamp, not an error.
func (c *Cache) LoadSongs() ([]song.Song, string, error) {
	rows, err := c.db.Query(`SELECT id, title, chord, tempo, first_lyrics,
		file_name, file_path, created_at, updated_at FROM songs ORDER BY title, id`)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []song.Song
	for rows.Next() {
		var s song.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Chord, &s.Tempo, &s.FirstLyrics,
			&s.FileName, &s.FilePath, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	savedAt, err := c.getMeta(metaSongsSavedAt)
	if err != nil {
		return nil, "", err
	}
	return songs, savedAt, nil
}

// SaveLists replaces the cached worship lists wholesale and records savedAt
func (c *Cache) SaveLists(lists song.WorshipLists, savedAt string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM worship_list_entries"); err != nil {
		return fmt.Errorf("failed to clear worship list entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO worship_list_entries
		(date_key, position, song_id, title, chord, tempo, first_lyrics,
		 file_name, file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, date := range lists.Dates() {
		for pos, e := range lists[date] {
			if _, err := stmt.Exec(date, pos, e.ID, e.Title, e.Chord, e.Tempo,
				e.FirstLyrics, e.FileName, e.FilePath, e.CreatedAt, e.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert entry %s[%d]: %w", date, pos, err)
			}
		}
	}

	if err := setMeta(tx, metaListsSavedAt, savedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadLists returns the cached worship lists and their saved-at timestamp
func (c *Cache) LoadLists() (song.WorshipLists, string, error) {
	rows, err := c.db.Query(`SELECT date_key, song_id, title, chord, tempo,
		first_lyrics, file_name, file_path, created_at, updated_at
		FROM worship_list_entries ORDER BY date_key, position`)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query worship list entries: %w", err)
	}
	defer rows.Close()

	lists := song.WorshipLists{}
	for rows.Next() {
		var date string
		var e song.Song
		if err := rows.Scan(&date, &e.ID, &e.Title, &e.Chord, &e.Tempo,
			&e.FirstLyrics, &e.FileName, &e.FilePath, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan entry: %w", err)
		}
		lists[date] = append(lists[date], e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	savedAt, err := c.getMeta(metaListsSavedAt)
	if err != nil {
		return nil, "", err
	}
	return lists, savedAt, nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

func (c *Cache) getMeta(key string) (string, error) {
	var value string
	err := c.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}
