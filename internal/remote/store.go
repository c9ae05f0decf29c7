// Package remote reads and writes the cloud-synced database folder. The
// folder is a plain directory kept in sync by the cloud client (OneDrive
// or similar); this package only does careful file IO against it and maps
// failures to ErrRemoteUnavailable so callers can fall back to the local
// cache.
package remote

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

const (
	// SongsFile is the song collection document inside the database folder.
	SongsFile = "songs.json"
	// ListsFile is the worship list document inside the database folder.
	ListsFile = "worship_lists.json"

	// lastUpdatedKey is the pseudo-date the legacy format stored inside the
	// worshipLists map. It is folded out on load and back in on save.
	lastUpdatedKey = "lastUpdated"
)

// songsDoc is the on-disk shape of songs.json.
type songsDoc struct {
	Songs       []song.Song `json:"songs"`
	LastUpdated string      `json:"lastUpdated"`
}

// listsDoc is the on-disk shape of worship_lists.json. The lists map is
// kept as raw JSON because the legacy format mixes a string lastUpdated
// value in with the per-date song arrays.
type listsDoc struct {
	WorshipLists map[string]json.RawMessage `json:"worshipLists"`
	LastUpdated  string                     `json:"lastUpdated"`
}

// Store persists the song database as JSON documents in a directory.
type Store struct {
	files fsio.Provider
	dir   string
}

// New creates a store over the given database directory.
func New(files fsio.Provider, dir string) *Store {
	return &Store{files: files, dir: dir}
}

// Dir returns the database directory the store operates on.
func (s *Store) Dir() string {
	return s.dir
}

// Available reports whether the database directory can be reached.
func (s *Store) Available() bool {
	return s.files.Exists(s.dir)
}

// LoadSongs reads the song collection. A missing file is not an error and
// yields an empty collection with an empty timestamp.
func (s *Store) LoadSongs() ([]song.Song, string, error) {
	path := filepath.Join(s.dir, SongsFile)
	if !s.files.Exists(path) {
		return nil, "", nil
	}
	data, err := s.files.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read %s: %v", util.ErrRemoteUnavailable, SongsFile, err)
	}
	var doc songsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("%w: failed to parse %s: %v", util.ErrRemoteUnavailable, SongsFile, err)
	}
	return doc.Songs, doc.LastUpdated, nil
}

// SaveSongs writes the song collection with the given lastUpdated timestamp.
func (s *Store) SaveSongs(songs []song.Song, lastUpdated string) error {
	if songs == nil {
		songs = []song.Song{}
	}
	doc := songsDoc{Songs: songs, LastUpdated: lastUpdated}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", SongsFile, err)
	}
	if err := s.files.WriteFile(filepath.Join(s.dir, SongsFile), data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", util.ErrRemoteUnavailable, SongsFile, err)
	}
	return nil
}

// LoadLists reads the worship lists. The legacy format stores lastUpdated
// as a magic key inside the worshipLists map; both placements are accepted
// and the key never appears in the returned map. A missing file yields an
// empty collection with an empty timestamp.
func (s *Store) LoadLists() (song.WorshipLists, string, error) {
	path := filepath.Join(s.dir, ListsFile)
	if !s.files.Exists(path) {
		return song.WorshipLists{}, "", nil
	}
	data, err := s.files.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read %s: %v", util.ErrRemoteUnavailable, ListsFile, err)
	}
	var doc listsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("%w: failed to parse %s: %v", util.ErrRemoteUnavailable, ListsFile, err)
	}

	lists := make(song.WorshipLists, len(doc.WorshipLists))
	lastUpdated := doc.LastUpdated
	for key, raw := range doc.WorshipLists {
		if key == lastUpdatedKey {
			var ts string
			if err := json.Unmarshal(raw, &ts); err == nil && lastUpdated == "" {
				lastUpdated = ts
			}
			continue
		}
		var entries []song.Song
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, "", fmt.Errorf("%w: failed to parse list %s: %v", util.ErrRemoteUnavailable, key, err)
		}
		lists[key] = entries
	}
	return lists, lastUpdated, nil
}

// SaveLists writes the worship lists, folding lastUpdated back into the
// map the way the legacy format expects.
func (s *Store) SaveLists(lists song.WorshipLists, lastUpdated string) error {
	raw := make(map[string]json.RawMessage, len(lists)+1)
	for key, entries := range lists {
		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to encode list %s: %w", key, err)
		}
		raw[key] = data
	}
	if lastUpdated != "" {
		ts, err := json.Marshal(lastUpdated)
		if err != nil {
			return fmt.Errorf("failed to encode timestamp: %w", err)
		}
		raw[lastUpdatedKey] = ts
	}
	doc := listsDoc{WorshipLists: raw, LastUpdated: lastUpdated}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ListsFile, err)
	}
	if err := s.files.WriteFile(filepath.Join(s.dir, ListsFile), data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", util.ErrRemoteUnavailable, ListsFile, err)
	}
	return nil
}

// Timestamps returns the lastUpdated values of both documents without
// materializing the collections. Missing files yield empty strings.
func (s *Store) Timestamps() (songsTS, listsTS string, err error) {
	_, songsTS, err = s.LoadSongs()
	if err != nil {
		return "", "", err
	}
	_, listsTS, err = s.LoadLists()
	if err != nil {
		return "", "", err
	}
	return songsTS, listsTS, nil
}
