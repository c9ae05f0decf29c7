package repo

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/report"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

// BackupType tags snapshot documents so restore can reject arbitrary JSON.
// Older snapshots used the bare "database" tag and are still accepted.
const (
	BackupType       = "worshipnote_database"
	legacyBackupType = "database"
	backupVersion    = "1.0"
)

// BackupStats summarizes a snapshot for display and for the document's own
// stats block.
type BackupStats struct {
	TotalSongs            int `json:"totalSongs"`
	TotalWorshipLists     int `json:"totalWorshipLists"`
	TotalWorshipListSongs int `json:"totalWorshipListSongs"`
	BackupSize            int `json:"backupSize"`
}

// backupDoc is the snapshot file shape.
type backupDoc struct {
	Version      string            `json:"version"`
	Type         string            `json:"type"`
	BackupDate   string            `json:"backupDate"`
	Songs        []song.Song       `json:"songs"`
	WorshipLists song.WorshipLists `json:"worshipLists"`
	Stats        BackupStats       `json:"stats"`
}

// Backup writes a full snapshot of both collections into dir. Snapshot
// files are append-only: each carries a timestamped name and existing
// snapshots are never touched.
func (r *Repository) Backup(files fsio.Provider, dir string) (string, *BackupStats, error) {
	r.songsMu.RLock()
	songs := make([]song.Song, len(r.songs))
	copy(songs, r.songs)
	r.songsMu.RUnlock()

	r.listsMu.RLock()
	lists := r.lists.Clone()
	r.listsMu.RUnlock()

	doc := backupDoc{
		Version:      backupVersion,
		Type:         BackupType,
		BackupDate:   song.Now(),
		Songs:        songs,
		WorshipLists: lists,
		Stats: BackupStats{
			TotalSongs:            len(songs),
			TotalWorshipLists:     len(lists),
			TotalWorshipListSongs: lists.TotalSongs(),
		},
	}

	// Size the document once, then re-encode with the size filled in. The
	// second encoding grows by at most the digits added, which is close
	// enough for a stats field.
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	doc.Stats.BackupSize = len(data)
	data, err = json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	// The timestamp is second-granular, so back-to-back snapshots (the
	// restore flow takes one automatically) can land on the same name. A
	// numeric suffix keeps every name unique; existing snapshots are never
	// overwritten.
	stamp := time.Now().UTC().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("worshipnote-backup-%s.json", stamp))
	for i := 2; files.Exists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("worshipnote-backup-%s-%d.json", stamp, i))
	}
	if err := files.WriteFile(path, data); err != nil {
		r.logger.LogError(report.EventBackup, path, err)
		return "", nil, fmt.Errorf("failed to write backup: %w", err)
	}

	r.logger.LogBackup(path, doc.Stats.TotalSongs, doc.Stats.TotalWorshipLists)
	stats := doc.Stats
	return path, &stats, nil
}

// Restore replaces both collections from a snapshot document. The document
// must carry a recognized type tag and both collection keys; anything else
// is rejected before any store is touched. On success both collections are
// written through the normal dual-write path and the combined status is
// returned alongside the restored data.
func (r *Repository) Restore(data []byte) (*Collections, SaveStatus, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, SaveStatus{}, fmt.Errorf("%w: not a JSON document: %v", util.ErrInvalidBackupFormat, err)
	}

	var typ string
	if raw, ok := probe["type"]; ok {
		if err := json.Unmarshal(raw, &typ); err != nil {
			return nil, SaveStatus{}, fmt.Errorf("%w: type tag is not a string", util.ErrInvalidBackupFormat)
		}
	}
	if typ != BackupType && typ != legacyBackupType {
		return nil, SaveStatus{}, fmt.Errorf("%w: unrecognized type %q", util.ErrInvalidBackupFormat, typ)
	}
	if _, ok := probe["songs"]; !ok {
		return nil, SaveStatus{}, fmt.Errorf("%w: missing songs", util.ErrInvalidBackupFormat)
	}
	if _, ok := probe["worshipLists"]; !ok {
		return nil, SaveStatus{}, fmt.Errorf("%w: missing worshipLists", util.ErrInvalidBackupFormat)
	}

	var doc backupDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, SaveStatus{}, fmt.Errorf("%w: %v", util.ErrInvalidBackupFormat, err)
	}
	if doc.WorshipLists == nil {
		doc.WorshipLists = song.WorshipLists{}
	}

	status := r.SaveSongs(doc.Songs)
	if !status.LocalOK {
		return nil, status, fmt.Errorf("failed to restore songs to the local cache")
	}
	listsStatus := r.SaveLists(doc.WorshipLists)
	if !listsStatus.LocalOK {
		return nil, listsStatus, fmt.Errorf("failed to restore worship lists to the local cache")
	}
	if status.RemoteErr == nil {
		status.RemoteErr = listsStatus.RemoteErr
	}

	r.logger.LogRestore(doc.BackupDate, nil)
	return &Collections{Songs: doc.Songs, Lists: doc.WorshipLists}, status, nil
}
