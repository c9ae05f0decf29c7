package repo

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/franz/worshipnote/internal/cache"
	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/remote"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

type fixture struct {
	repo  *Repository
	cache *cache.Cache
	store *remote.Store
	fs    afero.Fs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	fs := afero.NewMemMapFs()
	store := remote.New(fsio.New(fs, util.NoRetryConfig()), "/db")
	return &fixture{repo: New(c, store, nil), cache: c, store: store, fs: fs}
}

func TestLoadPullsNewerRemote(t *testing.T) {
	f := newFixture(t)

	stale := []song.Song{{ID: "1", Title: "Old Title"}}
	if err := f.cache.SaveSongs(stale, "2024-01-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	fresh := []song.Song{{ID: "1", Title: "New Title"}, {ID: "2", Title: "Second"}}
	if err := f.store.SaveSongs(fresh, "2024-02-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}

	decision := f.repo.Load()
	if !decision.Songs.NeedsPull {
		t.Fatal("expected a songs pull")
	}
	songs := f.repo.Songs()
	if len(songs) != 2 || songs[0].Title != "New Title" {
		t.Errorf("remote data not adopted: %+v", songs)
	}

	// The pull is written back so the next load matches the remote clock.
	cached, ts, err := f.cache.LoadSongs()
	if err != nil {
		t.Fatal(err)
	}
	if ts != "2024-02-01T00:00:00Z" || len(cached) != 2 {
		t.Errorf("cache not refreshed: ts %q, %d songs", ts, len(cached))
	}
}

func TestLoadKeepsLocalWhenRemoteOlder(t *testing.T) {
	f := newFixture(t)

	local := []song.Song{{ID: "1", Title: "Current"}}
	f.cache.SaveSongs(local, "2024-02-01T00:00:00Z")
	f.store.SaveSongs([]song.Song{{ID: "1", Title: "Stale"}}, "2024-01-01T00:00:00Z")

	decision := f.repo.Load()
	if decision.Songs.NeedsPull {
		t.Error("pulled an older remote snapshot")
	}
	if songs := f.repo.Songs(); len(songs) != 1 || songs[0].Title != "Current" {
		t.Errorf("local data not kept: %+v", songs)
	}
}

func TestLoadFallsBackWhenRemoteCorrupt(t *testing.T) {
	f := newFixture(t)

	local := []song.Song{{ID: "1", Title: "Cached"}}
	f.cache.SaveSongs(local, "2024-01-01T00:00:00Z")
	afero.WriteFile(f.fs, "/db/songs.json", []byte("{broken"), 0o644)

	f.repo.Load()
	if songs := f.repo.Songs(); len(songs) != 1 || songs[0].Title != "Cached" {
		t.Errorf("did not fall back to cached data: %+v", songs)
	}
}

func TestLoadSeedsWhenBothEmpty(t *testing.T) {
	f := newFixture(t)

	f.repo.Load()
	if songs := f.repo.Songs(); len(songs) == 0 {
		t.Error("expected the embedded seed on a first run")
	}
}

func TestSaveSongsRemoteFailureIsSoft(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// A read-only filesystem makes every remote write fail.
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := remote.New(fsio.New(fs, util.NoRetryConfig()), "/db")
	r := New(c, store, nil)

	status := r.SaveSongs([]song.Song{{ID: "1", Title: "Only Local"}})
	if !status.LocalOK {
		t.Fatal("local write should have succeeded")
	}
	if status.RemoteErr == nil {
		t.Fatal("expected a remote error")
	}
	if !errors.Is(status.RemoteErr, util.ErrRemoteUnavailable) {
		t.Errorf("remote error = %v", status.RemoteErr)
	}

	cached, _, err := c.LoadSongs()
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 1 || cached[0].Title != "Only Local" {
		t.Errorf("data not durable locally: %+v", cached)
	}
}

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	f := newFixture(t)

	songs := []song.Song{{ID: "1", Title: "Amazing Grace", Chord: "C"}}
	lists := song.WorshipLists{"2024-01-07": {songs[0]}}
	f.repo.SaveSongs(songs)
	f.repo.SaveLists(lists)

	files := fsio.New(f.fs, util.NoRetryConfig())
	path, stats, err := f.repo.Backup(files, "/backups")
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "worshipnote-backup-") {
		t.Errorf("backup name = %q", filepath.Base(path))
	}
	if stats.TotalSongs != 1 || stats.TotalWorshipLists != 1 || stats.TotalWorshipListSongs != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.BackupSize == 0 {
		t.Error("backup size not recorded")
	}

	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		t.Fatal(err)
	}

	// Wipe and restore into a fresh repository over the same stores.
	f.repo.SaveSongs(nil)
	f.repo.SaveLists(nil)

	restored, status, err := f.repo.Restore(data)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !status.OK() {
		t.Errorf("restore status = %+v", status)
	}
	if len(restored.Songs) != 1 || restored.Songs[0].Title != "Amazing Grace" {
		t.Errorf("restored songs = %+v", restored.Songs)
	}
	if got := f.repo.Lists(); len(got["2024-01-07"]) != 1 {
		t.Errorf("restored lists = %+v", got)
	}
}

func TestBackupNeverOverwritesPriorSnapshots(t *testing.T) {
	f := newFixture(t)
	files := fsio.New(f.fs, util.NoRetryConfig())

	f.repo.SaveSongs([]song.Song{{ID: "1", Title: "First State"}})
	first, _, err := f.repo.Backup(files, "/backups")
	if err != nil {
		t.Fatalf("first backup failed: %v", err)
	}

	// A second snapshot of a different state in the same second must get
	// its own name and leave the first file untouched.
	f.repo.SaveSongs([]song.Song{{ID: "1", Title: "Second State"}, {ID: "2", Title: "Extra"}})
	second, _, err := f.repo.Backup(files, "/backups")
	if err != nil {
		t.Fatalf("second backup failed: %v", err)
	}
	if first == second {
		t.Fatalf("both snapshots wrote to %s", first)
	}

	data, err := afero.ReadFile(f.fs, first)
	if err != nil {
		t.Fatalf("first snapshot gone: %v", err)
	}
	var doc struct {
		Songs []song.Song `json:"songs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Songs) != 1 || doc.Songs[0].Title != "First State" {
		t.Errorf("first snapshot mutated: %+v", doc.Songs)
	}
}

func TestRestoreRejectsBadDocuments(t *testing.T) {
	f := newFixture(t)
	f.repo.SaveSongs([]song.Song{{ID: "keep", Title: "Untouched"}})

	tests := []struct {
		name string
		data string
	}{
		{"not json", "plainly not json"},
		{"wrong type", `{"type":"notes","songs":[],"worshipLists":{}}`},
		{"non-string type", `{"type":123,"songs":[],"worshipLists":{}}`},
		{"missing songs", `{"type":"worshipnote_database","worshipLists":{}}`},
		{"missing lists", `{"type":"worshipnote_database","songs":[]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.repo.Restore([]byte(tc.data))
			if !errors.Is(err, util.ErrInvalidBackupFormat) {
				t.Errorf("expected ErrInvalidBackupFormat, got %v", err)
			}
		})
	}

	// Rejected documents must not disturb the stores.
	if songs := f.repo.Songs(); len(songs) != 1 || songs[0].ID != "keep" {
		t.Errorf("store mutated by a rejected restore: %+v", songs)
	}
}

func TestRestoreAcceptsLegacyTypeTag(t *testing.T) {
	f := newFixture(t)

	doc := `{"type":"database","songs":[{"id":"1","title":"Legacy"}],"worshipLists":{}}`
	restored, _, err := f.repo.Restore([]byte(doc))
	if err != nil {
		t.Fatalf("legacy tag rejected: %v", err)
	}
	if len(restored.Songs) != 1 || restored.Songs[0].Title != "Legacy" {
		t.Errorf("restored = %+v", restored.Songs)
	}
}
