package remote

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

func newTestStore() (*Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	return New(fsio.New(fs, util.NoRetryConfig()), "/db"), fs
}

func TestLoadSongsMissingFile(t *testing.T) {
	s, _ := newTestStore()

	songs, ts, err := s.LoadSongs()
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if len(songs) != 0 || ts != "" {
		t.Errorf("got %d songs, ts %q", len(songs), ts)
	}
}

func TestSongsRoundTrip(t *testing.T) {
	s, _ := newTestStore()

	in := []song.Song{
		{ID: "1", Title: "Amazing Grace", Chord: "C", FileName: "Amazing Grace (C) (1).jpg"},
		{ID: "2", Title: "Doxology", Chord: "G"},
	}
	if err := s.SaveSongs(in, "2024-03-01T10:00:00Z"); err != nil {
		t.Fatalf("SaveSongs failed: %v", err)
	}

	got, ts, err := s.LoadSongs()
	if err != nil {
		t.Fatalf("LoadSongs failed: %v", err)
	}
	if ts != "2024-03-01T10:00:00Z" {
		t.Errorf("lastUpdated = %q", ts)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadSongsCorruptFile(t *testing.T) {
	s, fs := newTestStore()
	afero.WriteFile(fs, "/db/songs.json", []byte("{not json"), 0o644)

	_, _, err := s.LoadSongs()
	if !errors.Is(err, util.ErrRemoteUnavailable) {
		t.Errorf("expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestLoadListsFoldsLegacyTimestampKey(t *testing.T) {
	s, fs := newTestStore()
	// The legacy writer kept lastUpdated inside the worshipLists map.
	doc := `{"worshipLists":{
		"2024-01-07":[{"id":"1","title":"Amazing Grace","chord":"C"}],
		"lastUpdated":"2024-01-08T09:00:00Z"
	}}`
	afero.WriteFile(fs, "/db/worship_lists.json", []byte(doc), 0o644)

	lists, ts, err := s.LoadLists()
	if err != nil {
		t.Fatalf("LoadLists failed: %v", err)
	}
	if ts != "2024-01-08T09:00:00Z" {
		t.Errorf("lastUpdated = %q", ts)
	}
	if _, ok := lists[lastUpdatedKey]; ok {
		t.Error("magic key leaked into the in-memory map")
	}
	if len(lists["2024-01-07"]) != 1 || lists["2024-01-07"][0].ID != "1" {
		t.Errorf("list entries not loaded: %+v", lists)
	}
}

func TestLoadListsTopLevelTimestampWins(t *testing.T) {
	s, fs := newTestStore()
	doc := `{"worshipLists":{"lastUpdated":"2024-01-01T00:00:00Z"},"lastUpdated":"2024-02-01T00:00:00Z"}`
	afero.WriteFile(fs, "/db/worship_lists.json", []byte(doc), 0o644)

	_, ts, err := s.LoadLists()
	if err != nil {
		t.Fatal(err)
	}
	if ts != "2024-02-01T00:00:00Z" {
		t.Errorf("lastUpdated = %q, expected the top-level value", ts)
	}
}

func TestSaveListsWritesLegacyShape(t *testing.T) {
	s, fs := newTestStore()

	lists := song.WorshipLists{
		"2024-01-07": {{ID: "1", Title: "Amazing Grace", Chord: "C"}},
	}
	if err := s.SaveLists(lists, "2024-01-08T09:00:00Z"); err != nil {
		t.Fatalf("SaveLists failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "/db/worship_lists.json")
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		WorshipLists map[string]json.RawMessage `json:"worshipLists"`
		LastUpdated  string                     `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written document is not valid JSON: %v", err)
	}
	raw, ok := doc.WorshipLists["lastUpdated"]
	if !ok {
		t.Fatal("timestamp not folded into the worshipLists map")
	}
	if !strings.Contains(string(raw), "2024-01-08T09:00:00Z") {
		t.Errorf("folded timestamp = %s", raw)
	}
	if doc.LastUpdated != "2024-01-08T09:00:00Z" {
		t.Errorf("top-level lastUpdated = %q", doc.LastUpdated)
	}

	// Round trip through the reader keeps the map clean.
	got, ts, err := s.LoadLists()
	if err != nil {
		t.Fatal(err)
	}
	if ts != "2024-01-08T09:00:00Z" || len(got) != 1 {
		t.Errorf("round trip: ts %q, %d lists", ts, len(got))
	}
}

func TestLocateExplicitDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := fsio.New(fs, util.NoRetryConfig())
	fs.MkdirAll("/custom/db", 0o755)

	dir, err := Locate(files, "/custom/db")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if dir != "/custom/db" {
		t.Errorf("dir = %q", dir)
	}

	if _, err := Locate(files, "/does/not/exist"); !errors.Is(err, util.ErrRemoteUnavailable) {
		t.Errorf("expected ErrRemoteUnavailable for a missing explicit dir, got %v", err)
	}
}
