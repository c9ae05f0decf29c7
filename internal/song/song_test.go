package song

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/franz/worshipnote/internal/util"
)

func TestNewMintsIDAndTimestamps(t *testing.T) {
	s, err := New("  Amazing Grace ", "C", "Medium", "Amazing grace how sweet the sound")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.ID == "" {
		t.Error("expected a minted id")
	}
	if s.Title != "Amazing Grace" {
		t.Errorf("Title = %q, expected trimmed %q", s.Title, "Amazing Grace")
	}
	if s.CreatedAt == "" || s.CreatedAt != s.UpdatedAt {
		t.Errorf("expected CreatedAt == UpdatedAt, got %q / %q", s.CreatedAt, s.UpdatedAt)
	}
	if _, err := time.Parse(time.RFC3339, s.CreatedAt); err != nil {
		t.Errorf("CreatedAt %q is not RFC3339: %v", s.CreatedAt, err)
	}

	s2, _ := New("Amazing Grace", "C", "", "")
	if s2.ID == s.ID {
		t.Error("two songs share the same id")
	}
}

func TestNewRejectsEmptyTitle(t *testing.T) {
	_, err := New("   ", "C", "", "")
	if !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateRequiresID(t *testing.T) {
	s := Song{Title: "Amazing Grace"}
	if err := s.Validate(); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestUnmarshalFoldsLegacyKeyIntoChord(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		chord string
	}{
		{"modern chord field", `{"id":"1","title":"t","chord":"G"}`, "G"},
		{"legacy key field", `{"id":"1","title":"t","key":"Em"}`, "Em"},
		{"legacy code field", `{"id":"1","title":"t","code":"D"}`, "D"},
		{"chord wins over key", `{"id":"1","title":"t","chord":"A","key":"B"}`, "A"},
	}

	for _, tt := range tests {
		var s Song
		if err := json.Unmarshal([]byte(tt.data), &s); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", tt.name, err)
		}
		if s.Chord != tt.chord {
			t.Errorf("%s: Chord = %q, expected %q", tt.name, s.Chord, tt.chord)
		}
	}
}

func TestValidDateKey(t *testing.T) {
	valid := []string{"2024-01-07", "1999-12-31"}
	invalid := []string{"lastUpdated", "2024-13-01", "2024-1-7", "", "2024-01-07T00:00:00Z"}

	for _, d := range valid {
		if !ValidDateKey(d) {
			t.Errorf("ValidDateKey(%q) = false, expected true", d)
		}
	}
	for _, d := range invalid {
		if ValidDateKey(d) {
			t.Errorf("ValidDateKey(%q) = true, expected false", d)
		}
	}
}

func TestWorshipListsAppendAndRemove(t *testing.T) {
	lists := WorshipLists{}
	s := Song{ID: "1", Title: "Song"}

	lists.Append("2024-01-07", s)
	lists.Append("2024-01-07", s) // same song twice in one date is legal

	if len(lists["2024-01-07"]) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lists["2024-01-07"]))
	}
	if lists.TotalSongs() != 2 {
		t.Errorf("TotalSongs = %d, expected 2", lists.TotalSongs())
	}

	if !lists.RemoveAt("2024-01-07", 0) {
		t.Error("RemoveAt returned false for valid position")
	}
	if lists.RemoveAt("2024-01-07", 5) {
		t.Error("RemoveAt returned true for out-of-range position")
	}
	if !lists.RemoveAt("2024-01-07", 0) {
		t.Error("RemoveAt returned false for last entry")
	}
	if _, ok := lists["2024-01-07"]; ok {
		t.Error("empty date bucket should be deleted")
	}
}

func TestWorshipListsDatesSorted(t *testing.T) {
	lists := WorshipLists{
		"2024-01-14": {{ID: "1", Title: "a"}},
		"2023-12-24": {{ID: "2", Title: "b"}},
		"2024-01-07": {{ID: "3", Title: "c"}},
	}

	dates := lists.Dates()
	expected := []string{"2023-12-24", "2024-01-07", "2024-01-14"}
	for i, d := range expected {
		if dates[i] != d {
			t.Errorf("Dates()[%d] = %q, expected %q", i, dates[i], d)
		}
	}
}
