// Package song defines the data model for the worship song library:
// individual songs with their attached sheet image, and date-keyed
// worship lists holding denormalized song snapshots.
package song

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/franz/worshipnote/internal/util"
	"github.com/google/uuid"
)

// Song is a single worship song and its associated sheet-music asset.
// FileName is the reliable link to the on-disk sheet; FilePath is advisory
// and may be stale or use another platform's path syntax.
type Song struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Chord       string `json:"chord"`
	Tempo       string `json:"tempo"`
	FirstLyrics string `json:"firstLyrics"`
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// songJSON mirrors Song on the wire plus the historical split chord fields.
// Older databases stored the musical key in "key" (and occasionally "code")
// before the fields were merged into "chord".
type songJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Chord       string `json:"chord"`
	Key         string `json:"key,omitempty"`
	Code        string `json:"code,omitempty"`
	Tempo       string `json:"tempo"`
	FirstLyrics string `json:"firstLyrics"`
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// UnmarshalJSON folds the legacy key/code fields into Chord when Chord is absent.
func (s *Song) UnmarshalJSON(data []byte) error {
	var raw songJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	chord := raw.Chord
	if chord == "" {
		chord = raw.Key
	}
	if chord == "" {
		chord = raw.Code
	}

	*s = Song{
		ID:          raw.ID,
		Title:       raw.Title,
		Chord:       chord,
		Tempo:       raw.Tempo,
		FirstLyrics: raw.FirstLyrics,
		FileName:    raw.FileName,
		FilePath:    raw.FilePath,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	return nil
}

// New creates a Song with a freshly minted id and current timestamps.
// File fields start empty; a sheet is attached separately.
func New(title, chord, tempo, firstLyrics string) (*Song, error) {
	now := Now()
	s := &Song{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Chord:       strings.TrimSpace(chord),
		Tempo:       strings.TrimSpace(tempo),
		FirstLyrics: strings.TrimSpace(firstLyrics),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the fields every consumer relies on
func (s *Song) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("song id is required: %w", util.ErrInvalidInput)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title is required: %w", util.ErrInvalidInput)
	}
	return nil
}

// Touch updates the modification timestamp
func (s *Song) Touch() {
	s.UpdatedAt = Now()
}

// Now returns the current UTC time in the ISO-8601 form used throughout
// the persisted documents
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FindByID returns the song with the given id, or nil
func FindByID(songs []Song, id string) *Song {
	for i := range songs {
		if songs[i].ID == id {
			return &songs[i]
		}
	}
	return nil
}
