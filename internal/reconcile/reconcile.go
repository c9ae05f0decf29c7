// Package reconcile keeps three things consistent whenever a song's
// identity-relevant fields change: the on-disk sheet filename, the master
// song record, and every denormalized snapshot of the song in the worship
// lists.
package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/worshipnote/internal/codec"
	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/report"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

// Outcome classifies what UpdateFileNameForSong did
type Outcome string

const (
	// OutcomeNoChange - identity fields are unchanged, nothing to do
	OutcomeNoChange Outcome = "no_change"
	// OutcomeNoFile - the song has no sheet attached, nothing to rename
	OutcomeNoFile Outcome = "no_file"
	// OutcomeAlreadyCanonical - the stored name already matches the canonical form
	OutcomeAlreadyCanonical Outcome = "already_canonical"
	// OutcomeRenamed - the sheet file was renamed on disk
	OutcomeRenamed Outcome = "renamed"
)

// RenameResult reports the outcome of a filename update. NewFileName is set
// only for OutcomeRenamed; the caller is responsible for writing it into the
// song record and fanning it out to the worship lists.
type RenameResult struct {
	Outcome     Outcome
	NewFileName string
}

// Reconciler orchestrates sheet renames against the sheets directory
type Reconciler struct {
	files     fsio.Provider
	sheetsDir string
	logger    *report.EventLogger
}

// New creates a Reconciler. logger may be nil.
func New(files fsio.Provider, sheetsDir string, logger *report.EventLogger) *Reconciler {
	return &Reconciler{files: files, sheetsDir: sheetsDir, logger: logger}
}

// UpdateFileNameForSong renames the sheet file when the identity fields
// (title, chord) of newSong differ from oldSong. The on-disk name and the
// record must never diverge: on any failure the filesystem is left untouched
// and no new name is reported.
func (r *Reconciler) UpdateFileNameForSong(oldSong, newSong *song.Song) (*RenameResult, error) {
	if oldSong.Title == newSong.Title && oldSong.Chord == newSong.Chord {
		return &RenameResult{Outcome: OutcomeNoChange}, nil
	}

	if oldSong.FileName == "" {
		return &RenameResult{Outcome: OutcomeNoFile}, nil
	}

	newFileName, err := codec.CanonicalFileName(newSong)
	if err != nil {
		return nil, err
	}
	if newFileName == oldSong.FileName {
		return &RenameResult{Outcome: OutcomeAlreadyCanonical}, nil
	}

	oldPath := filepath.Join(r.sheetsDir, oldSong.FileName)
	if !r.files.Exists(oldPath) {
		return nil, fmt.Errorf("sheet %s: %w", oldSong.FileName, util.ErrSourceFileMissing)
	}

	newPath := filepath.Join(r.sheetsDir, newFileName)
	if err := r.files.Rename(oldPath, newPath); err != nil {
		r.logger.LogRename(newSong.ID, oldSong.FileName, newFileName, err)
		return nil, err
	}

	r.logger.LogRename(newSong.ID, oldSong.FileName, newFileName, nil)
	return &RenameResult{Outcome: OutcomeRenamed, NewFileName: newFileName}, nil
}

// Propagate overwrites every worship-list entry sharing the master song's id
// with the master's current fields. This is the only path by which worship
// list entries are mutated. Order and per-date duplicates are preserved.
// Returns the number of entries updated.
func Propagate(lists song.WorshipLists, master *song.Song) int {
	updated := 0
	for date, entries := range lists {
		for i := range entries {
			if entries[i].ID != master.ID {
				continue
			}
			entries[i].Title = master.Title
			entries[i].Chord = master.Chord
			entries[i].Tempo = master.Tempo
			entries[i].FirstLyrics = master.FirstLyrics
			entries[i].FileName = master.FileName
			entries[i].FilePath = master.FilePath
			entries[i].UpdatedAt = master.UpdatedAt
			updated++
		}
		lists[date] = entries
	}
	return updated
}

// MatchFileToSong recovers the song a loose sheet file belongs to, for
// libraries whose filenames do not embed an id reliably.
//
// A recovered id is authoritative. Failing that, title matching collects
// every song whose title exactly equals, contains, or is contained by the
// recovered title; a unique candidate is accepted, ties are broken by exact
// chord comparison, and remaining ambiguity is reported rather than guessed.
func (r *Reconciler) MatchFileToSong(fileName string, songs []song.Song) (*song.Song, error) {
	info := codec.ParseFileName(fileName)
	if !info.Canonical {
		if legacy := codec.ParseLegacyFileName(fileName); legacy != nil {
			info = legacy
		}
	}

	if info.ID != "" {
		if s := song.FindByID(songs, info.ID); s != nil {
			r.logger.LogMatch(fileName, s.ID, "id")
			return s, nil
		}
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		// Bare-id pattern whose id is unknown: the token may be a one-word title.
		title = strings.TrimSpace(info.ID)
	}
	if title == "" {
		r.logger.LogUnmatched(fileName, "nothing recoverable")
		return nil, fmt.Errorf("file %s: %w", fileName, util.ErrNotFound)
	}

	var candidates []*song.Song
	needle := strings.ToLower(title)
	for i := range songs {
		have := strings.ToLower(strings.TrimSpace(songs[i].Title))
		if have == "" {
			continue
		}
		if have == needle || strings.Contains(have, needle) || strings.Contains(needle, have) {
			candidates = append(candidates, &songs[i])
		}
	}

	switch len(candidates) {
	case 0:
		r.logger.LogUnmatched(fileName, "no title match")
		return nil, fmt.Errorf("file %s: %w", fileName, util.ErrNotFound)
	case 1:
		r.logger.LogMatch(fileName, candidates[0].ID, "title")
		return candidates[0], nil
	}

	// Tie-break on exact chord
	var byChord []*song.Song
	for _, c := range candidates {
		if info.Chord != "" && c.Chord == info.Chord {
			byChord = append(byChord, c)
		}
	}
	if len(byChord) == 1 {
		r.logger.LogMatch(fileName, byChord[0].ID, "title+chord")
		return byChord[0], nil
	}

	r.logger.LogUnmatched(fileName, fmt.Sprintf("%d candidates", len(candidates)))
	return nil, fmt.Errorf("file %s matched %d songs: %w", fileName, len(candidates), util.ErrAmbiguousMatch)
}
