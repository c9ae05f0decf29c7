package reconcile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/worshipnote/internal/codec"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

// Match links one loose file to the song it was recovered for
type Match struct {
	File   string
	SongID string
	Title  string
}

// MatchReport summarizes a directory recovery pass. Ambiguous files are never
// auto-resolved; both they and unmatched files are reported for manual triage.
type MatchReport struct {
	Matched   []Match
	Ambiguous []string
	Unmatched []string
	Owned     int // files already referenced by a song record, left alone
}

// MatchDirectory scans the sheets directory and attempts to recover the
// owning song for every file no song record currently references.
func (r *Reconciler) MatchDirectory(songs []song.Song) (*MatchReport, error) {
	names, err := r.files.ListDir(r.sheetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets directory: %w", err)
	}

	owned := make(map[string]bool, len(songs))
	for i := range songs {
		if songs[i].FileName != "" {
			owned[songs[i].FileName] = true
		}
	}

	report := &MatchReport{}
	for _, name := range names {
		if !isSheetFile(name) {
			continue
		}
		if owned[name] {
			report.Owned++
			continue
		}

		matched, err := r.MatchFileToSong(name, songs)
		switch {
		case err == nil:
			report.Matched = append(report.Matched, Match{File: name, SongID: matched.ID, Title: matched.Title})
		case errors.Is(err, util.ErrAmbiguousMatch):
			report.Ambiguous = append(report.Ambiguous, name)
		default:
			report.Unmatched = append(report.Unmatched, name)
		}
	}
	return report, nil
}

// AdoptFile renames a sheet file to the canonical name for s and returns the
// new leaf filename. Used when attaching a sheet to a song and when applying
// a recovery match. The record is only updated by the caller after success.
func (r *Reconciler) AdoptFile(s *song.Song, fileName string) (string, error) {
	canonical, err := codec.CanonicalFileName(s)
	if err != nil {
		return "", err
	}
	if fileName == canonical {
		return canonical, nil
	}

	oldPath := filepath.Join(r.sheetsDir, fileName)
	if !r.files.Exists(oldPath) {
		return "", fmt.Errorf("sheet %s: %w", fileName, util.ErrSourceFileMissing)
	}

	newPath := filepath.Join(r.sheetsDir, canonical)
	if err := r.files.Rename(oldPath, newPath); err != nil {
		r.logger.LogRename(s.ID, fileName, canonical, err)
		return "", err
	}

	r.logger.LogRename(s.ID, fileName, canonical, nil)
	return canonical, nil
}

// isSheetFile reports whether name looks like a sheet image
func isSheetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
