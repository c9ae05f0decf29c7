// Package codec maps between a song's identifying fields and the
// filesystem-safe name of its sheet image, and back. The canonical form
// embeds title, chord, and id so the song can be recovered from the
// filename alone, without the database.
package codec

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
	"golang.org/x/text/unicode/norm"
)

// Extension is the only extension the codec generates. Sheets are converted
// to JPEG before storage, so PDFs and PNGs never reach the canonical namer.
const Extension = ".jpg"

// maxTitleLen bounds the sanitized title so the full name stays well inside
// filesystem limits
const maxTitleLen = 200

// chordClass matches a musical key: one uppercase letter A-G, optional
// accidental, optional minor marker
const chordClass = `[A-G][b#]?m?`

// canonicalRe matches the stem of a canonical filename:
// "<title> (<chord>) (<id>)". Canonicality is judged against this current
// rule only; names produced by earlier format generations are legacy.
var canonicalRe = regexp.MustCompile(`^(.+?)\s+\((` + chordClass + `)\)\s+\(([^()]+)\)$`)

// pageFractionRe matches a trailing "<N>/<M>" page fragment in a title
var pageFractionRe = regexp.MustCompile(`^(.*?)\s*(\d+)\s*/\s*\d+$`)

// illegalChars replaces every character that is unsafe in a filename with "-"
var illegalChars = strings.NewReplacer(
	"<", "-",
	">", "-",
	":", "-",
	"\"", "-",
	"/", "-",
	"\\", "-",
	"|", "-",
	"?", "-",
	"*", "-",
)

// FileInfo holds the components recovered from a sheet filename
type FileInfo struct {
	Title     string
	Chord     string
	ID        string
	Page      int // trailing page token from legacy multi-page names, 0 if none
	Canonical bool
}

// NormalizeTitle rewrites a trailing page fraction ("Song 2/2") to just the
// numerator ("Song 2"). Multi-page songs were historically titled with the
// fraction; the filename carries only the page number.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	m := pageFractionRe.FindStringSubmatch(title)
	if m == nil {
		return title
	}
	base := strings.TrimSpace(m[1])
	if base == "" {
		return m[2]
	}
	return base + " " + m[2]
}

// Sanitize makes a field safe for use in a filename. Internal whitespace is
// preserved; only leading/trailing whitespace is trimmed.
func Sanitize(s string) string {
	s = norm.NFC.String(s)
	s = illegalChars.Replace(s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxTitleLen {
		s = string(r[:maxTitleLen])
	}
	return s
}

// CanonicalFileName derives the canonical sheet filename for a song.
// Deterministic: the same fields always produce the same name, byte for byte.
func CanonicalFileName(s *song.Song) (string, error) {
	if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Title) == "" {
		return "", fmt.Errorf("canonical filename needs id and title: %w", util.ErrInvalidInput)
	}

	title := Sanitize(NormalizeTitle(s.Title))
	chord := Sanitize(s.Chord)

	if chord == "" {
		return fmt.Sprintf("%s (%s)%s", title, s.ID, Extension), nil
	}
	return fmt.Sprintf("%s (%s) (%s)%s", title, chord, s.ID, Extension), nil
}

// IsCanonicalFileName reports whether name already follows the current
// canonical rule. Legacy formats return false even though some of them were
// canonical under earlier rules.
func IsCanonicalFileName(name string) bool {
	return canonicalRe.MatchString(stem(name))
}

// ParseFileName parses a sheet filename. It never fails: when the canonical
// pattern does not match, the whole stem is returned as an unverified title.
func ParseFileName(name string) *FileInfo {
	st := stem(name)
	if m := canonicalRe.FindStringSubmatch(st); m != nil {
		return &FileInfo{Title: m[1], Chord: m[2], ID: m[3], Canonical: true}
	}
	return &FileInfo{Title: st}
}

// stem strips the directory and extension from a filename
func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
