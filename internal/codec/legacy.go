package codec

import (
	"regexp"
	"strconv"
	"strings"
)

// legacyPatterns recognizes every filename format earlier versions of the
// library produced. Tried in order; the first match wins. The order is
// load-bearing: several patterns can match the same ambiguous string, and
// historical libraries were recovered under exactly this precedence, so
// reordering would silently relink files.
var legacyPatterns = []struct {
	re      *regexp.Regexp
	extract func(m []string) *FileInfo
}{
	{
		// title_chord_(id) - underscore era, spaces collapsed to underscores
		re: regexp.MustCompile(`^(.+)_(` + chordClass + `)_\(([^()]+)\)$`),
		extract: func(m []string) *FileInfo {
			return &FileInfo{Title: underscoresToSpaces(m[1]), Chord: m[2], ID: m[3]}
		},
	},
	{
		// title_chord_id - underscore era without parens around the id
		re: regexp.MustCompile(`^(.+)_(` + chordClass + `)_([A-Za-z0-9-]+)$`),
		extract: func(m []string) *FileInfo {
			return &FileInfo{Title: underscoresToSpaces(m[1]), Chord: m[2], ID: m[3]}
		},
	},
	{
		// bare alphanumeric id, e.g. "xyz789.jpg"
		re: regexp.MustCompile(`^([A-Za-z0-9-]+)$`),
		extract: func(m []string) *FileInfo {
			return &FileInfo{ID: m[1]}
		},
	},
	{
		// title chord - space separated, chord as bare trailing token
		re: regexp.MustCompile(`^(.+)\s+(` + chordClass + `)$`),
		extract: func(m []string) *FileInfo {
			return &FileInfo{Title: m[1], Chord: m[2]}
		},
	},
	{
		// title (chord)
		re: regexp.MustCompile(`^(.+)\s+\((` + chordClass + `)\)$`),
		extract: func(m []string) *FileInfo {
			return &FileInfo{Title: m[1], Chord: m[2]}
		},
	},
	{
		// title chord number - multi-page, e.g. "Song C 2"
		re: regexp.MustCompile(`^(.+)\s+(` + chordClass + `)\s+(\d+)$`),
		extract: func(m []string) *FileInfo {
			page, _ := strconv.Atoi(m[3])
			return &FileInfo{Title: m[1], Chord: m[2], Page: page}
		},
	},
	{
		// title (chord) number - multi-page with parenthesized chord
		re: regexp.MustCompile(`^(.+)\s+\((` + chordClass + `)\)\s+(\d+)$`),
		extract: func(m []string) *FileInfo {
			page, _ := strconv.Atoi(m[3])
			return &FileInfo{Title: m[1], Chord: m[2], Page: page}
		},
	},
}

// ParseLegacyFileName tries every historical filename pattern against name.
// Returns nil when nothing matches. Used only by the reconciler's recovery
// path; the primary codec never generates these forms.
func ParseLegacyFileName(name string) *FileInfo {
	st := stem(name)
	for _, p := range legacyPatterns {
		if m := p.re.FindStringSubmatch(st); m != nil {
			return p.extract(m)
		}
	}
	return nil
}

func underscoresToSpaces(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}
