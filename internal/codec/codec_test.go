package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

func TestCanonicalFileName(t *testing.T) {
	tests := []struct {
		name     string
		song     song.Song
		expected string
	}{
		{
			name:     "title chord id",
			song:     song.Song{ID: "abc123", Title: "Amazing Grace", Chord: "C"},
			expected: "Amazing Grace (C) (abc123).jpg",
		},
		{
			name:     "no chord",
			song:     song.Song{ID: "abc123", Title: "Amazing Grace"},
			expected: "Amazing Grace (abc123).jpg",
		},
		{
			name:     "page fraction normalized",
			song:     song.Song{ID: "x1", Title: "Song 2/2", Chord: "G"},
			expected: "Song 2 (G) (x1).jpg",
		},
		{
			name:     "two digit page fraction",
			song:     song.Song{ID: "x1", Title: "Song 12/12", Chord: "G"},
			expected: "Song 12 (G) (x1).jpg",
		},
		{
			name:     "minor chord",
			song:     song.Song{ID: "x2", Title: "In Christ Alone", Chord: "Em"},
			expected: "In Christ Alone (Em) (x2).jpg",
		},
		{
			name:     "internal whitespace preserved",
			song:     song.Song{ID: "x3", Title: "He  Is  Lord", Chord: "D"},
			expected: "He  Is  Lord (D) (x3).jpg",
		},
		{
			name:     "surrounding whitespace trimmed",
			song:     song.Song{ID: "x4", Title: "  Holy Holy Holy  ", Chord: "Eb"},
			expected: "Holy Holy Holy (Eb) (x4).jpg",
		},
	}

	for _, tt := range tests {
		got, err := CanonicalFileName(&tt.song)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.expected {
			t.Errorf("%s: CanonicalFileName = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestCanonicalFileNameDeterministic(t *testing.T) {
	s := song.Song{ID: "abc123", Title: "Amazing Grace 1/2", Chord: "C#m"}
	first, err := CanonicalFileName(&s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CanonicalFileName(&s)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("not deterministic: %q vs %q", first, second)
	}
}

func TestCanonicalFileNameRejectsMissingFields(t *testing.T) {
	for _, s := range []song.Song{
		{ID: "", Title: "Amazing Grace"},
		{ID: "abc", Title: ""},
		{ID: "  ", Title: "Amazing Grace"},
	} {
		if _, err := CanonicalFileName(&s); !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("song %+v: expected ErrInvalidInput, got %v", s, err)
		}
	}
}

func TestSanitizeReplacesEveryIllegalChar(t *testing.T) {
	title := `a<b>c:d"e/f\g|h?i*j`
	got := Sanitize(title)

	for _, c := range `<>:"/\|?*` {
		if strings.ContainsRune(got, c) {
			t.Errorf("sanitized %q still contains %q", got, c)
		}
	}
	if got != "a-b-c-d-e-f-g-h-i-j" {
		t.Errorf("Sanitize = %q, expected each illegal char replaced by -", got)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("x", 300)
	if got := Sanitize(long); len([]rune(got)) != 200 {
		t.Errorf("Sanitize length = %d, expected 200", len([]rune(got)))
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"Song 2/2", "Song 2"},
		{"Song 1/2", "Song 1"},
		{"Song 12/2", "Song 12"},
		{"Song2/2", "Song 2"},
		{"2/2", "2"},
		{"Plain Title", "Plain Title"},
		{"Half/Whole Song", "Half/Whole Song"},
		{"  Song 2/2  ", "Song 2"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.out {
			t.Errorf("NormalizeTitle(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestIsCanonicalFileName(t *testing.T) {
	canonical := []string{
		"Amazing Grace (C) (abc123).jpg",
		"In Christ Alone (Em) (550e8400-e29b-41d4-a716-446655440000).jpg",
		"Song 2 (Bb) (id9).jpg",
	}
	legacy := []string{
		"Amazing_Grace_C_(abc123).jpg", // underscore era
		"Amazing Grace C.jpg",          // bare chord, no parens
		"abc123.jpg",                   // bare id
		"Amazing Grace (C).jpg",        // chord but no id
		"Amazing Grace (abc123).jpg",   // id without chord section
		"Amazing Grace (c) (abc123).jpg", // lowercase chord
		"Amazing Grace (H) (abc123).jpg", // not a chord letter
	}

	for _, name := range canonical {
		if !IsCanonicalFileName(name) {
			t.Errorf("IsCanonicalFileName(%q) = false, expected true", name)
		}
	}
	for _, name := range legacy {
		if IsCanonicalFileName(name) {
			t.Errorf("IsCanonicalFileName(%q) = true, expected false", name)
		}
	}
}

func TestParseFileNameRoundTrip(t *testing.T) {
	s := song.Song{ID: "abc123", Title: "Amazing Grace", Chord: "C"}
	name, err := CanonicalFileName(&s)
	if err != nil {
		t.Fatal(err)
	}

	info := ParseFileName(name)
	if !info.Canonical {
		t.Fatal("round-tripped name not recognized as canonical")
	}
	if info.Title != "Amazing Grace" || info.Chord != "C" || info.ID != "abc123" {
		t.Errorf("round trip = %+v", info)
	}
}

func TestParseFileNameDegradesToTitle(t *testing.T) {
	info := ParseFileName("Some Random Scan v2.jpg")
	if info == nil {
		t.Fatal("ParseFileName returned nil")
	}
	if info.Canonical {
		t.Error("non-canonical name reported as canonical")
	}
	if info.Title != "Some Random Scan v2" {
		t.Errorf("Title = %q, expected whole stem", info.Title)
	}
	if info.ID != "" || info.Chord != "" {
		t.Errorf("expected empty id/chord, got %+v", info)
	}
}

func TestParseFileNameTitleWithParens(t *testing.T) {
	// A parenthesized fragment inside the title must not eat the chord/id groups
	info := ParseFileName("Holy (So Holy) Night (G) (id42).jpg")
	if !info.Canonical {
		t.Fatal("expected canonical match")
	}
	if info.Title != "Holy (So Holy) Night" || info.Chord != "G" || info.ID != "id42" {
		t.Errorf("parsed %+v", info)
	}
}

func TestParseLegacyFileNamePatterns(t *testing.T) {
	tests := []struct {
		name     string
		expected FileInfo
	}{
		{"Amazing_Grace_C_(abc123).jpg", FileInfo{Title: "Amazing Grace", Chord: "C", ID: "abc123"}},
		{"Amazing_Grace_Em_abc123.jpg", FileInfo{Title: "Amazing Grace", Chord: "Em", ID: "abc123"}},
		{"xyz789.jpg", FileInfo{ID: "xyz789"}},
		{"Amazing Grace C.jpg", FileInfo{Title: "Amazing Grace", Chord: "C"}},
		{"Amazing Grace (Bb).jpg", FileInfo{Title: "Amazing Grace", Chord: "Bb"}},
		{"Amazing Grace C 2.jpg", FileInfo{Title: "Amazing Grace", Chord: "C", Page: 2}},
		{"Amazing Grace (C) 2.jpg", FileInfo{Title: "Amazing Grace", Chord: "C", Page: 2}},
	}

	for _, tt := range tests {
		got := ParseLegacyFileName(tt.name)
		if got == nil {
			t.Fatalf("ParseLegacyFileName(%q) = nil", tt.name)
		}
		if *got != tt.expected {
			t.Errorf("ParseLegacyFileName(%q) = %+v, expected %+v", tt.name, *got, tt.expected)
		}
	}
}

func TestParseLegacyFileNamePriorityOrder(t *testing.T) {
	// "Grace_C_abc" matches both the underscore-id pattern and, read
	// differently, nothing else first - the underscore patterns must win
	// over the bare-id pattern.
	got := ParseLegacyFileName("Grace_C_abc.jpg")
	if got == nil || got.ID != "abc" || got.Chord != "C" || got.Title != "Grace" {
		t.Errorf("underscore pattern should win, got %+v", got)
	}

	// A lone word is a bare id, not a title.
	got = ParseLegacyFileName("Hallelujah.jpg")
	if got == nil || got.ID != "Hallelujah" || got.Title != "" {
		t.Errorf("bare token should parse as id, got %+v", got)
	}
}

func TestParseLegacyFileNameNoMatch(t *testing.T) {
	if got := ParseLegacyFileName("two words here.jpg"); got != nil {
		t.Errorf("expected nil for unparseable name, got %+v", got)
	}
}
