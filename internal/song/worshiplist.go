package song

import (
	"sort"
	"time"
)

// WorshipLists maps a service date ("YYYY-MM-DD") to the ordered set-list for
// that date. Entries are denormalized Song snapshots, not references; the same
// song may legitimately appear more than once in one date's list.
//
// The lastUpdated timestamp the wire format smuggles into this map lives on
// the store document instead, so iteration never has to skip a magic key.
type WorshipLists map[string][]Song

// ValidDateKey reports whether s is a well-formed YYYY-MM-DD date key
func ValidDateKey(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Dates returns the date keys in ascending order
func (w WorshipLists) Dates() []string {
	dates := make([]string, 0, len(w))
	for d := range w {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// TotalSongs returns the number of entries across all dates
func (w WorshipLists) TotalSongs() int {
	total := 0
	for _, entries := range w {
		total += len(entries)
	}
	return total
}

// Clone returns a deep copy
func (w WorshipLists) Clone() WorshipLists {
	out := make(WorshipLists, len(w))
	for d, entries := range w {
		cp := make([]Song, len(entries))
		copy(cp, entries)
		out[d] = cp
	}
	return out
}

// Append copies the current snapshot of s onto the end of the list for date.
// Order and duplicates within a date are preserved.
func (w WorshipLists) Append(date string, s Song) {
	w[date] = append(w[date], s)
}

// RemoveAt deletes the entry at position from the list for date.
// Returns false when date or position does not exist.
func (w WorshipLists) RemoveAt(date string, position int) bool {
	entries, ok := w[date]
	if !ok || position < 0 || position >= len(entries) {
		return false
	}
	w[date] = append(entries[:position], entries[position+1:]...)
	if len(w[date]) == 0 {
		delete(w, date)
	}
	return true
}
