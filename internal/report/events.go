// Package report writes a per-run JSONL audit trail of everything the engine
// did to the library: pulls, pushes, renames, recovery matches, backups.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventPull      EventType = "pull"
	EventPush      EventType = "push"
	EventRename    EventType = "rename"
	EventMatch     EventType = "match"
	EventUnmatched EventType = "unmatched"
	EventConflict  EventType = "conflict"
	EventBackup    EventType = "backup"
	EventRestore   EventType = "restore"
	EventError     EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single audit event
type Event struct {
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	SongID     string            `json:"song_id,omitempty"`
	File       string            `json:"file,omitempty"`
	OldName    string            `json:"old_name,omitempty"`
	NewName    string            `json:"new_name,omitempty"`
	Collection string            `json:"collection,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a logger writing to a timestamped file under
// outputDir. Events below minLevel are dropped.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event. A nil logger is a no-op, so call sites never need to
// guard.
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// LogPull logs adoption of a remote collection
func (l *EventLogger) LogPull(collection, reason string, count int) error {
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      EventPull,
		Collection: collection,
		Reason:     reason,
		Extra:      map[string]string{"count": fmt.Sprintf("%d", count)},
	})
}

// LogPush logs a write of a collection to the remote store
func (l *EventLogger) LogPush(collection string, count int, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelWarning
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:      level,
		Event:      EventPush,
		Collection: collection,
		Error:      errMsg,
		Extra:      map[string]string{"count": fmt.Sprintf("%d", count)},
	})
}

// LogRename logs a sheet file rename
func (l *EventLogger) LogRename(songID, oldName, newName string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:   level,
		Event:   EventRename,
		SongID:  songID,
		OldName: oldName,
		NewName: newName,
		Error:   errMsg,
	})
}

// LogMatch logs a successful legacy-file-to-song match
func (l *EventLogger) LogMatch(file, songID, reason string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventMatch,
		File:   file,
		SongID: songID,
		Reason: reason,
	})
}

// LogUnmatched logs a file left for manual triage
func (l *EventLogger) LogUnmatched(file, reason string) error {
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventUnmatched,
		File:   file,
		Reason: reason,
	})
}

// LogBackup logs a backup snapshot write
func (l *EventLogger) LogBackup(file string, totalSongs, totalLists int) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventBackup,
		File:  file,
		Extra: map[string]string{
			"songs": fmt.Sprintf("%d", totalSongs),
			"lists": fmt.Sprintf("%d", totalLists),
		},
	})
}

// LogRestore logs a restore from a backup snapshot
func (l *EventLogger) LogRestore(file string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level: level,
		Event: EventRestore,
		File:  file,
		Error: errMsg,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, file string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		File:  file,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
