// Package watch monitors the cloud-synced database folder and reports when
// the sync client rewrites one of the database documents. Cloud clients
// touch files several times while syncing, so events are debounced before
// the callback fires.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/franz/worshipnote/internal/remote"
	"github.com/franz/worshipnote/internal/util"
)

// DefaultDebounce is how long the watcher waits after the last event
// before reporting a change.
const DefaultDebounce = 2 * time.Second

// Watcher observes the database directory for document rewrites.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onChange func(changed []string)
}

// New creates a watcher over the given database directory. onChange
// receives the sorted set of document names that changed since the last
// notification. A non-positive debounce falls back to DefaultDebounce.
func New(dir string, debounce time.Duration, onChange func(changed []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fsw: fsw, dir: dir, debounce: debounce, onChange: onChange}, nil
}

// Run processes events until the context is cancelled or the underlying
// watcher is closed. It always returns after Close.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			name, relevant := w.classify(event)
			if !relevant {
				continue
			}
			util.DebugLog("database change: %s (%s)", name, event.Op)
			pending[name] = struct{}{}
			// Restart the quiet period on every event.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			w.onChange(changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			util.WarnLog("watcher error: %v", err)
		}
	}
}

// Close stops the watcher and unblocks Run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// classify filters events down to rewrites of the database documents.
// Removes and chmods are ignored; sync clients delete and recreate files
// mid-transfer and the create or write that follows is the signal.
func (w *Watcher) classify(event fsnotify.Event) (string, bool) {
	name := filepath.Base(event.Name)
	if name != remote.SongsFile && name != remote.ListsFile {
		return "", false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	return name, true
}
