// Package repo is the dual-write facade over the local SQLite cache and the
// cloud-synced remote store. Reads prefer the freshest side, writes go to
// both: the cache write must succeed, the remote write is best-effort and
// surfaced through SaveStatus so callers can warn without failing.
package repo

import (
	"sync"

	"github.com/franz/worshipnote/internal/cache"
	"github.com/franz/worshipnote/internal/remote"
	"github.com/franz/worshipnote/internal/report"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/syncstate"
	"github.com/franz/worshipnote/internal/util"
)

// Collections bundles both persisted collections.
type Collections struct {
	Songs []song.Song
	Lists song.WorshipLists
}

// SaveStatus reports the outcome of a dual write. LocalOK is false only
// when the cache write failed, which callers treat as a hard error; a
// non-nil RemoteErr means the data is safe locally but the cloud folder
// was not updated.
type SaveStatus struct {
	LocalOK   bool
	RemoteErr error
}

// OK reports whether both sides were written.
func (s SaveStatus) OK() bool {
	return s.LocalOK && s.RemoteErr == nil
}

// Repository coordinates the cache and the remote store. The two
// collections are independent logical files and get independent locks.
type Repository struct {
	songsMu sync.RWMutex
	listsMu sync.RWMutex

	cache  *cache.Cache
	remote *remote.Store
	logger *report.EventLogger

	songs []song.Song
	lists song.WorshipLists
}

// New creates a repository. logger may be nil.
func New(c *cache.Cache, r *remote.Store, logger *report.EventLogger) *Repository {
	if logger == nil {
		logger = report.NullLogger()
	}
	return &Repository{
		cache:  c,
		remote: r,
		logger: logger,
		lists:  song.WorshipLists{},
	}
}

// Load populates the in-memory collections. The cache is read first, then
// the remote store; whichever side is fresher wins per collection and a
// remote win is written back to the cache with the remote timestamp. Any
// remote failure falls back to the cached data. Load never fails: worst
// case is starting from the embedded seed or empty collections.
func (r *Repository) Load() syncstate.Decision {
	r.songsMu.Lock()
	defer r.songsMu.Unlock()
	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	localSongs, localSongsTS, err := r.cache.LoadSongs()
	if err != nil {
		util.WarnLog("failed to read cached songs: %v", err)
	}
	localLists, localListsTS, err := r.cache.LoadLists()
	if err != nil {
		util.WarnLog("failed to read cached lists: %v", err)
	}
	r.songs = localSongs
	r.lists = localLists
	if r.lists == nil {
		r.lists = song.WorshipLists{}
	}

	remoteSongs, remoteSongsTS, songsErr := r.remote.LoadSongs()
	remoteLists, remoteListsTS, listsErr := r.remote.LoadLists()
	if songsErr != nil {
		util.WarnLog("remote songs unavailable, using cached data: %v", songsErr)
		r.logger.LogError(report.EventPull, remote.SongsFile, songsErr)
		remoteSongsTS = ""
	}
	if listsErr != nil {
		util.WarnLog("remote lists unavailable, using cached data: %v", listsErr)
		r.logger.LogError(report.EventPull, remote.ListsFile, listsErr)
		remoteListsTS = ""
	}

	decision := syncstate.Compare(localSongsTS, localListsTS, remoteSongsTS, remoteListsTS)

	if decision.Songs.NeedsPull {
		r.songs = remoteSongs
		if err := r.cache.SaveSongs(remoteSongs, remoteSongsTS); err != nil {
			util.WarnLog("failed to cache pulled songs: %v", err)
		}
		r.logger.LogPull("songs", string(decision.Songs.Reason), len(remoteSongs))
	}
	if decision.Lists.NeedsPull {
		r.lists = remoteLists
		if r.lists == nil {
			r.lists = song.WorshipLists{}
		}
		if err := r.cache.SaveLists(r.lists, remoteListsTS); err != nil {
			util.WarnLog("failed to cache pulled lists: %v", err)
		}
		r.logger.LogPull("worship_lists", string(decision.Lists.Reason), len(remoteLists))
	}

	if len(r.songs) == 0 && len(r.lists) == 0 {
		if seed, err := loadSeed(); err == nil && len(seed.Songs) > 0 {
			util.InfoLog("starting from the embedded seed database (%d songs)", len(seed.Songs))
			r.songs = seed.Songs
			r.lists = seed.Lists
		}
	}
	return decision
}

// Songs returns a copy of the song collection.
func (r *Repository) Songs() []song.Song {
	r.songsMu.RLock()
	defer r.songsMu.RUnlock()
	out := make([]song.Song, len(r.songs))
	copy(out, r.songs)
	return out
}

// Lists returns a copy of the worship lists.
func (r *Repository) Lists() song.WorshipLists {
	r.listsMu.RLock()
	defer r.listsMu.RUnlock()
	return r.lists.Clone()
}

// SaveSongs replaces the song collection and writes it to both stores with
// a fresh timestamp.
func (r *Repository) SaveSongs(songs []song.Song) SaveStatus {
	r.songsMu.Lock()
	defer r.songsMu.Unlock()

	ts := song.Now()
	if err := r.cache.SaveSongs(songs, ts); err != nil {
		util.ErrorLog("failed to save songs locally: %v", err)
		return SaveStatus{LocalOK: false}
	}
	r.songs = songs

	err := r.remote.SaveSongs(songs, ts)
	r.logger.LogPush("songs", len(songs), err)
	return SaveStatus{LocalOK: true, RemoteErr: err}
}

// SaveLists replaces the worship lists and writes them to both stores with
// a fresh timestamp.
func (r *Repository) SaveLists(lists song.WorshipLists) SaveStatus {
	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	if lists == nil {
		lists = song.WorshipLists{}
	}
	ts := song.Now()
	if err := r.cache.SaveLists(lists, ts); err != nil {
		util.ErrorLog("failed to save worship lists locally: %v", err)
		return SaveStatus{LocalOK: false}
	}
	r.lists = lists

	err := r.remote.SaveLists(lists, ts)
	r.logger.LogPush("worship_lists", lists.TotalSongs(), err)
	return SaveStatus{LocalOK: true, RemoteErr: err}
}
