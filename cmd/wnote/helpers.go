package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/franz/worshipnote/internal/cache"
	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/remote"
	"github.com/franz/worshipnote/internal/repo"
	"github.com/franz/worshipnote/internal/report"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/syncstate"
	"github.com/franz/worshipnote/internal/util"
)

// appContext bundles everything a command needs after startup wiring.
type appContext struct {
	Repo      *repo.Repository
	Cache     *cache.Cache
	Remote    *remote.Store
	Files     fsio.Provider
	Logger    *report.EventLogger
	SheetsDir string
	Decision  syncstate.Decision
}

// Close releases the cache and the event log.
func (a *appContext) Close() {
	if a.Logger != nil {
		a.Logger.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
}

// setupLogging applies the verbose/quiet flags and returns the matching
// event log level.
func setupLogging() report.EventLevel {
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")
	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	switch {
	case quiet:
		return report.LevelWarning
	case verbose:
		return report.LevelDebug
	default:
		return report.LevelInfo
	}
}

// openApp wires the stores and loads the collections. Every command goes
// through here so flags, config and auto-detection behave identically.
func openApp() (*appContext, error) {
	logLevel := setupLogging()

	files := fsio.NewOS()

	dbDir, err := remote.Locate(files, viper.GetString("database-dir"))
	if err != nil {
		return nil, err
	}
	util.DebugLog("database directory: %s", dbDir)

	sheetsDir := viper.GetString("sheets-dir")
	if sheetsDir == "" {
		sheetsDir = defaultSheetsDir(dbDir)
	}

	cachePath := viper.GetString("db")
	c, err := cache.Open(cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache %s: %w", cachePath, err)
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	if logger.Path() != "" {
		util.DebugLog("Event log: %s", logger.Path())
	}

	store := remote.New(files, dbDir)
	r := repo.New(c, store, logger)
	decision := r.Load()

	return &appContext{
		Repo:      r,
		Cache:     c,
		Remote:    store,
		Files:     files,
		Logger:    logger,
		SheetsDir: sheetsDir,
		Decision:  decision,
	}, nil
}

// saveSongsThenLists persists an edit that fanned out to worship lists.
// The master record is saved first: if it fails, the lists are not
// written, so the persisted lists can never run ahead of the persisted
// master.
func saveSongsThenLists(r *repo.Repository, songs []song.Song, lists song.WorshipLists, listUpdates int) error {
	if err := reportSave("Songs", r.SaveSongs(songs)); err != nil {
		return err
	}
	if listUpdates > 0 {
		util.InfoLog("Updated %d worship list entries", listUpdates)
		return reportSave("Worship lists", r.SaveLists(lists))
	}
	return nil
}

// confirm prompts on stdin and returns true only for an explicit yes.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// defaultSheetsDir returns the conventional sheet image location, a Sheets
// folder next to the database folder.
func defaultSheetsDir(dbDir string) string {
	return filepath.Join(filepath.Dir(dbDir), "Sheets")
}

// reportSave prints the outcome of a dual write and returns an error only
// when the local cache write failed.
func reportSave(what string, status repo.SaveStatus) error {
	if !status.LocalOK {
		return fmt.Errorf("failed to save %s", what)
	}
	if status.RemoteErr != nil {
		util.WarnLog("%s saved locally, cloud folder not updated: %v", what, status.RemoteErr)
		return nil
	}
	util.SuccessLog("%s saved", what)
	return nil
}
