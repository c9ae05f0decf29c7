package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/worshipnote/internal/cache"
	"github.com/franz/worshipnote/internal/codec"
	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/remote"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the database and sheet files",
	Long: `Run diagnostic checks to ensure wnote can operate correctly.

This command checks:
- Database directory reachability
- Local cache accessibility and integrity
- Attached sheet files actually exist on disk
- Attached names match their canonical form
- Worship list entries reference known songs

Use this command to troubleshoot before editing the library.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	setupLogging()
	util.InfoLog("=== WorshipNote Doctor ===")
	util.InfoLog("")

	files := fsio.NewOS()
	results := []checkResult{}

	// 1. Database directory
	dbDir, err := remote.Locate(files, viper.GetString("database-dir"))
	if err != nil {
		results = append(results, checkResult{
			name:    "Database directory",
			message: err.Error(),
			error:   true,
		})
	} else {
		results = append(results, checkResult{
			name:    "Database directory",
			message: dbDir,
		})
	}

	// 2. Local cache
	results = append(results, checkCache(viper.GetString("db")))

	// 3. Collections, timestamps and sheet files (only when the database
	// is reachable)
	if err == nil {
		store := remote.New(files, dbDir)
		songs, songsTS, songsErr := store.LoadSongs()
		lists, listsTS, listsErr := store.LoadLists()
		if songsErr != nil {
			results = append(results, checkResult{name: "Songs document", message: songsErr.Error(), error: true})
		} else if listsErr != nil {
			results = append(results, checkResult{name: "Lists document", message: listsErr.Error(), error: true})
		} else {
			results = append(results, checkTimestamps(songsTS, listsTS)...)

			sheetsDir := viper.GetString("sheets-dir")
			if sheetsDir == "" {
				sheetsDir = defaultSheetsDir(dbDir)
			}
			results = append(results, checkSheets(files, sheetsDir, songs)...)
			results = append(results, checkLists(songs, lists))
		}
	}

	// Print results
	util.InfoLog("")
	hasErrors := false
	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
		}
		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}
		switch {
		case r.error:
			util.ErrorLog("%s", line)
		case r.warning:
			util.WarnLog("%s", line)
		default:
			util.InfoLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		return fmt.Errorf("doctor found problems")
	}
	util.SuccessLog("All checks passed")
	return nil
}

func checkCache(path string) checkResult {
	c, err := cache.Open(path)
	if err != nil {
		return checkResult{name: "Local cache", message: err.Error(), error: true}
	}
	defer c.Close()
	if err := c.CheckIntegrity(); err != nil {
		return checkResult{name: "Local cache", message: err.Error(), error: true}
	}
	return checkResult{name: "Local cache", message: path}
}

// checkTimestamps validates the lastUpdated stamps on both documents:
// present, parseable RFC3339 and not ahead of the local clock (allowing
// an hour of skew for machines syncing across time zones).
func checkTimestamps(songsTS, listsTS string) []checkResult {
	var results []checkResult
	limit := time.Now().UTC().Add(time.Hour)
	for _, doc := range []struct {
		name string
		ts   string
	}{
		{remote.SongsFile + " lastUpdated", songsTS},
		{remote.ListsFile + " lastUpdated", listsTS},
	} {
		switch parsed, err := time.Parse(time.RFC3339, doc.ts); {
		case doc.ts == "":
			results = append(results, checkResult{name: doc.name, message: "missing", warning: true})
		case err != nil:
			results = append(results, checkResult{
				name:    doc.name,
				message: fmt.Sprintf("not RFC3339: %s", doc.ts),
				error:   true,
			})
		case parsed.After(limit):
			results = append(results, checkResult{
				name:    doc.name,
				message: fmt.Sprintf("in the future: %s", doc.ts),
				warning: true,
			})
		default:
			results = append(results, checkResult{name: doc.name, message: doc.ts})
		}
	}
	return results
}

// checkSheets verifies attached files exist and have not drifted from
// their canonical names.
func checkSheets(files fsio.Provider, sheetsDir string, songs []song.Song) []checkResult {
	if !files.Exists(sheetsDir) {
		return []checkResult{{name: "Sheets directory", message: sheetsDir + " not found", warning: true}}
	}

	missing, drifted := 0, 0
	for i := range songs {
		s := &songs[i]
		if s.FileName == "" {
			continue
		}
		if !files.Exists(filepath.Join(sheetsDir, s.FileName)) {
			util.DebugLog("missing sheet: %s (%s)", s.FileName, s.ID)
			missing++
			continue
		}
		if canonical, err := codec.CanonicalFileName(s); err == nil && canonical != s.FileName {
			util.DebugLog("non-canonical sheet: %s, expected %s", s.FileName, canonical)
			drifted++
		}
	}

	results := []checkResult{{name: "Sheets directory", message: sheetsDir}}
	if missing > 0 {
		results = append(results, checkResult{
			name:    "Sheet files",
			message: fmt.Sprintf("%d attached files missing on disk", missing),
			error:   true,
		})
	}
	if drifted > 0 {
		results = append(results, checkResult{
			name:    "Canonical names",
			message: fmt.Sprintf("%d files drifted, run wnote rename", drifted),
			warning: true,
		})
	}
	if missing == 0 && drifted == 0 {
		results = append(results, checkResult{
			name:    "Sheet files",
			message: fmt.Sprintf("%d attached files verified", countAttached(songs)),
		})
	}
	return results
}

// checkLists flags worship list entries whose song id no longer exists.
func checkLists(songs []song.Song, lists song.WorshipLists) checkResult {
	orphans := 0
	for _, date := range lists.Dates() {
		for _, entry := range lists[date] {
			if song.FindByID(songs, entry.ID) == nil {
				util.DebugLog("orphan entry %q (%s) on %s", entry.Title, entry.ID, date)
				orphans++
			}
		}
	}
	if orphans > 0 {
		return checkResult{
			name:    "Worship lists",
			message: fmt.Sprintf("%d entries reference deleted songs", orphans),
			warning: true,
		}
	}
	return checkResult{
		name:    "Worship lists",
		message: fmt.Sprintf("%d lists, %d entries", len(lists), lists.TotalSongs()),
	}
}
