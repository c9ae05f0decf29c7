package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/franz/worshipnote/internal/codec"
	"github.com/franz/worshipnote/internal/reconcile"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match loose sheet files back to their songs",
	Long: `Scan the sheets directory for files no song record references and recover
their owners from the filename. Canonical names match by embedded id; legacy
names fall back to title and chord matching. Ambiguous files are never
resolved automatically.

Without --apply the matches are only printed. With --apply each matched file
is renamed to its canonical form and attached to its song.`,
	RunE: runReconcile,
}

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename attached sheets to their canonical form",
	Long: `Check every song with an attached sheet against the canonical
"Title (Chord) (id).jpg" form and rename files that drifted, updating the
record and its worship list entries. Without --apply only the plan is
printed.`,
	RunE: runRename,
}

func init() {
	reconcileCmd.Flags().Bool("apply", false, "rename and attach matched files")
	renameCmd.Flags().Bool("apply", false, "perform the renames")
	rootCmd.AddCommand(reconcileCmd, renameCmd)
}

func matchProgress(total int) *progressbar.ProgressBar {
	if !util.IsTerminal(os.Stderr.Fd()) || util.IsQuiet() {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Matching"),
		progressbar.OptionSetWidth(barWidth(util.GetTerminalWidth())),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// barWidth sizes the bar to the terminal, leaving room for the
// description and counters around it.
func barWidth(cols int) int {
	w := cols - 30
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}

func runReconcile(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	apply, _ := cmd.Flags().GetBool("apply")
	songs := app.Repo.Songs()
	rec := reconcile.New(app.Files, app.SheetsDir, app.Logger)

	util.InfoLog("Scanning %s", app.SheetsDir)
	rep, err := rec.MatchDirectory(songs)
	if err != nil {
		return err
	}

	util.InfoLog("%d files owned, %d matched, %d ambiguous, %d unmatched",
		rep.Owned, len(rep.Matched), len(rep.Ambiguous), len(rep.Unmatched))
	for _, f := range rep.Ambiguous {
		util.WarnLog("ambiguous: %s", f)
	}
	for _, f := range rep.Unmatched {
		util.WarnLog("unmatched: %s", f)
	}

	if len(rep.Matched) == 0 {
		return nil
	}
	if !apply {
		for _, m := range rep.Matched {
			fmt.Printf("%s -> %q (%s)\n", m.File, m.Title, m.SongID)
		}
		util.InfoLog("Dry run, re-run with --apply to attach these files")
		return nil
	}

	bar := matchProgress(len(rep.Matched))
	attached := 0
	for _, m := range rep.Matched {
		s := song.FindByID(songs, m.SongID)
		if s == nil {
			continue
		}
		newName, err := rec.AdoptFile(s, m.File)
		if err != nil {
			util.ErrorLog("failed to attach %s: %v", m.File, err)
			continue
		}
		s.FileName = newName
		s.Touch()
		attached++
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if attached == 0 {
		return nil
	}
	util.SuccessLog("Attached %d files", attached)
	return reportSave("Songs", app.Repo.SaveSongs(songs))
}

func runRename(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	apply, _ := cmd.Flags().GetBool("apply")
	songs := app.Repo.Songs()
	lists := app.Repo.Lists()
	rec := reconcile.New(app.Files, app.SheetsDir, app.Logger)

	type plan struct {
		song      *song.Song
		canonical string
	}
	var plans []plan
	for i := range songs {
		s := &songs[i]
		if s.FileName == "" {
			continue
		}
		canonical, err := codec.CanonicalFileName(s)
		if err != nil {
			util.WarnLog("cannot derive a name for %q: %v", s.Title, err)
			continue
		}
		if canonical != s.FileName {
			plans = append(plans, plan{song: s, canonical: canonical})
		}
	}

	if len(plans) == 0 {
		util.SuccessLog("All %d attached sheets already canonical", countAttached(songs))
		return nil
	}
	for _, p := range plans {
		fmt.Printf("%s -> %s\n", p.song.FileName, p.canonical)
	}
	if !apply {
		util.InfoLog("Dry run, re-run with --apply to rename %d files", len(plans))
		return nil
	}

	bar := matchProgress(len(plans))
	renamed, listUpdates := 0, 0
	for _, p := range plans {
		// Route through the reconciler by pretending the stored name came
		// from an older record, so the no-partial-state rules apply.
		stale := *p.song
		result, err := rec.UpdateFileNameForSong(&song.Song{ID: stale.ID, FileName: stale.FileName}, p.song)
		if err != nil {
			util.ErrorLog("failed to rename %s: %v", p.song.FileName, err)
			continue
		}
		if result.Outcome == reconcile.OutcomeRenamed {
			p.song.FileName = result.NewFileName
			p.song.Touch()
			listUpdates += reconcile.Propagate(lists, p.song)
			renamed++
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if renamed == 0 {
		return fmt.Errorf("no files could be renamed")
	}
	util.SuccessLog("Renamed %d files", renamed)
	return saveSongsThenLists(app.Repo, songs, lists, listUpdates)
}

func countAttached(songs []song.Song) int {
	n := 0
	for i := range songs {
		if songs[i].FileName != "" {
			n++
		}
	}
	return n
}
