package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franz/worshipnote/internal/codec"
	"github.com/franz/worshipnote/internal/reconcile"
	"github.com/franz/worshipnote/internal/song"
	"github.com/franz/worshipnote/internal/util"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a song to the library",
	Long: `Add a new song record. A fresh id is minted and, when --sheet points at
an image file in the sheets directory, the file is renamed to its canonical
"Title (Chord) (id).jpg" form and attached to the record.`,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a song record",
	Long: `Edit the fields of an existing song. Changing the title or chord renames
the attached sheet file to match and updates every worship list the song
appears on. The rename happens before anything is saved: if the file cannot
be moved, the record is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a song record",
	Long: `Delete a song from the library. Worship list entries keep their copied
record so old lists stay readable. With --sheet the attached file is removed
from the sheets directory as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List songs in the library",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one song and where it is used",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	addCmd.Flags().String("title", "", "song title (required)")
	addCmd.Flags().String("chord", "", "chord key, e.g. C, F#, Bbm")
	addCmd.Flags().String("tempo", "", "tempo description")
	addCmd.Flags().String("lyrics", "", "first line of the lyrics")
	addCmd.Flags().String("sheet", "", "sheet image in the sheets directory to attach")
	addCmd.MarkFlagRequired("title")

	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("chord", "", "new chord key")
	editCmd.Flags().String("tempo", "", "new tempo")
	editCmd.Flags().String("lyrics", "", "new first lyrics line")

	deleteCmd.Flags().Bool("sheet", false, "also remove the attached sheet file")
	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	listCmd.Flags().String("chord", "", "only songs in this chord key")
	listCmd.Flags().String("search", "", "only songs whose title or lyrics contain this text")

	rootCmd.AddCommand(addCmd, editCmd, deleteCmd, listCmd, showCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	title, _ := cmd.Flags().GetString("title")
	chord, _ := cmd.Flags().GetString("chord")
	tempo, _ := cmd.Flags().GetString("tempo")
	lyrics, _ := cmd.Flags().GetString("lyrics")
	sheet, _ := cmd.Flags().GetString("sheet")

	s, err := song.New(title, chord, tempo, lyrics)
	if err != nil {
		return err
	}

	if sheet != "" {
		rec := reconcile.New(app.Files, app.SheetsDir, app.Logger)
		newName, err := rec.AdoptFile(s, sheet)
		if err != nil {
			return fmt.Errorf("failed to attach sheet: %w", err)
		}
		s.FileName = newName
		util.InfoLog("Attached sheet: %s", newName)
	}

	songs := append(app.Repo.Songs(), *s)
	if err := reportSave("Songs", app.Repo.SaveSongs(songs)); err != nil {
		return err
	}
	fmt.Printf("Added %q (%s)\n", s.Title, s.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	songs := app.Repo.Songs()
	current := song.FindByID(songs, args[0])
	if current == nil {
		return fmt.Errorf("no song with id %s", args[0])
	}

	updated := *current
	if cmd.Flags().Changed("title") {
		updated.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("chord") {
		updated.Chord, _ = cmd.Flags().GetString("chord")
	}
	if cmd.Flags().Changed("tempo") {
		updated.Tempo, _ = cmd.Flags().GetString("tempo")
	}
	if cmd.Flags().Changed("lyrics") {
		updated.FirstLyrics, _ = cmd.Flags().GetString("lyrics")
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	// Rename the sheet first so a failed move never leaves the record
	// pointing at a file that does not exist.
	rec := reconcile.New(app.Files, app.SheetsDir, app.Logger)
	result, err := rec.UpdateFileNameForSong(current, &updated)
	if err != nil {
		return err
	}
	if result.Outcome == reconcile.OutcomeRenamed {
		updated.FileName = result.NewFileName
		util.InfoLog("Renamed sheet to %s", result.NewFileName)
	}
	updated.Touch()
	*current = updated

	lists := app.Repo.Lists()
	return saveSongsThenLists(app.Repo, songs, lists, reconcile.Propagate(lists, &updated))
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	songs := app.Repo.Songs()
	found := song.FindByID(songs, args[0])
	if found == nil {
		return fmt.Errorf("no song with id %s", args[0])
	}
	target := *found

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirm(fmt.Sprintf("Delete %q (%s)?", target.Title, target.ID)) {
			util.InfoLog("Delete cancelled")
			return nil
		}
	}

	if removeSheet, _ := cmd.Flags().GetBool("sheet"); removeSheet && target.FileName != "" {
		path := filepath.Join(app.SheetsDir, target.FileName)
		if err := app.Files.Remove(path); err != nil {
			return fmt.Errorf("failed to remove sheet %s: %w", target.FileName, err)
		}
		util.InfoLog("Removed sheet %s", target.FileName)
	}

	kept := songs[:0]
	for _, s := range songs {
		if s.ID != target.ID {
			kept = append(kept, s)
		}
	}
	if err := reportSave("Songs", app.Repo.SaveSongs(kept)); err != nil {
		return err
	}
	fmt.Printf("Deleted %q (%s)\n", target.Title, target.ID)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	chord, _ := cmd.Flags().GetString("chord")
	search, _ := cmd.Flags().GetString("search")
	search = strings.ToLower(search)

	songs := app.Repo.Songs()
	sort.Slice(songs, func(i, j int) bool {
		return strings.ToLower(songs[i].Title) < strings.ToLower(songs[j].Title)
	})

	shown := 0
	for _, s := range songs {
		if chord != "" && s.Chord != chord {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Title), search) &&
			!strings.Contains(strings.ToLower(s.FirstLyrics), search) {
			continue
		}
		marker := " "
		if s.FileName != "" {
			marker = "*"
		}
		key := s.Chord
		if key == "" {
			key = "-"
		}
		fmt.Printf("%s %-4s %-50s %s\n", marker, key, truncate(s.Title, 50), s.ID)
		shown++
	}
	fmt.Printf("\n%d of %d songs (* = sheet attached)\n", shown, len(songs))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	songs := app.Repo.Songs()
	s := song.FindByID(songs, args[0])
	if s == nil {
		return fmt.Errorf("no song with id %s", args[0])
	}

	fmt.Printf("Title:    %s\n", s.Title)
	fmt.Printf("Chord:    %s\n", s.Chord)
	fmt.Printf("Tempo:    %s\n", s.Tempo)
	fmt.Printf("Lyrics:   %s\n", s.FirstLyrics)
	fmt.Printf("Sheet:    %s\n", s.FileName)
	fmt.Printf("ID:       %s\n", s.ID)
	fmt.Printf("Created:  %s\n", s.CreatedAt)
	fmt.Printf("Updated:  %s\n", s.UpdatedAt)

	if s.FileName != "" {
		if canonical, err := codec.CanonicalFileName(s); err == nil && canonical != s.FileName {
			util.WarnLog("Stored name differs from canonical form %s", canonical)
		}
	}

	lists := app.Repo.Lists()
	var dates []string
	for _, date := range lists.Dates() {
		for _, entry := range lists[date] {
			if entry.ID == s.ID {
				dates = append(dates, date)
				break
			}
		}
	}
	if len(dates) > 0 {
		fmt.Printf("Used on:  %s\n", strings.Join(dates, ", "))
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
