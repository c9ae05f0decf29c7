package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/franz/worshipnote/internal/song"
)

var setlistCmd = &cobra.Command{
	Use:   "setlist",
	Short: "Manage dated worship lists",
	Long: `Manage worship lists. Each list is keyed by its service date (YYYY-MM-DD)
and holds an ordered sequence of songs; the same song may appear more than
once. List entries carry a copy of the song record so a list remains
readable even if the song is later deleted.`,
}

var setlistAddCmd = &cobra.Command{
	Use:   "add <date> <song-id>",
	Short: "Append a song to a worship list",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetlistAdd,
}

var setlistRemoveCmd = &cobra.Command{
	Use:   "remove <date> <position>",
	Short: "Remove the entry at a position (1-based) from a worship list",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetlistRemove,
}

var setlistShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show one worship list, or all list dates",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSetlistShow,
}

func init() {
	setlistCmd.AddCommand(setlistAddCmd, setlistRemoveCmd, setlistShowCmd)
	rootCmd.AddCommand(setlistCmd)
}

func runSetlistAdd(cmd *cobra.Command, args []string) error {
	date, id := args[0], args[1]
	if !song.ValidDateKey(date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	s := song.FindByID(app.Repo.Songs(), id)
	if s == nil {
		return fmt.Errorf("no song with id %s", id)
	}

	lists := app.Repo.Lists()
	lists.Append(date, *s)
	if err := reportSave("Worship lists", app.Repo.SaveLists(lists)); err != nil {
		return err
	}
	fmt.Printf("Added %q to %s (position %d)\n", s.Title, date, len(lists[date]))
	return nil
}

func runSetlistRemove(cmd *cobra.Command, args []string) error {
	date := args[0]
	if !song.ValidDateKey(date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	position, err := strconv.Atoi(args[1])
	if err != nil || position < 1 {
		return fmt.Errorf("invalid position %q", args[1])
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	lists := app.Repo.Lists()
	entries := lists[date]
	if position > len(entries) {
		return fmt.Errorf("list %s has only %d entries", date, len(entries))
	}
	removed := entries[position-1]
	lists.RemoveAt(date, position-1)

	if err := reportSave("Worship lists", app.Repo.SaveLists(lists)); err != nil {
		return err
	}
	fmt.Printf("Removed %q from %s\n", removed.Title, date)
	return nil
}

func runSetlistShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	lists := app.Repo.Lists()

	if len(args) == 0 {
		for _, date := range lists.Dates() {
			fmt.Printf("%s  %2d songs\n", date, len(lists[date]))
		}
		fmt.Printf("\n%d lists, %d entries total\n", len(lists), lists.TotalSongs())
		return nil
	}

	date := args[0]
	entries, ok := lists[date]
	if !ok {
		return fmt.Errorf("no worship list for %s", date)
	}
	fmt.Printf("Worship list %s\n", date)
	for i, entry := range entries {
		key := entry.Chord
		if key == "" {
			key = "-"
		}
		fmt.Printf("%2d. %-4s %s\n", i+1, key, entry.Title)
	}
	return nil
}
