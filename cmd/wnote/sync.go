package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/worshipnote/internal/syncstate"
	"github.com/franz/worshipnote/internal/util"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local cache with the cloud database",
	Long: `Compare the local cache against the cloud-synced database folder and pull
whichever collection is fresher on the remote side. The two collections are
compared independently. With --push the in-memory state is also written back
to the cloud folder, which is only needed after the folder was unreachable
during an earlier save.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("push", false, "write the current collections back to the cloud folder")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	// openApp already ran the pull; report what it decided.
	printVerdict("songs", app.Decision.Songs)
	printVerdict("worship lists", app.Decision.Lists)

	songs := app.Repo.Songs()
	lists := app.Repo.Lists()
	fmt.Printf("\n%d songs, %d worship lists (%d entries)\n", len(songs), len(lists), lists.TotalSongs())

	if push, _ := cmd.Flags().GetBool("push"); push {
		if err := reportSave("Songs", app.Repo.SaveSongs(songs)); err != nil {
			return err
		}
		if err := reportSave("Worship lists", app.Repo.SaveLists(lists)); err != nil {
			return err
		}
	}
	return nil
}

func printVerdict(name string, v syncstate.Collection) {
	switch v.Reason {
	case syncstate.ReasonBothEmpty:
		util.InfoLog("%s: no data on either side", name)
	case syncstate.ReasonRemoteEmpty:
		util.InfoLog("%s: no remote snapshot, keeping local data", name)
	case syncstate.ReasonLocalEmpty:
		util.SuccessLog("%s: pulled the remote snapshot into an empty cache", name)
	case syncstate.ReasonOneSideNewer:
		util.SuccessLog("%s: pulled a newer remote snapshot", name)
	default:
		util.InfoLog("%s: up to date", name)
	}
}
