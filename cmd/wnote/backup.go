package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/worshipnote/internal/util"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of the whole database",
	Long: `Write a timestamped JSON snapshot of both collections. Snapshots are
append-only; existing snapshot files are never overwritten.`,
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot>",
	Short: "Replace the database from a snapshot file",
	Long: `Replace both collections with the contents of a snapshot. The current
state is snapshotted first, so a bad restore can itself be restored. The
snapshot is validated before anything is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	backupCmd.Flags().String("dir", "backups", "directory to write the snapshot into")
	restoreCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	restoreCmd.Flags().String("dir", "backups", "directory for the safety snapshot")
	rootCmd.AddCommand(backupCmd, restoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	dir, _ := cmd.Flags().GetString("dir")
	path, stats, err := app.Repo.Backup(app.Files, dir)
	if err != nil {
		return err
	}

	util.SuccessLog("Backup written: %s", path)
	util.InfoLog("  Songs: %d", stats.TotalSongs)
	util.InfoLog("  Worship lists: %d (%d entries)", stats.TotalWorshipLists, stats.TotalWorshipListSongs)
	util.InfoLog("  Size: %s", humanize.Bytes(uint64(stats.BackupSize)))
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		songs := app.Repo.Songs()
		lists := app.Repo.Lists()
		prompt := fmt.Sprintf("This replaces %d songs and %d worship lists with the contents of %s. Continue?",
			len(songs), len(lists), args[0])
		if !confirm(prompt) {
			util.InfoLog("Restore cancelled")
			return nil
		}
	}

	// Snapshot the current state first so the restore is reversible.
	dir, _ := cmd.Flags().GetString("dir")
	safety, _, err := app.Repo.Backup(app.Files, dir)
	if err != nil {
		return fmt.Errorf("refusing to restore, safety snapshot failed: %w", err)
	}
	util.InfoLog("Safety snapshot: %s", safety)

	restored, status, err := app.Repo.Restore(data)
	if err != nil {
		return err
	}
	if status.RemoteErr != nil {
		util.WarnLog("Restored locally, cloud folder not updated: %v", status.RemoteErr)
	}
	util.SuccessLog("Restored %d songs and %d worship lists", len(restored.Songs), len(restored.Lists))
	return nil
}
