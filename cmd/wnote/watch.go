package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/franz/worshipnote/internal/util"
	"github.com/franz/worshipnote/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the cloud folder and keep the local cache fresh",
	Long: `Watch the database folder for rewrites by the cloud sync client and pull
each change into the local cache as it lands. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before reacting to a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watch.New(app.Remote.Dir(), debounce, func(changed []string) {
		util.InfoLog("Cloud folder changed: %v", changed)
		decision := app.Repo.Load()
		if decision.Songs.NeedsPull || decision.Lists.NeedsPull {
			songs := app.Repo.Songs()
			lists := app.Repo.Lists()
			util.SuccessLog("Pulled: %d songs, %d worship lists", len(songs), len(lists))
		} else {
			util.DebugLog("No pull needed")
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	util.InfoLog("Watching %s (debounce %s), Ctrl-C to stop", app.Remote.Dir(), debounce.Round(time.Millisecond))
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		util.InfoLog("Stopped")
		return nil
	}
	return err
}
