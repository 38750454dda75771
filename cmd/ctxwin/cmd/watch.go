package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corey/ctxwin/internal/app"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cache fresh until interrupted",
	Long:  "Refreshes the cache whenever it goes stale and reloads on external cache replacement. Stops on SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "staleness check interval (default from config, 1h)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := initModelMap()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Stop()

	// The cache dir may not exist until the first refresh; not fatal.
	if err := a.Start(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[warning] cache watcher unavailable: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ watching%s %s\n", colorBold, colorReset, a.Paths.Dir)
	err = a.Run(ctx, watchInterval, func(res app.RefreshResult, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "[warning] %v\n", err)
			return
		}
		fmt.Fprintln(out, formatRefreshResult(res, a.Refresher.Source.Name()))
		if a.Watcher == nil {
			if err := a.Start(); err == nil {
				fmt.Fprintf(out, "%s⚡ watcher started%s\n", colorBold, colorReset)
			}
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
