package cmd

import (
	"fmt"

	"github.com/corey/ctxwin/internal/app"
	"github.com/spf13/cobra"
)

var refreshForce bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch fresh context window data if the cache is stale",
	Long:  "Fetches the catalog and atomically rewrites the cache when it is older than 3 days (or always, with --force).",
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVarP(&refreshForce, "force", "f", false, "refresh even if the cache is fresh")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := initModelMap()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Stop()

	res, err := a.Refresher.Refresh(cmd.Context(), refreshForce)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatRefreshResult(res, a.Refresher.Source.Name()))
	return nil
}
