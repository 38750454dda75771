package cmd

import (
	"fmt"

	"github.com/corey/ctxwin/internal/app"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache freshness and refresh history",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := initModelMap()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Stop()

	st, err := a.Status()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[warning] %v\n", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatStatus(st))
	return nil
}
