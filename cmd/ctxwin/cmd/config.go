package cmd

import (
	"fmt"

	"github.com/corey/ctxwin/internal/adapters/cachefile"
	"github.com/corey/ctxwin/internal/adapters/modelsdev"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the storage root, cache files, catalog URL and check interval. Reads nothing from the cache.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := cachefile.NewPaths(cfg.StorageRoot)
	source := cfg.SourceURL
	if source == "" {
		source = modelsdev.DefaultURL
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ ctxwin config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Storage:    %s\n", cfg.StorageRoot)
	fmt.Fprintf(out, "  Cache map:  %s\n", paths.MapFile)
	fmt.Fprintf(out, "  Marker:     %s\n", paths.MarkerFile)
	fmt.Fprintf(out, "  Refresh DB: %s\n", paths.RefreshDB)
	fmt.Fprintf(out, "  Source:     %s\n", source)
	fmt.Fprintf(out, "  Interval:   %s\n", cfg.CheckInterval)
	return nil
}
