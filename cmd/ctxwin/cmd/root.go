package cmd

import (
	"github.com/corey/ctxwin/internal/app"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:           "ctxwin",
	Short:         "ctxwin: context window sizes for LLM models",
	Long:          "Resolves provider/model context window sizes from a refreshed cache, falling back to a built-in table.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// loadConfig resolves configuration from the global flags.
func loadConfig() (app.Config, error) {
	return app.LoadConfig(flagConfig, flagEnvFile)
}

// initModelMap builds the process-wide resolver from the configured root.
func initModelMap() (app.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return app.Config{}, err
	}
	app.InitModelMap(cfg.StorageRoot)
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default <user config dir>/ctxwin/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file with CTXWIN_* overrides")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}
