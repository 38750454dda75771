package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/corey/ctxwin/internal/app"
	"github.com/spf13/cobra"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <provider> [model]",
	Short: "Print a model's context window, or all models of a provider",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "print JSON")
}

func runGet(cmd *cobra.Command, args []string) error {
	if _, err := initModelMap(); err != nil {
		return err
	}
	r := app.ModelMap()
	out := cmd.OutOrStdout()
	provider := args[0]

	if len(args) == 2 {
		model := args[1]
		size, ok := r.ContextWindow(provider, model)
		if !ok {
			return fmt.Errorf("no context window known for %s/%s", provider, model)
		}
		if getJSON {
			return json.NewEncoder(out).Encode(map[string]any{
				"provider":       provider,
				"model":          model,
				"context_window": size,
			})
		}
		fmt.Fprintln(out, size)
		return nil
	}

	models, ok := r.Provider(provider)
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}
	if getJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}
	fmt.Fprint(out, formatProviderModels(provider, models))
	return nil
}
