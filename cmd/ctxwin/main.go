// ctxwin resolves the context window size of LLM provider/model pairs.
// Lookups come from a refreshed on-disk cache with a built-in fallback table.
package main

import (
	"os"

	"github.com/corey/ctxwin/cmd/ctxwin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
