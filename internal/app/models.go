package app

import (
	"sync"

	"github.com/corey/ctxwin/internal/adapters/cachefile"
	"github.com/corey/ctxwin/internal/domain/contextwindow"
)

// The process-wide resolver. Built exactly once; concurrent first callers all
// block on the same build and then share the result.
var (
	modelMapOnce sync.Once
	modelMap     *contextwindow.Resolver
)

// NewModelMap builds a resolver over the cache under storageRoot.
func NewModelMap(storageRoot string) *contextwindow.Resolver {
	return contextwindow.New(cachefile.NewReader(cachefile.NewPaths(storageRoot)), nil)
}

// InitModelMap builds the process-wide resolver from storageRoot if it has
// not been built yet, and returns it. Once built, later calls return the
// existing resolver whatever root they pass.
func InitModelMap(storageRoot string) *contextwindow.Resolver {
	modelMapOnce.Do(func() {
		modelMap = NewModelMap(storageRoot)
	})
	return modelMap
}

// ModelMap returns the process-wide resolver, building it from the default
// configuration on first use. A configuration error falls back to the default
// storage root: lookups must work regardless.
func ModelMap() *contextwindow.Resolver {
	modelMapOnce.Do(func() {
		cfg, err := LoadConfig("", "")
		if err != nil {
			cfg = DefaultConfig()
		}
		modelMap = NewModelMap(cfg.StorageRoot)
	})
	return modelMap
}

// ContextWindowSize returns the context window of model under provider from
// the process-wide resolver.
func ContextWindowSize(provider, model string) (int, bool) {
	return ModelMap().ContextWindow(provider, model)
}
