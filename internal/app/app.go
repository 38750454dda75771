// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the refresh/watch loop: create, start,
// run, stop. Plain lookups only need ModelMap.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/corey/ctxwin/internal/adapters/bbolt"
	"github.com/corey/ctxwin/internal/adapters/cachefile"
	fsw "github.com/corey/ctxwin/internal/adapters/fsnotify"
	"github.com/corey/ctxwin/internal/adapters/modelsdev"
	"github.com/corey/ctxwin/internal/domain/contextwindow"
	"github.com/corey/ctxwin/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	Config    Config
	Paths     cachefile.Paths
	Resolver  *contextwindow.Resolver
	Refresher *Refresher
	Log       *bbolt.Store // nil when the refresh log could not be opened
	Watcher   *fsw.Watcher // nil until Start

	mu      sync.Mutex
	reloads int
}

// New creates an App with all dependencies wired. Does not start services.
// resolver nil means the process-wide ModelMap built from cfg.StorageRoot.
// An unavailable refresh log is reported but not fatal.
func New(cfg Config, resolver *contextwindow.Resolver) (*App, error) {
	if cfg.StorageRoot == "" {
		return nil, fmt.Errorf("storage root required")
	}
	if resolver == nil {
		resolver = InitModelMap(cfg.StorageRoot)
	}

	paths := cachefile.NewPaths(cfg.StorageRoot)
	a := &App{
		Config:   cfg,
		Paths:    paths,
		Resolver: resolver,
	}

	store, err := bbolt.NewStore(paths.RefreshDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warning] refresh log unavailable: %v\n", err)
	} else {
		a.Log = store
	}

	a.Refresher = &Refresher{
		Resolver:  resolver,
		Source:    modelsdev.NewSource(cfg.SourceURL),
		Publisher: cachefile.NewPublisher(paths),
	}
	if a.Log != nil {
		a.Refresher.Log = a.Log
	}
	return a, nil
}

// Start begins watching the cache directory so replacements by any
// refresher, in this process or another, are picked up.
func (a *App) Start() error {
	watcher, err := fsw.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Watch(a.Paths.Dir, a.onCacheChanged); err != nil {
		watcher.Stop()
		return fmt.Errorf("watch %s: %w", a.Paths.Dir, err)
	}
	a.Watcher = watcher
	return nil
}

// Stop releases the watcher and the refresh log.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	if a.Log != nil {
		return a.Log.Close()
	}
	return nil
}

func (a *App) onCacheChanged(path string) {
	a.Resolver.Reload()
	a.mu.Lock()
	a.reloads++
	a.mu.Unlock()
}

// Reloads returns how many watcher-triggered reloads have happened.
func (a *App) Reloads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reloads
}

// Run refreshes once immediately, then every interval while the cache is
// stale, until ctx is cancelled. Refresh failures are reported through
// onResult and do not stop the loop.
func (a *App) Run(ctx context.Context, interval time.Duration, onResult func(RefreshResult, error)) error {
	if interval <= 0 {
		interval = a.Config.CheckInterval
	}
	if interval <= 0 {
		interval = time.Hour
	}

	tick := func() {
		res, err := a.Refresher.Refresh(ctx, false)
		if onResult != nil && (err != nil || res.Refreshed) {
			onResult(res, err)
		}
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick()
		}
	}
}

// Status summarizes the resolver and the refresh history.
type Status struct {
	CacheDir    string
	CacheLoaded bool
	LoadErr     error
	CachedAt    time.Time
	HasMarker   bool
	Stale       bool
	Providers   int
	Models      int
	LastRefresh *ports.RefreshRecord
}

// Status reports the current state. The refresh log is optional.
func (a *App) Status() (Status, error) {
	st := Status{
		CacheDir:    a.Paths.Dir,
		CacheLoaded: a.Resolver.CacheLoaded(),
		LoadErr:     a.Resolver.LoadErr(),
		Stale:       a.Resolver.IsCacheStale(),
	}
	st.CachedAt, st.HasMarker = a.Resolver.CachedAt()
	st.Providers, st.Models = a.Resolver.Providers()

	if a.Log != nil {
		last, err := a.Log.Last()
		if err != nil {
			return st, fmt.Errorf("read refresh log: %w", err)
		}
		st.LastRefresh = last
	}
	return st, nil
}
