// Package contextwindow resolves the context window size of a provider/model
// pair. Lookups are served from an in-memory effective map built from the
// static fallback table overlaid with the on-disk cache, if one is usable.
//
// A Resolver never performs I/O on the lookup path and never returns an error
// to lookup callers: every cache problem degrades to the fallback table.
package contextwindow

import (
	"sync/atomic"
	"time"

	"github.com/corey/ctxwin/internal/ports"
)

// TTL is how long a populated cache counts as fresh.
const TTL = 3 * 24 * time.Hour

// state is one immutable build of the resolver. It is never modified after
// publication; Reload replaces it wholesale.
type state struct {
	effective      ports.ContextWindowMap
	cacheLoaded    bool
	loadErr        error
	cachedAtMillis int64
	hasMarker      bool
}

// Resolver answers context window lookups. Safe for concurrent use.
type Resolver struct {
	loader ports.SnapshotLoader
	now    func() time.Time
	cur    atomic.Pointer[state]
}

// New builds a resolver from loader. now supplies the clock for staleness
// checks; nil means time.Now. The loader is consulted once here and again
// only on Reload.
func New(loader ports.SnapshotLoader, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	r := &Resolver{loader: loader, now: now}
	r.cur.Store(build(loader))
	return r
}

// build runs one full initialization. A nil loader yields the fallback table.
func build(loader ports.SnapshotLoader) *state {
	if loader == nil {
		return &state{effective: Fallback(), loadErr: ports.ErrCacheMissing}
	}

	snap := loader.Load()
	s := &state{
		cachedAtMillis: snap.CachedAtMillis,
		hasMarker:      snap.HasMarker,
	}
	if snap.OK() {
		s.effective = Merge(fallbackTable, snap.Windows)
		s.cacheLoaded = true
	} else {
		s.effective = Fallback()
		s.loadErr = snap.Err
		if s.loadErr == nil {
			s.loadErr = ports.ErrCacheMissing
		}
	}
	return s
}

// Reload re-reads the cache and atomically replaces the served state.
// Lookups running concurrently see either the old or the new state.
func (r *Resolver) Reload() {
	r.cur.Store(build(r.loader))
}

// Provider returns the model map for provider. The map is a copy; mutating it
// does not affect the resolver. Returns false for an empty or unknown provider.
func (r *Resolver) Provider(provider string) (ports.ProviderModelMap, bool) {
	if provider == "" {
		return nil, false
	}
	models, ok := r.cur.Load().effective[provider]
	if !ok {
		return nil, false
	}
	return models.Clone(), true
}

// ContextWindow returns the context window size of model under provider.
// Returns false when either identifier is empty or unknown.
func (r *Resolver) ContextWindow(provider, model string) (int, bool) {
	if provider == "" || model == "" {
		return 0, false
	}
	models, ok := r.cur.Load().effective[provider]
	if !ok {
		return 0, false
	}
	size, ok := models[model]
	return size, ok
}

// Get is the loosely typed lookup: with no model (or an empty one) it returns
// the provider's ports.ProviderModelMap, with a model it returns the int size.
// Absence of any kind is reported as nil. Extra arguments after the first
// model are ignored.
func (r *Resolver) Get(provider string, model ...string) any {
	if len(model) == 0 || model[0] == "" {
		if models, ok := r.Provider(provider); ok {
			return models
		}
		return nil
	}
	if size, ok := r.ContextWindow(provider, model[0]); ok {
		return size
	}
	return nil
}

// IsCacheStale reports whether the refresher should run: the freshness
// marker is missing or older than TTL. Evaluated against the clock on every
// call. It says nothing about whether the map itself loaded.
func (r *Resolver) IsCacheStale() bool {
	s := r.cur.Load()
	if !s.hasMarker {
		return true
	}
	return r.now().UnixMilli()-s.cachedAtMillis > TTL.Milliseconds()
}

// CacheLoaded reports whether the served map includes on-disk cache data.
func (r *Resolver) CacheLoaded() bool {
	return r.cur.Load().cacheLoaded
}

// LoadErr returns why the cache was not used, or nil if it was.
func (r *Resolver) LoadErr() error {
	return r.cur.Load().loadErr
}

// CachedAt returns the freshness marker time, if one was read.
func (r *Resolver) CachedAt() (time.Time, bool) {
	s := r.cur.Load()
	if !s.hasMarker {
		return time.Time{}, false
	}
	return time.UnixMilli(s.cachedAtMillis), true
}

// Providers returns the number of providers and models currently served.
func (r *Resolver) Providers() (providers, models int) {
	s := r.cur.Load()
	return len(s.effective), s.effective.ModelCount()
}
