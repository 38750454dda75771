package ports

import "errors"

// ProviderModelMap maps a model identifier to its context window size in tokens.
type ProviderModelMap map[string]int

// ContextWindowMap maps a provider identifier to its models.
type ContextWindowMap map[string]ProviderModelMap

// Clone returns a copy of m that shares no maps with it. Nil stays nil.
func (m ProviderModelMap) Clone() ProviderModelMap {
	if m == nil {
		return nil
	}
	out := make(ProviderModelMap, len(m))
	for model, size := range m {
		out[model] = size
	}
	return out
}

// Clone returns a deep copy of m. Nil stays nil.
func (m ContextWindowMap) Clone() ContextWindowMap {
	if m == nil {
		return nil
	}
	out := make(ContextWindowMap, len(m))
	for provider, models := range m {
		out[provider] = models.Clone()
	}
	return out
}

// ModelCount returns the total number of model entries across all providers.
func (m ContextWindowMap) ModelCount() int {
	n := 0
	for _, models := range m {
		n += len(models)
	}
	return n
}

// Reasons a cache snapshot could not be used. Every one of them resolves to
// the same action: serve the static fallback table.
var (
	ErrCacheMissing    = errors.New("context window cache not found")
	ErrCacheUnreadable = errors.New("context window cache unreadable")
	ErrCacheMalformed  = errors.New("context window cache malformed")
)

// Snapshot is the outcome of one attempt to read the on-disk cache.
//
// Exactly one of Windows and Err is set. Marker fields are independent of the
// map: a valid map may come with no marker and vice versa.
type Snapshot struct {
	Windows ContextWindowMap
	Err     error

	CachedAtMillis int64
	HasMarker      bool
}

// OK reports whether the snapshot carries usable context window data.
func (s Snapshot) OK() bool {
	return s.Err == nil && s.Windows != nil
}

// SnapshotLoader reads the context window cache. Implementations must never
// panic and must report every failure through Snapshot.Err.
type SnapshotLoader interface {
	Load() Snapshot
}
