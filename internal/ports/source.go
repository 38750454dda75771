package ports

import "context"

// Source fetches fresh provider/model context window data from an upstream
// catalog. Used only by the refresher; lookups never touch a Source.
type Source interface {
	// Fetch returns the full catalog. A nil error implies a non-empty map.
	Fetch(ctx context.Context) (ContextWindowMap, error)

	// Name identifies the source in the refresh log (usually its URL).
	Name() string
}

// Publisher atomically replaces the on-disk cache. Readers running
// concurrently must observe either the previous or the new files, never a
// partially written one.
type Publisher interface {
	Publish(windows ContextWindowMap, cachedAtMillis int64) error
}
