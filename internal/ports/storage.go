// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// RefreshLog persists the history of cache refresh attempts.
// The backing store (bbolt) lives next to the cache directory, never inside it.
// Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: Record must be transactional. A crash mid-write must not
// corrupt previously committed records.
type RefreshLog interface {
	// Record appends one refresh attempt.
	Record(rec RefreshRecord) error

	// Last returns the most recent record.
	// Returns nil, nil if nothing has been recorded yet.
	Last() (*RefreshRecord, error)

	// List returns up to limit records, newest first. limit <= 0 means all.
	List(limit int) ([]RefreshRecord, error)
}

// RefreshRecord describes one refresh attempt, successful or not.
type RefreshRecord struct {
	AtMillis  int64  `json:"at_ms"`
	Source    string `json:"source"`
	Providers int    `json:"providers"`
	Models    int    `json:"models"`
	Err       string `json:"error,omitempty"` // empty on success
}

// OK reports whether the refresh succeeded.
func (r RefreshRecord) OK() bool {
	return r.Err == ""
}
