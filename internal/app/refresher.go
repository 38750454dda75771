package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/corey/ctxwin/internal/domain/contextwindow"
	"github.com/corey/ctxwin/internal/ports"
)

// Refresher re-populates the cache when the resolver reports it stale.
// It is the only writer of the cache files.
type Refresher struct {
	Resolver  *contextwindow.Resolver
	Source    ports.Source
	Publisher ports.Publisher
	Log       ports.RefreshLog // optional
	Now       func() time.Time // nil = time.Now
}

// RefreshResult describes one Refresh call.
type RefreshResult struct {
	Refreshed bool
	Providers int
	Models    int
}

// Refresh fetches and publishes fresh data when forced or when the cache is
// stale, then reloads the resolver. A failed fetch or publish leaves the
// resolver serving its previous state. Every attempt is recorded in the log.
func (r *Refresher) Refresh(ctx context.Context, force bool) (RefreshResult, error) {
	if !force && !r.Resolver.IsCacheStale() {
		return RefreshResult{}, nil
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	rec := ports.RefreshRecord{
		AtMillis: now().UnixMilli(),
		Source:   r.Source.Name(),
	}

	windows, err := r.Source.Fetch(ctx)
	if err != nil {
		rec.Err = err.Error()
		r.record(rec)
		return RefreshResult{}, fmt.Errorf("refresh: %w", err)
	}
	rec.Providers = len(windows)
	rec.Models = windows.ModelCount()

	if err := r.Publisher.Publish(windows, rec.AtMillis); err != nil {
		rec.Err = err.Error()
		r.record(rec)
		return RefreshResult{}, fmt.Errorf("refresh: %w", err)
	}
	r.record(rec)
	r.Resolver.Reload()

	return RefreshResult{Refreshed: true, Providers: rec.Providers, Models: rec.Models}, nil
}

// record writes to the log if there is one. Log failures never fail a refresh.
func (r *Refresher) record(rec ports.RefreshRecord) {
	if r.Log == nil {
		return
	}
	if err := r.Log.Record(rec); err != nil {
		fmt.Fprintf(os.Stderr, "[warning] refresh log: %v\n", err)
	}
}
