// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches the context window cache directory, ignores everything except the
// two cache files (the publisher's temp files come and go), and debounces
// rapid events: one Publish renames two files in quick succession.
package fsnotify

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/ctxwin/internal/adapters/cachefile"
	"github.com/corey/ctxwin/internal/ports"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
	wg      sync.WaitGroup // the event loop, including any onChange in flight
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring dir. onChange is called with the absolute path of
// each changed cache file.
func (w *Watcher) Watch(dir string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := w.fw.Add(absPath); err != nil {
		return err
	}

	// Debounce state: track last event time per file
	debounce := make(map[string]time.Time)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name
				if !cachefile.IsCacheFile(path) {
					continue
				}

				now := time.Now()
				if last, exists := debounce[path]; exists && now.Sub(last) < debounceInterval {
					continue
				}
				debounce[path] = now

				// Rename onto the target shows up as Create; a rename away as Rename.
				if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
					continue
				}
				select {
				case <-w.done:
					return
				default:
					onChange(path)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers from transient errors on its own.

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources. It waits for an onChange
// call already in progress, so it must not be called from onChange.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	err := w.fw.Close()
	w.mu.Unlock()

	w.wg.Wait()
	return err
}
