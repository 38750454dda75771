package cachefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/corey/ctxwin/internal/ports"
	"github.com/google/uuid"
)

// Publisher implements ports.Publisher by writing into the cache directory.
type Publisher struct {
	paths Paths
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher for the cache under paths.
func NewPublisher(paths Paths) *Publisher {
	return &Publisher{paths: paths}
}

// Publish writes windows and the freshness marker. Each file is written to a
// temp file in the same directory and renamed into place, so a concurrent
// Reader sees either the old or the new content. The map is replaced before
// the marker: a crash in between leaves fresh data with an old marker, which
// only causes an extra refresh.
func (p *Publisher) Publish(windows ports.ContextWindowMap, cachedAtMillis int64) error {
	if windows == nil {
		return fmt.Errorf("publish: nil context window map")
	}
	if err := os.MkdirAll(p.paths.Dir, 0755); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	data, err := json.MarshalIndent(windows, "", "  ")
	if err != nil {
		return fmt.Errorf("publish: marshal: %w", err)
	}
	if err := writeAtomic(p.paths.MapFile, data); err != nil {
		return fmt.Errorf("publish map: %w", err)
	}

	marker := []byte(strconv.FormatInt(cachedAtMillis, 10))
	if err := writeAtomic(p.paths.MarkerFile, marker); err != nil {
		return fmt.Errorf("publish marker: %w", err)
	}
	return nil
}

// writeAtomic writes to a temp file then renames it onto path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%s", uuid.New().String()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
