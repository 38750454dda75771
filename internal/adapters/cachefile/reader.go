package cachefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/corey/ctxwin/internal/ports"
)

// Reader implements ports.SnapshotLoader over a cache directory.
type Reader struct {
	paths Paths
}

var _ ports.SnapshotLoader = (*Reader)(nil)

// NewReader creates a reader for the cache under paths.
func NewReader(paths Paths) *Reader {
	return &Reader{paths: paths}
}

// Load reads the map file and the marker file. It performs no writes, and
// every failure ends up in Snapshot.Err; nothing is returned half-parsed.
func (r *Reader) Load() ports.Snapshot {
	var snap ports.Snapshot
	snap.Windows, snap.Err = readMap(r.paths.MapFile)
	snap.CachedAtMillis, snap.HasMarker = readMarker(r.paths.MarkerFile)
	return snap
}

func readMap(path string) (ports.ContextWindowMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ports.ErrCacheMissing, path)
		}
		return nil, fmt.Errorf("%w: %v", ports.ErrCacheUnreadable, err)
	}
	windows, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return windows, nil
}

// Decode parses a cache map document. The top level must be an object whose
// values are objects mapping model names to non-negative integers; anything
// else is ErrCacheMalformed. An empty top-level object is valid.
func Decode(data []byte) (ports.ContextWindowMap, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrCacheMalformed, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ports.ErrCacheMalformed)
	}

	out := make(ports.ContextWindowMap, len(top))
	for provider, raw := range top {
		models, err := decodeProvider(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: provider %q: %v", ports.ErrCacheMalformed, provider, err)
		}
		out[provider] = models
	}
	return out, nil
}

func decodeProvider(raw json.RawMessage) (ports.ProviderModelMap, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("not an object")
	}

	models := make(ports.ProviderModelMap, len(fields))
	for model, v := range fields {
		size, err := strconv.Atoi(string(bytes.TrimSpace(v)))
		if err != nil {
			return nil, fmt.Errorf("model %q: %s is not an integer", model, v)
		}
		if size < 0 {
			return nil, fmt.Errorf("model %q: negative size %d", model, size)
		}
		models[model] = size
	}
	return models, nil
}

// readMarker parses the freshness marker. Missing, empty and non-integer
// markers all report absent.
func readMarker(path string) (int64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
