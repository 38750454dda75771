// Package cachefile implements the on-disk context window cache: a JSON map
// and a plain-text freshness marker in one directory. The Reader never writes;
// Publish replaces both files atomically for the refresher.
package cachefile

import "path/filepath"

// File names inside the cache directory.
const (
	MapFileName    = "context-windows.json"
	MarkerFileName = ".cached_at"
)

// Paths holds the resolved filesystem paths under a storage root.
// All fields are pre-computed strings.
type Paths struct {
	Root       string // <root>/
	ModelsDir  string // <root>/models/
	Dir        string // <root>/models/context-windows/
	MapFile    string // <root>/models/context-windows/context-windows.json
	MarkerFile string // <root>/models/context-windows/.cached_at
	RefreshDB  string // <root>/models/refresh.db
}

// NewPaths constructs all resolved paths from a storage root directory.
func NewPaths(storageRoot string) Paths {
	models := filepath.Join(storageRoot, "models")
	dir := filepath.Join(models, "context-windows")
	return Paths{
		Root:       storageRoot,
		ModelsDir:  models,
		Dir:        dir,
		MapFile:    filepath.Join(dir, MapFileName),
		MarkerFile: filepath.Join(dir, MarkerFileName),
		RefreshDB:  filepath.Join(models, "refresh.db"),
	}
}

// IsCacheFile reports whether path names one of the two cache files.
func IsCacheFile(path string) bool {
	base := filepath.Base(path)
	return base == MapFileName || base == MarkerFileName
}
