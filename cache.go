package xmlmap

import (
	"log/slog"
	"path/filepath"
	"sync"
)

// SchemaCache loads schema files at most once and hands the shared,
// immutable Schema to every caller. Safe for concurrent use.
type SchemaCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	BasePath string // base path for resolving relative schema locations
}

type cacheEntry struct {
	once   sync.Once
	path   string
	schema *Schema
	err    error
}

// DefaultCache is the package-level schema cache.
var DefaultCache = NewSchemaCache("")

// NewSchemaCache creates a schema cache rooted at basePath.
func NewSchemaCache(basePath string) *SchemaCache {
	return &SchemaCache{
		entries:  make(map[string]*cacheEntry),
		BasePath: basePath,
	}
}

// Get returns the schema at location, loading it (with its includes) on
// first use. Concurrent callers for the same location share one load.
func (c *SchemaCache) Get(location string) (*Schema, error) {
	path := c.resolvePath(location)

	c.mu.Lock()
	entry, ok := c.entries[path]
	if !ok {
		entry = &cacheEntry{path: path}
		c.entries[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		slog.Debug("loading schema", "path", entry.path)
		entry.schema, entry.err = LoadSchemaFile(entry.path)
		if entry.err != nil {
			slog.Debug("schema load failed", "path", entry.path, "error", entry.err)
		}
	})
	return entry.schema, entry.err
}

// Invalidate drops a cached schema so the next Get reloads it.
func (c *SchemaCache) Invalidate(location string) {
	path := c.resolvePath(location)
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

func (c *SchemaCache) resolvePath(location string) string {
	if filepath.IsAbs(location) || c.BasePath == "" {
		return location
	}
	return filepath.Join(c.BasePath, location)
}
