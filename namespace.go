package xmlmap

import (
	"fmt"
	"sync"
)

// Namespace prefixes are process-wide state registered once at startup
// by the consuming application layer. The engine itself matches names
// prefix-insensitively and never consults the registry during parse or
// build; the registry exists so applications share one authoritative
// prefix→URI mapping.

var prefixRegistry = struct {
	mu       sync.RWMutex
	prefixes map[string]string
}{prefixes: make(map[string]string)}

// RegisterPrefix binds a namespace prefix to a URI. Registering the same
// prefix with the same URI again is idempotent; registering it with a
// different URI fails with ErrNamespaceConflict.
func RegisterPrefix(prefix, uri string) error {
	prefixRegistry.mu.Lock()
	defer prefixRegistry.mu.Unlock()

	if existing, ok := prefixRegistry.prefixes[prefix]; ok {
		if existing == uri {
			return nil
		}
		return fmt.Errorf("%w: prefix %q already bound to %q", ErrNamespaceConflict, prefix, existing)
	}
	prefixRegistry.prefixes[prefix] = uri
	return nil
}

// LookupPrefix returns the URI bound to a prefix.
func LookupPrefix(prefix string) (string, bool) {
	prefixRegistry.mu.RLock()
	defer prefixRegistry.mu.RUnlock()
	uri, ok := prefixRegistry.prefixes[prefix]
	return uri, ok
}

// Prefixes returns a copy of the current prefix registrations.
func Prefixes() map[string]string {
	prefixRegistry.mu.RLock()
	defer prefixRegistry.mu.RUnlock()
	out := make(map[string]string, len(prefixRegistry.prefixes))
	for p, uri := range prefixRegistry.prefixes {
		out[p] = uri
	}
	return out
}
