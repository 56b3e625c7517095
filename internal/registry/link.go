package registry

import "sync"

// Entry is one document's published location: its assigned output path and
// the heading-text -> final-slug table.
type Entry struct {
	OutputPath string
	Slugs      map[string]string
}

// LinkRegistry maps source paths to published entries. Phase 1 writes (one
// writer per document), Phase 2 only reads; the barrier between the phases
// guarantees every document's entry is visible before any link resolves.
type LinkRegistry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewLinkRegistry creates an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{entries: make(map[string]Entry)}
}

// Publish stores the entry for a source path. Called exactly once per
// document during Phase 1.
func (r *LinkRegistry) Publish(sourcePath string, e Entry) {
	r.mu.Lock()
	r.entries[sourcePath] = e
	r.mu.Unlock()
}

// Lookup returns the entry for a source path.
func (r *LinkRegistry) Lookup(sourcePath string) (Entry, bool) {
	r.mu.RLock()
	e, ok := r.entries[sourcePath]
	r.mu.RUnlock()
	return e, ok
}

// Len reports the number of published entries.
func (r *LinkRegistry) Len() int {
	r.mu.RLock()
	n := len(r.entries)
	r.mu.RUnlock()
	return n
}

// Snapshot copies the registry map. The resolver takes one snapshot after
// the barrier instead of locking per link.
func (r *LinkRegistry) Snapshot() map[string]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Entry, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}
