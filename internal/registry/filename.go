// Package registry holds the two batch-scoped shared-mutable resources: the
// filename registry (globally unique output names) and the link registry
// (source path -> output path + slug table). Both expose a narrow API with
// short-held locks and never leak as ambient global state.
package registry

import (
	"fmt"
	"strings"
	"sync"
)

// FilenameRegistry hands out globally unique, sanitized output base names
// for the lifetime of one batch. Safe for concurrent use; given a fixed
// input set assigned in lexicographic source order the results are
// reproducible across runs.
type FilenameRegistry struct {
	mu       sync.Mutex
	reserved map[string]struct{}
	counts   map[string]int
}

// NewFilenameRegistry creates an empty registry.
func NewFilenameRegistry() *FilenameRegistry {
	return &FilenameRegistry{
		reserved: make(map[string]struct{}),
		counts:   make(map[string]int),
	}
}

// Assign sanitizes the proposed base name, reserves the first unused variant
// (name, name-2, name-3, ...), and returns it. This is the only operation in
// the batch requiring cross-document mutual exclusion.
func (r *FilenameRegistry) Assign(proposed string) string {
	base := SanitizeName(proposed)

	r.mu.Lock()
	defer r.mu.Unlock()

	name := base
	if _, taken := r.reserved[name]; taken {
		// Resume from the last suffix handed out for this base; later
		// explicit names like "x-2" may force extra probing.
		n := r.counts[base]
		if n < 2 {
			n = 2
		}
		for {
			name = fmt.Sprintf("%s-%d", base, n)
			if _, taken := r.reserved[name]; !taken {
				r.counts[base] = n
				break
			}
			n++
		}
	}
	r.reserved[name] = struct{}{}
	return name
}

// SanitizeName maps an arbitrary proposed name onto the [a-z0-9-_] output
// charset: lower-cased, whitespace to dashes, everything else dropped, dash
// runs collapsed. Empty results become "unnamed".
func SanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastDash = false
		case r == ' ', r == '\t', r == '-', r == '.':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "unnamed"
	}
	return out
}
