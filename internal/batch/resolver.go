package batch

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docnorm/internal/ir"
	"git.home.luguber.info/inful/docnorm/internal/registry"
	"git.home.luguber.info/inful/docnorm/internal/slugify"
)

// Warning message prefixes emitted during link resolution.
const (
	WarnUnresolvedLink = "unresolved internal link"
	WarnAnchorNotFound = "anchor not found in target document"
)

// resolver rewrites internal links against a read-only snapshot of the link
// registry. It is constructed once after the Phase 1 barrier and shared by
// all Phase 2 workers.
type resolver struct {
	entries map[string]registry.Entry
	byBase  map[string]string // file base name -> source path, first lexicographic wins
}

func newResolver(entries map[string]registry.Entry) *resolver {
	r := &resolver{
		entries: entries,
		byBase:  make(map[string]string, len(entries)),
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		base := path.Base(k)
		if _, ok := r.byBase[base]; !ok {
			r.byBase[base] = k
		}
	}
	return r
}

// resolve rewrites every link block of doc in place and reports the number
// of unresolved internal links. External links pass through verbatim; links
// whose target is unknown stay untouched and only degrade the quality score.
func (r *resolver) resolve(doc *ir.Document) (unresolved int) {
	for _, b := range doc.Blocks {
		link, ok := b.(*ir.Link)
		if !ok {
			continue
		}
		if link.TargetRef == "" || isExternal(link.TargetRef) {
			continue
		}

		entry, found := r.lookup(link.TargetRef)
		if !found {
			doc.Diagnostics.Warn(fmt.Sprintf("%s: %s", WarnUnresolvedLink, link.TargetRef))
			unresolved++
			continue
		}

		link.TargetRef = relativeTo(doc.OutputPath, entry.OutputPath)
		link.Resolved = true
		if link.Anchor == "" {
			continue
		}
		if slug, ok := matchAnchor(entry, link.Anchor); ok {
			link.Anchor = slug
		} else {
			doc.Diagnostics.Warn(fmt.Sprintf("%s: %q in %s", WarnAnchorNotFound, link.Anchor, link.TargetRef))
			link.Anchor = ""
		}
	}
	doc.Status = ir.StatusResolved
	return unresolved
}

// lookup tries the raw ref, its percent-decoded form, and finally the bare
// file name against the registry.
func (r *resolver) lookup(ref string) (registry.Entry, bool) {
	candidates := []string{ref}
	if trimmed := strings.TrimPrefix(ref, "./"); trimmed != ref {
		candidates = append(candidates, trimmed)
	}
	if decoded, err := url.PathUnescape(ref); err == nil && decoded != ref {
		candidates = append(candidates, decoded)
	}
	for _, c := range candidates {
		if e, ok := r.entries[c]; ok {
			return e, true
		}
	}
	for _, c := range candidates {
		if src, ok := r.byBase[path.Base(c)]; ok {
			return r.entries[src], true
		}
	}
	return registry.Entry{}, false
}

// matchAnchor finds the best slug for a link anchor: exact heading text
// first, then slug-folded comparison against both heading texts and final
// slugs.
func matchAnchor(e registry.Entry, anchor string) (string, bool) {
	if slug, ok := e.Slugs[anchor]; ok {
		return slug, true
	}
	want := slugify.Slug(anchor)
	texts := make([]string, 0, len(e.Slugs))
	for text := range e.Slugs {
		texts = append(texts, text)
	}
	sort.Strings(texts) // deterministic choice among candidates
	for _, text := range texts {
		slug := e.Slugs[text]
		if slug == anchor || slug == want || slugify.Slug(text) == want {
			return slug, true
		}
	}
	return "", false
}

// isExternal reports whether a ref is scheme-qualified or protocol-relative.
func isExternal(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

// relativeTo computes target relative to the directory of from. Output
// layouts are flat today, so this usually returns target unchanged, but the
// resolver must not silently break if packaging ever nests outputs.
func relativeTo(from, target string) string {
	fromDir := path.Dir(from)
	if fromDir == "." || fromDir == "/" {
		return target
	}
	if strings.HasPrefix(target, fromDir+"/") {
		return strings.TrimPrefix(target, fromDir+"/")
	}
	up := strings.Count(fromDir, "/") + 1
	return strings.Repeat("../", up) + target
}
