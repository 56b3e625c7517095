// Package assets assigns collision-free output paths to a document's
// embedded images and collects the byte payloads for the packaging
// collaborator. It performs no disk I/O.
package assets

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

// DefaultSequenceWidth is the zero-padding width of asset sequence numbers.
const DefaultSequenceWidth = 3

const defaultExtension = ".png"

// Relocate walks the document's image blocks in appearance order, sets each
// AssignedPath to assets/<docSlug>/<sequence><ext> (sequence starting at 1),
// and returns the (path, bytes) pairs to persist. Images whose payload is
// missing from raw still get a path so the reference stays stable, but emit
// a warning instead of a pair. Identical payloads are deliberately stored
// once per occurrence; there is no cross-image dedup.
func Relocate(blocks []ir.Block, raw map[string][]byte, docSlug string) ([]ir.Asset, []string) {
	return RelocateN(blocks, raw, docSlug, DefaultSequenceWidth)
}

// RelocateN is Relocate with an explicit sequence zero-padding width.
func RelocateN(blocks []ir.Block, raw map[string][]byte, docSlug string, width int) ([]ir.Asset, []string) {
	if width < 1 {
		width = DefaultSequenceWidth
	}
	var (
		out      []ir.Asset
		warnings []string
		seq      int
	)
	for _, b := range blocks {
		img, ok := b.(*ir.Image)
		if !ok {
			continue
		}
		seq++
		img.AssignedPath = fmt.Sprintf("assets/%s/%0*d%s", docSlug, width, seq, extensionOf(img.SourceRef))

		data, ok := raw[img.SourceRef]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("image payload missing for %q", img.SourceRef))
			continue
		}
		out = append(out, ir.Asset{Path: img.AssignedPath, Data: data})
	}
	return out, warnings
}

// extensionOf extracts a lower-cased file extension from an image ref,
// falling back to .png for refs without one.
func extensionOf(ref string) string {
	ext := strings.ToLower(path.Ext(ref))
	if ext == "" || ext == "." {
		return defaultExtension
	}
	return ext
}
