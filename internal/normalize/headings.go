// Package normalize repairs a single document's structure: heading hierarchy,
// slug assignment, and whitespace. Normalization never fails; every repair is
// recorded as a warning.
package normalize

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docnorm/internal/ir"
	"git.home.luguber.info/inful/docnorm/internal/slugify"
)

// Warning message prefixes. Kept stable because they surface verbatim in the
// per-document diagnostics and the batch report.
const (
	WarnMultipleTitles = "multiple top-level headings, demoted"
	WarnLevelSkip      = "heading level skip corrected"
)

// Result is the outcome of heading normalization for one document.
type Result struct {
	Tree     []ir.HeadingRef
	Warnings []string
}

// Headings rewrites heading levels in place so the sequence has exactly one
// level-1 heading and no jump deeper than one level, then assigns each
// heading its final slug. fallbackTitle seeds a synthesized level-1 heading
// when the document has none (expected for spreadsheet-derived documents, so
// no warning).
func Headings(blocks []ir.Block, fallbackTitle string) ([]ir.Block, Result) {
	return HeadingsN(blocks, fallbackTitle, slugify.DefaultMaxLength)
}

// HeadingsN is Headings with an explicit slug length limit.
func HeadingsN(blocks []ir.Block, fallbackTitle string, slugMax int) ([]ir.Block, Result) {
	var res Result

	hasTitle := false
	for _, b := range blocks {
		if h, ok := b.(*ir.Heading); ok && h.Level == 1 {
			hasTitle = true
			break
		}
	}
	if !hasTitle {
		title := strings.TrimSpace(fallbackTitle)
		if title == "" {
			title = "Untitled"
		}
		blocks = append([]ir.Block{&ir.Heading{Level: 1, Text: title}}, blocks...)
	}

	sawTitle := false
	lastLevel := 0
	for _, b := range blocks {
		h, ok := b.(*ir.Heading)
		if !ok {
			continue
		}

		if h.Level == 1 {
			if sawTitle {
				h.Level = 2
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s: %q", WarnMultipleTitles, h.Text))
			} else {
				sawTitle = true
			}
		}

		if lastLevel > 0 && h.Level > lastLevel+1 {
			corrected := lastLevel + 1
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s: %q (H%d -> H%d)", WarnLevelSkip, h.Text, h.Level, corrected))
			h.Level = corrected
		}
		lastLevel = h.Level
	}

	assignSlugs(blocks, &res, slugMax)
	return blocks, res
}

// assignSlugs gives every heading its final slug, appending -2, -3, ... in
// document order when the base slug repeats within the document. Suffixed
// variants probe past slugs already taken by other headings ("A", "A", "A 2"
// must not collide on a-2), same scheme as FilenameRegistry.Assign.
func assignSlugs(blocks []ir.Block, res *Result, slugMax int) {
	reserved := make(map[string]struct{})
	counts := make(map[string]int)
	for _, b := range blocks {
		h, ok := b.(*ir.Heading)
		if !ok {
			continue
		}
		base := slugify.SlugN(h.Text, slugMax)
		if base == "" {
			base = "section"
		}
		slug := base
		if _, taken := reserved[slug]; taken {
			n := counts[base]
			if n < 2 {
				n = 2
			}
			for {
				slug = fmt.Sprintf("%s-%d", base, n)
				if _, taken := reserved[slug]; !taken {
					counts[base] = n
					break
				}
				n++
			}
		}
		reserved[slug] = struct{}{}
		h.ID = slug
		res.Tree = append(res.Tree, ir.HeadingRef{Level: h.Level, Slug: slug, Text: h.Text})
	}
}

// Whitespace trims trailing whitespace from paragraph runs in place and
// drops runs that become empty.
func Whitespace(blocks []ir.Block) {
	for _, b := range blocks {
		p, ok := b.(*ir.Paragraph)
		if !ok {
			continue
		}
		runs := p.Runs[:0]
		for _, r := range p.Runs {
			r = strings.TrimRight(r, " \t")
			if r != "" {
				runs = append(runs, r)
			}
		}
		p.Runs = runs
	}
}
