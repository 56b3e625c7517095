package batch

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/docnorm/internal/assets"
	derrors "git.home.luguber.info/inful/docnorm/internal/errors"
	"git.home.luguber.info/inful/docnorm/internal/ir"
	"git.home.luguber.info/inful/docnorm/internal/normalize"
	"git.home.luguber.info/inful/docnorm/internal/registry"
)

// processor runs Phase 1 for one document: normalize headings, relocate
// assets, and publish the document's link registry entry. Link blocks are
// left untouched; their resolution is deferred to Phase 2.
type processor struct {
	links      *registry.LinkRegistry
	assetWidth int
	slugMax    int
}

// phase1 transforms doc in place. The document's output path must already be
// assigned. Any internal failure (including panics from malformed IR) is
// recorded as an error diagnostic and fails only this document.
func (p *processor) phase1(doc *ir.Document) {
	defer func() {
		if r := recover(); r != nil {
			doc.Diagnostics.Fail(fmt.Sprintf("internal processing panic: %v", r))
			doc.Status = ir.StatusFailed
		}
	}()

	if err := validateBlocks(doc.Blocks); err != nil {
		doc.Diagnostics.Fail(err.Error())
		doc.Status = ir.StatusFailed
		return
	}

	title := doc.Title
	if title == "" {
		title = titleFromPath(doc.SourcePath)
	}

	blocks, res := normalize.HeadingsN(doc.Blocks, title, p.slugMax)
	doc.Blocks = blocks
	doc.HeadingTree = res.Tree
	for _, w := range res.Warnings {
		doc.Diagnostics.Warn(w)
	}
	normalize.Whitespace(doc.Blocks)

	docSlug := strings.TrimSuffix(path.Base(doc.OutputPath), path.Ext(doc.OutputPath))
	pairs, warnings := assets.RelocateN(doc.Blocks, doc.RawAssets, docSlug, p.assetWidth)
	doc.Assets = pairs
	for _, w := range warnings {
		doc.Diagnostics.Warn(w)
	}

	p.links.Publish(doc.SourcePath, registry.Entry{
		OutputPath: doc.OutputPath,
		Slugs:      slugTable(doc.HeadingTree),
	})
	doc.Status = ir.StatusPhase1Done
}

// slugTable maps heading text to the final slug; on duplicate heading text
// the first occurrence wins, matching reader expectations for anchors.
func slugTable(tree []ir.HeadingRef) map[string]string {
	table := make(map[string]string, len(tree))
	for _, h := range tree {
		if _, ok := table[h.Text]; !ok {
			table[h.Text] = h.Slug
		}
	}
	return table
}

func validateBlocks(blocks []ir.Block) error {
	for i, b := range blocks {
		if b == nil {
			return derrors.ValidationError(
				fmt.Sprintf("malformed block sequence: nil block at index %d", i))
		}
	}
	return nil
}

// titleFromPath derives a human-readable title from the source file name.
func titleFromPath(sourcePath string) string {
	stem := strings.TrimSuffix(path.Base(sourcePath), path.Ext(sourcePath))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return "Untitled"
	}
	return stem
}
