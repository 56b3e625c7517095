package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

const sample = `---
title: Sample Doc
---
# Sample

Intro paragraph with a [guide](other.docx#install-steps) link.

![diagram](media/diagram.png)

## Data

| Name | Value |
| ---- | ----- |
| a    | 1     |
`

func TestMarkdownBasicStructure(t *testing.T) {
	doc, err := Markdown("sample.md", []byte(sample))
	require.NoError(t, err)
	require.Equal(t, "sample.md", doc.SourcePath)
	require.Equal(t, "Sample Doc", doc.Title)
	require.Empty(t, doc.Warnings)

	var headings []*ir.Heading
	var links []*ir.Link
	var images []*ir.Image
	var tables []*ir.Table
	for _, b := range doc.Blocks {
		switch node := b.(type) {
		case *ir.Heading:
			headings = append(headings, node)
		case *ir.Link:
			links = append(links, node)
		case *ir.Image:
			images = append(images, node)
		case *ir.Table:
			tables = append(tables, node)
		}
	}

	require.Len(t, headings, 2)
	require.Equal(t, 1, headings[0].Level)
	require.Equal(t, "Sample", headings[0].Text)
	require.Equal(t, "Data", headings[1].Text)

	require.Len(t, links, 1)
	require.Equal(t, "other.docx", links[0].TargetRef)
	require.Equal(t, "install-steps", links[0].Anchor)
	require.Equal(t, "guide", links[0].DisplayText)

	require.Len(t, images, 1)
	require.Equal(t, "media/diagram.png", images[0].SourceRef)
	require.Equal(t, "diagram", images[0].AltText)

	require.Len(t, tables, 1)
	require.Equal(t, [][]string{{"Name", "Value"}, {"a", "1"}}, tables[0].Rows)
}

func TestMarkdownNoFrontMatter(t *testing.T) {
	doc, err := Markdown("plain.md", []byte("# Title\n\nBody.\n"))
	require.NoError(t, err)
	require.Empty(t, doc.Title)
	require.NotEmpty(t, doc.Blocks)
}

func TestMarkdownUnterminatedFrontMatter(t *testing.T) {
	doc, err := Markdown("broken.md", []byte("---\ntitle: oops\nno closing"))
	require.NoError(t, err)
	require.Len(t, doc.Warnings, 1)
}

func TestRenderRoundTrip(t *testing.T) {
	blocks := []ir.Block{
		&ir.Heading{Level: 1, Text: "Title"},
		&ir.Paragraph{Runs: []string{"Hello", "world."}},
		&ir.Link{TargetRef: "b.md", Anchor: "install-steps", DisplayText: "guide"},
		&ir.Image{SourceRef: "x.png", AltText: "pic", AssignedPath: "assets/doc/001.png"},
	}
	out := string(Render(blocks))
	require.Contains(t, out, "# Title\n")
	require.Contains(t, out, "Hello world.")
	require.Contains(t, out, "[guide](b.md#install-steps)")
	require.Contains(t, out, "![pic](assets/doc/001.png)")

	// Rendered output parses back into the same shapes.
	doc, err := Markdown("round.md", Render(blocks))
	require.NoError(t, err)
	kinds := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		switch b.(type) {
		case *ir.Heading:
			kinds = append(kinds, "heading")
		case *ir.Paragraph:
			kinds = append(kinds, "paragraph")
		case *ir.Link:
			kinds = append(kinds, "link")
		case *ir.Image:
			kinds = append(kinds, "image")
		}
	}
	require.Equal(t, []string{"heading", "paragraph", "link", "image"}, kinds)
}
