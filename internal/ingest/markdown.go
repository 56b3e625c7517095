// Package ingest converts markdown source files into the batch IR so the CLI
// can drive the core without the binary-format extractors. Binary formats
// (DOCX/PDF/XLSX) stay with their external extractors.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

// File reads and parses one markdown file into extractor output.
func File(path string) (ir.ExtractedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.ExtractedDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Markdown(path, data)
}

// Markdown parses a markdown document into the IR block sequence. YAML front
// matter is stripped (its title, if any, carries over); reference-style
// links are resolved by the parser.
func Markdown(sourcePath string, data []byte) (ir.ExtractedDocument, error) {
	body, title, fmWarn := stripFrontMatter(data)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(body))

	var blocks []ir.Block
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			blocks = append(blocks, &ir.Heading{
				Level: node.Level,
				Text:  nodeText(node, body),
			})
			return gmast.WalkSkipChildren, nil
		case *gmast.Paragraph:
			blocks = append(blocks, paragraphBlocks(node, body)...)
			return gmast.WalkSkipChildren, nil
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			if runs := literalLines(n, body); len(runs) > 0 {
				blocks = append(blocks, &ir.Paragraph{Runs: runs})
			}
			return gmast.WalkSkipChildren, nil
		case *extast.Table:
			blocks = append(blocks, tableBlock(node, body))
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return ir.ExtractedDocument{}, fmt.Errorf("walk %s: %w", sourcePath, err)
	}

	out := ir.ExtractedDocument{
		SourcePath: sourcePath,
		Title:      title,
		Blocks:     blocks,
	}
	if fmWarn != "" {
		out.Warnings = append(out.Warnings, fmWarn)
	}
	return out, nil
}

// paragraphBlocks splits one paragraph node into a text block plus separate
// Link/Image blocks, preserving inline order.
func paragraphBlocks(p *gmast.Paragraph, source []byte) []ir.Block {
	var (
		out  []ir.Block
		runs []string
	)
	flush := func() {
		if len(runs) > 0 {
			out = append(out, &ir.Paragraph{Runs: runs})
			runs = nil
		}
	}
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Link:
			flush()
			target, anchor := splitAnchor(string(node.Destination))
			out = append(out, &ir.Link{
				TargetRef:   target,
				Anchor:      anchor,
				DisplayText: nodeText(node, source),
			})
		case *gmast.AutoLink:
			flush()
			out = append(out, &ir.Link{
				TargetRef:   string(node.URL(source)),
				DisplayText: string(node.Label(source)),
			})
		case *gmast.Image:
			flush()
			out = append(out, &ir.Image{
				SourceRef: string(node.Destination),
				AltText:   nodeText(node, source),
			})
		default:
			if t := nodeText(c, source); t != "" {
				runs = append(runs, t)
			}
		}
	}
	flush()
	return out
}

func tableBlock(t *extast.Table, source []byte) *ir.Table {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		switch row := r.(type) {
		case *extast.TableHeader:
			rows = append(rows, cellTexts(row, source))
		case *extast.TableRow:
			rows = append(rows, cellTexts(row, source))
		}
	}
	return &ir.Table{Rows: rows}
}

func cellTexts(row gmast.Node, source []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, nodeText(c, source))
	}
	return cells
}

// nodeText collects the raw text content under an inline or block node.
func nodeText(n gmast.Node, source []byte) string {
	var b strings.Builder
	var walk func(gmast.Node)
	walk = func(n gmast.Node) {
		switch node := n.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		default:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func literalLines(n gmast.Node, source []byte) []string {
	lines := n.Lines()
	var runs []string
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(source)), "\n")
		runs = append(runs, line)
	}
	return runs
}

func splitAnchor(ref string) (target, anchor string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// stripFrontMatter removes a leading `---` delimited YAML block, returning
// the title field when one is declared. A warning is returned when the
// opening delimiter has no closing pair.
func stripFrontMatter(data []byte) (body []byte, title, warning string) {
	open := []byte("---\n")
	if !bytes.HasPrefix(data, open) {
		return data, "", ""
	}
	rest := data[len(open):]

	var raw []byte
	switch i := bytes.Index(rest, []byte("\n---\n")); {
	case bytes.HasPrefix(rest, []byte("---\n")):
		return rest[len("---\n"):], "", ""
	case i >= 0:
		raw = rest[:i+1]
		body = rest[i+len("\n---\n"):]
	default:
		return data, "", "front matter delimiter is unterminated"
	}

	var fields struct {
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return body, "", fmt.Sprintf("front matter is not valid YAML: %v", err)
	}
	return body, fields.Title, ""
}
