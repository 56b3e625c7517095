package ingest

import (
	"strings"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

// Render writes a normalized block sequence back out as markdown for the
// packaging collaborator. The emitter is deliberately plain: one block per
// stanza, blank-line separated, matching what the normalizer guarantees.
func Render(blocks []ir.Block) []byte {
	var b strings.Builder
	for _, blk := range blocks {
		switch node := blk.(type) {
		case *ir.Heading:
			b.WriteString(strings.Repeat("#", node.Level))
			b.WriteByte(' ')
			b.WriteString(node.Text)
		case *ir.Paragraph:
			b.WriteString(strings.Join(node.Runs, " "))
		case *ir.Image:
			ref := node.AssignedPath
			if ref == "" {
				ref = node.SourceRef
			}
			b.WriteString("![" + node.AltText + "](" + ref + ")")
		case *ir.Link:
			target := node.TargetRef
			if node.Anchor != "" {
				target += "#" + node.Anchor
			}
			text := node.DisplayText
			if text == "" {
				text = target
			}
			b.WriteString("[" + text + "](" + target + ")")
		case *ir.Table:
			b.WriteString(renderTable(node))
		}
		b.WriteString("\n\n")
	}
	out := strings.TrimRight(b.String(), "\n") + "\n"
	return []byte(out)
}

func renderTable(t *ir.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}
	var b strings.Builder
	for i, row := range t.Rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
