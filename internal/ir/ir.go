// Package ir defines the intermediate representation shared between the
// format-specific extractors and the normalization core. Extractors emit a
// flat, ordered sequence of blocks per document; the core rewrites blocks in
// place and never re-parses source bytes.
package ir

// Block is the closed set of document content variants. Each variant is a
// pointer type so phases can rewrite fields in place while the owning
// Document retains ordering. The unexported marker method keeps the set
// closed: a type switch over all five variants is exhaustive.
type Block interface {
	isBlock()
}

// Heading is a section heading. ID is empty until the heading normalizer
// assigns the final slug.
type Heading struct {
	Level int // 1..6
	Text  string
	ID    string
}

// Paragraph is a run of inline text. Runs preserve the extractor's inline
// segmentation; the core only trims them.
type Paragraph struct {
	Runs []string
}

// Image references an embedded image by the extractor-assigned ref.
// AssignedPath is empty until the asset relocator places it.
type Image struct {
	SourceRef    string
	AltText      string
	AssignedPath string
}

// Link is an internal or external reference. Anchor (if any) is the fragment
// without the leading '#'. Resolved is set when Phase 2 rewrote the target.
type Link struct {
	TargetRef   string
	DisplayText string
	Anchor      string
	Resolved    bool
}

// Table holds extracted cell text by row.
type Table struct {
	Rows [][]string
}

func (*Heading) isBlock()   {}
func (*Paragraph) isBlock() {}
func (*Image) isBlock()     {}
func (*Link) isBlock()      {}
func (*Table) isBlock()     {}
