package ir

// Status tracks a document through the two batch phases.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPhase1Done Status = "phase1_done"
	StatusResolved   Status = "resolved"
	StatusFailed     Status = "failed"
)

// SpecialCase flags known bounded-quality extraction outcomes.
type SpecialCase string

const (
	SpecialNone           SpecialCase = ""
	SpecialScannedNoOCR   SpecialCase = "scanned_no_ocr"
	SpecialScannedWithOCR SpecialCase = "scanned_with_ocr"
)

// Diagnostics accumulates user-visible conversion feedback. Warnings and
// errors keep insertion order; both roll up into the quality score.
type Diagnostics struct {
	Warnings []string
	Errors   []string
	Special  SpecialCase
}

// Warn appends a warning message.
func (d *Diagnostics) Warn(msg string) {
	d.Warnings = append(d.Warnings, msg)
}

// Fail appends an error message.
func (d *Diagnostics) Fail(msg string) {
	d.Errors = append(d.Errors, msg)
}

// HeadingRef is one entry of a document's normalized heading tree.
type HeadingRef struct {
	Level int
	Slug  string
	Text  string
}

// Asset is an extracted image placed under the document's asset directory,
// handed to the packaging collaborator for persistence. The core itself
// performs no disk I/O.
type Asset struct {
	Path string
	Data []byte
}

// ExtractedDocument is the contract consumed from the extraction
// collaborator: one document's block sequence plus raw asset payloads and
// preliminary diagnostics.
type ExtractedDocument struct {
	SourcePath  string
	Title       string // extractor-provided title, if any; file stem otherwise
	Blocks      []Block
	RawAssets   map[string][]byte
	SpecialCase SpecialCase
	Warnings    []string
	Errors      []string
}

// Document is the batch-internal unit of work. It is exclusively owned by
// one worker during Phase 1, rewritten by the link resolver during Phase 2,
// and immutable once Resolved.
type Document struct {
	SourcePath   string
	Title        string
	Blocks       []Block
	RawAssets    map[string][]byte
	OutputPath   string
	HeadingTree  []HeadingRef
	Assets       []Asset
	Diagnostics  Diagnostics
	QualityScore float64
	Status       Status
	DurationMS   float64
}

// NewDocument creates a pending Document from extractor output, carrying the
// preliminary diagnostics forward.
func NewDocument(in ExtractedDocument) *Document {
	d := &Document{
		SourcePath: in.SourcePath,
		Title:      in.Title,
		Blocks:     in.Blocks,
		RawAssets:  in.RawAssets,
		Status:     StatusPending,
	}
	d.Diagnostics.Special = in.SpecialCase
	d.Diagnostics.Warnings = append(d.Diagnostics.Warnings, in.Warnings...)
	d.Diagnostics.Errors = append(d.Diagnostics.Errors, in.Errors...)
	return d
}
