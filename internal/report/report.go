// Package report aggregates per-document results into the batch report
// consumed by the external reporting UI. The JSON field names and nesting
// are a bit-exact downstream contract; change them and the UI breaks.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

// FileReport summarizes one document's conversion.
type FileReport struct {
	SourceFile       string   `json:"source_file"`
	OutputFile       string   `json:"output_file"`
	Success          bool     `json:"success"`
	Warnings         []string `json:"warnings"`
	Errors           []string `json:"errors"`
	QualityScore     float64  `json:"quality_score"`
	ConverterUsed    string   `json:"converter_used"`
	ConversionTimeMS float64  `json:"conversion_time_ms"`
}

// BatchReport is the batch-level summary.
type BatchReport struct {
	StartTime           string       `json:"start_time"`
	EndTime             string       `json:"end_time"`
	TotalFiles          int          `json:"total_files"`
	Successful          int          `json:"successful"`
	Failed              int          `json:"failed"`
	Files               []FileReport `json:"files"`
	AverageQualityScore float64      `json:"average_quality_score"`
}

// Build assembles the report once every document has reached a terminal
// status. Files are ordered by source path for reproducibility; failed
// documents contribute 0.0 to the average.
func Build(docs []*ir.Document, start, end time.Time) BatchReport {
	r := BatchReport{
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
		Files:     make([]FileReport, 0, len(docs)),
	}

	ordered := make([]*ir.Document, len(docs))
	copy(ordered, docs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SourcePath < ordered[j].SourcePath
	})

	var sum float64
	for _, d := range ordered {
		success := d.Status == ir.StatusResolved
		score := d.QualityScore
		if !success {
			score = 0.0
		}
		sum += score

		r.Files = append(r.Files, FileReport{
			SourceFile:       d.SourcePath,
			OutputFile:       d.OutputPath,
			Success:          success,
			Warnings:         append(make([]string, 0, len(d.Diagnostics.Warnings)), d.Diagnostics.Warnings...),
			Errors:           append(make([]string, 0, len(d.Diagnostics.Errors)), d.Diagnostics.Errors...),
			QualityScore:     score,
			ConverterUsed:    converterFor(d.SourcePath),
			ConversionTimeMS: d.DurationMS,
		})
		r.TotalFiles++
		if success {
			r.Successful++
		} else {
			r.Failed++
		}
	}
	if r.TotalFiles > 0 {
		r.AverageQualityScore = sum / float64(r.TotalFiles)
	}
	return r
}

// JSON serializes the report for the reporting collaborator.
func (r BatchReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// converterFor names the upstream extractor by source extension. Purely
// informational; unknown extensions report the generic pipeline name.
func converterFor(sourcePath string) string {
	dot := strings.LastIndexByte(sourcePath, '.')
	if dot < 0 {
		return "generic"
	}
	switch strings.ToLower(sourcePath[dot:]) {
	case ".docx", ".doc":
		return "docx"
	case ".pdf":
		return "pdf"
	case ".xlsx", ".xls":
		return "xlsx"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "generic"
	}
}

// RenderText renders the human-readable summary printed after a run.
func RenderText(r BatchReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	fmt.Fprintf(&b, "%s\nCONVERSION REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Started:  %s\n", r.StartTime)
	fmt.Fprintf(&b, "Finished: %s\n\n", r.EndTime)
	fmt.Fprintf(&b, "Total files:     %d\n", r.TotalFiles)
	fmt.Fprintf(&b, "Successful:      %d\n", r.Successful)
	fmt.Fprintf(&b, "Failed:          %d\n", r.Failed)
	fmt.Fprintf(&b, "Average quality: %.2f\n\n", r.AverageQualityScore)
	fmt.Fprintf(&b, "%s\nFILE DETAILS\n%s\n", rule, rule)

	for _, f := range r.Files {
		status := "FAILED "
		if f.Success {
			status = "SUCCESS"
		}
		fmt.Fprintf(&b, "\n%s - %s\n", status, f.SourceFile)
		out := f.OutputFile
		if out == "" {
			out = "N/A"
		}
		fmt.Fprintf(&b, "  Output: %s\n", out)
		fmt.Fprintf(&b, "  Quality: %.2f\n", f.QualityScore)
		fmt.Fprintf(&b, "  Converter: %s\n", f.ConverterUsed)
		fmt.Fprintf(&b, "  Time: %.0fms\n", f.ConversionTimeMS)
		if len(f.Warnings) > 0 {
			fmt.Fprintf(&b, "  Warnings (%d):\n", len(f.Warnings))
			for _, w := range f.Warnings {
				fmt.Fprintf(&b, "    - %s\n", w)
			}
		}
		if len(f.Errors) > 0 {
			fmt.Fprintf(&b, "  Errors (%d):\n", len(f.Errors))
			for _, e := range f.Errors {
				fmt.Fprintf(&b, "    - %s\n", e)
			}
		}
	}
	b.WriteString("\n" + rule + "\n")
	return b.String()
}
