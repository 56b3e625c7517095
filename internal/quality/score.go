// Package quality computes per-document conversion fidelity scores from
// accumulated diagnostics.
package quality

import "git.home.luguber.info/inful/docnorm/internal/ir"

// Scoring policy constants.
const (
	WarningPenalty = 0.05
	ErrorPenalty   = 0.2

	// Scanned documents have known, bounded quality; the fixed scores take
	// precedence over accumulated warning/error penalties.
	ScannedNoOCRScore   = 0.3
	ScannedWithOCRScore = 0.6
)

// Score maps diagnostics to a score in [0, 1].
func Score(d ir.Diagnostics) float64 {
	switch d.Special {
	case ir.SpecialScannedNoOCR:
		return ScannedNoOCRScore
	case ir.SpecialScannedWithOCR:
		return ScannedWithOCRScore
	}
	s := 1.0 - WarningPenalty*float64(len(d.Warnings)) - ErrorPenalty*float64(len(d.Errors))
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
