package quality

import (
	"math"
	"strings"
	"testing"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

func diagnostics(warnings, errors int, special ir.SpecialCase) ir.Diagnostics {
	d := ir.Diagnostics{Special: special}
	for i := 0; i < warnings; i++ {
		d.Warn("w")
	}
	for i := 0; i < errors; i++ {
		d.Fail("e")
	}
	return d
}

func TestScoreArithmetic(t *testing.T) {
	cases := []struct {
		warnings, errors int
		want             float64
	}{
		{0, 0, 1.0},
		{1, 0, 0.95},
		{3, 0, 0.85},
		{0, 1, 0.8},
		{2, 2, 0.5},
		{30, 0, 0.0},  // clamped
		{0, 10, 0.0},  // clamped
	}
	for _, tc := range cases {
		got := Score(diagnostics(tc.warnings, tc.errors, ir.SpecialNone))
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Score(%dw,%de) = %v, want %v", tc.warnings, tc.errors, got, tc.want)
		}
	}
}

func TestScoreAlwaysInUnitInterval(t *testing.T) {
	for w := 0; w < 40; w += 7 {
		for e := 0; e < 20; e += 3 {
			got := Score(diagnostics(w, e, ir.SpecialNone))
			if got < 0 || got > 1 {
				t.Fatalf("Score(%dw,%de) = %v out of [0,1]", w, e, got)
			}
		}
	}
}

func TestScoreScannedOverrides(t *testing.T) {
	// Overrides win regardless of how many defects accumulated.
	if got := Score(diagnostics(25, 5, ir.SpecialScannedNoOCR)); got != ScannedNoOCRScore {
		t.Errorf("no-OCR score = %v, want %v", got, ScannedNoOCRScore)
	}
	if got := Score(diagnostics(0, 0, ir.SpecialScannedWithOCR)); got != ScannedWithOCRScore {
		t.Errorf("OCR score = %v, want %v", got, ScannedWithOCRScore)
	}
}

func TestScorePenaltyPerUnresolvedLink(t *testing.T) {
	base := Score(diagnostics(0, 0, ir.SpecialNone))
	d := diagnostics(0, 0, ir.SpecialNone)
	d.Warn("unresolved internal link: missing.docx")
	got := Score(d)
	if math.Abs(base-got-WarningPenalty) > 1e-9 {
		t.Errorf("one warning should cost %v, cost %v", WarningPenalty, base-got)
	}
	if !strings.Contains(d.Warnings[0], "missing.docx") {
		t.Errorf("warning text lost: %v", d.Warnings)
	}
}
