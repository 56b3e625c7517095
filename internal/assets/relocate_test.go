package assets

import (
	"strings"
	"testing"

	"git.home.luguber.info/inful/docnorm/internal/ir"
)

func TestRelocateSequencesInAppearanceOrder(t *testing.T) {
	first := &ir.Image{SourceRef: "media/chart.JPEG"}
	second := &ir.Image{SourceRef: "media/logo.png"}
	third := &ir.Image{SourceRef: "noext"}
	blocks := []ir.Block{
		first,
		&ir.Paragraph{Runs: []string{"text between images"}},
		second,
		third,
	}
	raw := map[string][]byte{
		"media/chart.JPEG": []byte("AAA"),
		"media/logo.png":   []byte("BBB"),
		"noext":            []byte("CCC"),
	}

	pairs, warnings := Relocate(blocks, raw, "user-guide")

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if first.AssignedPath != "assets/user-guide/001.jpeg" {
		t.Errorf("first = %q", first.AssignedPath)
	}
	if second.AssignedPath != "assets/user-guide/002.png" {
		t.Errorf("second = %q", second.AssignedPath)
	}
	if third.AssignedPath != "assets/user-guide/003.png" {
		t.Errorf("ref without extension should default to .png, got %q", third.AssignedPath)
	}
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	if pairs[0].Path != first.AssignedPath || string(pairs[0].Data) != "AAA" {
		t.Errorf("pair 0 = %+v", pairs[0])
	}
}

func TestRelocateMissingPayloadWarns(t *testing.T) {
	img := &ir.Image{SourceRef: "gone.png"}
	pairs, warnings := Relocate([]ir.Block{img}, nil, "doc")

	if img.AssignedPath == "" {
		t.Error("missing payload must still assign a path")
	}
	if len(pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(pairs))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "gone.png") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestRelocateDuplicatePayloadsStoredTwice(t *testing.T) {
	a := &ir.Image{SourceRef: "a.png"}
	b := &ir.Image{SourceRef: "b.png"}
	raw := map[string][]byte{
		"a.png": []byte("SAME"),
		"b.png": []byte("SAME"),
	}

	pairs, _ := Relocate([]ir.Block{a, b}, raw, "doc")

	if len(pairs) != 2 {
		t.Fatalf("identical images must be stored independently, got %d pairs", len(pairs))
	}
	if pairs[0].Path == pairs[1].Path {
		t.Errorf("paths must differ: %q", pairs[0].Path)
	}
}
