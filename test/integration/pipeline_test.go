package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnorm/internal/batch"
	"git.home.luguber.info/inful/docnorm/internal/ingest"
	"git.home.luguber.info/inful/docnorm/internal/ir"
)

// TestPipeline_MarkdownRoundTrip drives the full pipeline from markdown
// sources on disk through ingestion, both batch phases, and rendering.
// This test verifies:
// - slugged output names derived from source file names
// - cross-document links rewritten to final outputs with slugged anchors
// - the rendered output parses back as well-formed markdown
// - the machine report reflects the batch totals.
func TestPipeline_MarkdownRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	writeSource(t, dir, "User Guide.md", strings.Join([]string{
		"# User Guide",
		"",
		"See the [install steps](Setup%20Notes.md#install-steps).",
		"",
		"## Usage",
		"",
		"Run the tool.",
	}, "\n"))
	writeSource(t, dir, "Setup Notes.md", strings.Join([]string{
		"# Setup Notes",
		"",
		"## Install Steps",
		"",
		"Download and unpack.",
	}, "\n"))

	inputs := ingestDir(t, dir)
	outcome := batch.NewRunner(batch.Options{Workers: 2}).Run(context.Background(), inputs)

	require.Equal(t, 2, outcome.Report.TotalFiles)
	require.Equal(t, 2, outcome.Report.Successful)
	require.Equal(t, 0, outcome.Report.Failed)

	guide := docBySource(t, outcome.Documents, "User Guide.md")
	notes := docBySource(t, outcome.Documents, "Setup Notes.md")
	require.Equal(t, "user-guide.md", guide.OutputPath)
	require.Equal(t, "setup-notes.md", notes.OutputPath)

	rendered := string(ingest.Render(guide.Blocks))
	require.Contains(t, rendered, "(setup-notes.md#install-steps)")

	// Rendered output must itself be ingestible.
	reparsed, err := ingest.Markdown("user-guide.md", ingest.Render(guide.Blocks))
	require.NoError(t, err)
	require.NotEmpty(t, reparsed.Blocks)
}

// TestPipeline_ReportContract pins the serialized report shape consumed by
// downstream collectors.
func TestPipeline_ReportContract(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	writeSource(t, dir, "a.md", "# A\n\n[dead](missing.md)\n")

	inputs := ingestDir(t, dir)
	outcome := batch.NewRunner(batch.Options{}).Run(context.Background(), inputs)

	data, err := outcome.Report.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"total_files", "successful", "failed", "average_quality_score", "files",
	} {
		require.Contains(t, decoded, key)
	}

	files, ok := decoded["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 1)
	entry, ok := files[0].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{
		"source_file", "output_file", "success", "warnings", "errors",
		"quality_score", "converter_used", "conversion_time_ms",
	} {
		require.Contains(t, entry, key)
	}
	require.Equal(t, "markdown", entry["converter_used"])
	require.InDelta(t, 0.95, entry["quality_score"].(float64), 1e-9)
}

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func ingestDir(t *testing.T, dir string) []ir.ExtractedDocument {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var docs []ir.ExtractedDocument
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		doc, err := ingest.File(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		doc.SourcePath = e.Name()
		docs = append(docs, doc)
	}
	return docs
}

func docBySource(t *testing.T, docs []*ir.Document, sourcePath string) *ir.Document {
	t.Helper()
	for _, d := range docs {
		if d.SourcePath == sourcePath {
			return d
		}
	}
	t.Fatalf("document %s not found", sourcePath)
	return nil
}
