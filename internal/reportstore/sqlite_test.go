package reportstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnorm/internal/report"
)

func testRecord(batchID string, startedAt time.Time) RunRecord {
	return RunRecord{
		BatchID:   batchID,
		StartedAt: startedAt,
		Report: report.BatchReport{
			StartTime:           startedAt.Format(time.RFC3339),
			TotalFiles:          2,
			Successful:          1,
			Failed:              1,
			AverageQualityScore: 0.5,
			Files: []report.FileReport{
				{SourceFile: "a.docx", OutputFile: "a.md", Success: true, QualityScore: 1.0},
				{SourceFile: "b.docx", Success: false},
			},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := testRecord("batch-1", time.Unix(1000, 0).UTC())
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "batch-1")
	require.NoError(t, err)
	require.Equal(t, "batch-1", got.BatchID)
	require.Equal(t, rec.StartedAt, got.StartedAt)
	require.Equal(t, 2, got.Report.TotalFiles)
	require.Len(t, got.Report.Files, 2)
	require.Equal(t, "a.docx", got.Report.Files[0].SourceFile)
}

func TestGetNotFound(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestRecentNewestFirst(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("batch-%d", i), time.Unix(int64(1000+i), 0).UTC())
		require.NoError(t, store.Save(ctx, rec))
	}

	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, "batch-4", recent[0].BatchID)
	require.Equal(t, "batch-3", recent[1].BatchID)
	require.Equal(t, "batch-2", recent[2].BatchID)
}

func TestSaveDuplicateBatchIDFails(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := testRecord("batch-1", time.Unix(1000, 0).UTC())
	require.NoError(t, store.Save(ctx, rec))
	require.Error(t, store.Save(ctx, rec))
}
