// Package batch orchestrates the two-phase pipeline: parallel per-document
// normalization (Phase 1), a hard barrier, then parallel cross-document link
// resolution (Phase 2). The filename and link registries are the only shared
// mutable state; everything else is exclusively owned per document.
package batch

import (
	"context"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docnorm/internal/events"
	"git.home.luguber.info/inful/docnorm/internal/ir"
	"git.home.luguber.info/inful/docnorm/internal/logfields"
	"git.home.luguber.info/inful/docnorm/internal/metrics"
	"git.home.luguber.info/inful/docnorm/internal/quality"
	"git.home.luguber.info/inful/docnorm/internal/registry"
	"git.home.luguber.info/inful/docnorm/internal/report"
	"git.home.luguber.info/inful/docnorm/internal/slugify"
)

const (
	phase1Name = "phase1"
	phase2Name = "phase2"

	cancelledReason = "cancelled"
)

// Options tunes a Runner. Zero values select sensible defaults.
type Options struct {
	Workers            int
	AssetSequenceWidth int
	SlugMaxLength      int
	Metrics            metrics.Recorder
	Events             events.Publisher
}

// Runner executes batches. Safe for reuse across batches; each Run gets
// fresh registries.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner with defaults filled in.
func NewRunner(opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	if opts.Events == nil {
		opts.Events = events.NoopPublisher{}
	}
	if opts.SlugMaxLength <= 0 {
		opts.SlugMaxLength = slugify.DefaultMaxLength
	}
	return &Runner{opts: opts}
}

// Outcome is the result of one batch run.
type Outcome struct {
	BatchID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Documents  []*ir.Document
	Report     report.BatchReport
}

// Run processes the batch. Cancellation lets in-flight documents finish,
// starts no new ones, and still produces a partial report; per-document
// failures never abort siblings. Documents come back ordered by source path.
func (r *Runner) Run(ctx context.Context, inputs []ir.ExtractedDocument) *Outcome {
	start := time.Now()
	batchID := uuid.NewString()
	slog.Info("Starting batch",
		logfields.BatchID(batchID),
		slog.Int("documents", len(inputs)),
		slog.Int("workers", r.opts.Workers))
	r.opts.Metrics.SetWorkerConcurrency(r.opts.Workers)

	docs := r.admit(inputs)

	names := registry.NewFilenameRegistry()
	links := registry.NewLinkRegistry()

	// Output names are assigned in lexicographic source order, before the
	// parallel fan-out, so re-runs on the same input set reproduce the same
	// names. This is each document's single FilenameRegistry call.
	for _, doc := range docs {
		if doc.Status == ir.StatusFailed {
			continue
		}
		proposed := strings.TrimSuffix(path.Base(doc.SourcePath), path.Ext(doc.SourcePath))
		doc.OutputPath = names.Assign(proposed) + ".md"
	}

	proc := &processor{
		links:      links,
		assetWidth: r.opts.AssetSequenceWidth,
		slugMax:    r.opts.SlugMaxLength,
	}
	r.runPhase(ctx, phase1Name, docs, func(doc *ir.Document) {
		if doc.Status != ir.StatusPending {
			return
		}
		proc.phase1(doc)
	})

	// Barrier: every document has now completed or failed Phase 1, so the
	// link registry is complete and safe to snapshot for concurrent reads.
	res := newResolver(links.Snapshot())
	var unresolvedTotal atomic.Int64
	r.runPhase(ctx, phase2Name, docs, func(doc *ir.Document) {
		if doc.Status != ir.StatusPhase1Done {
			return
		}
		n := res.resolve(doc)
		if n > 0 {
			r.opts.Metrics.AddUnresolvedLinks(n)
			unresolvedTotal.Add(int64(n))
			for _, w := range doc.Diagnostics.Warnings {
				if strings.HasPrefix(w, WarnUnresolvedLink) {
					r.publishUnresolved(ctx, batchID, doc.SourcePath, w)
				}
			}
		}
	})

	r.finalize(ctx, batchID, docs)

	end := time.Now()
	out := &Outcome{
		BatchID:    batchID,
		StartedAt:  start,
		FinishedAt: end,
		Documents:  docs,
		Report:     report.Build(docs, start, end),
	}
	slog.Info("Batch finished",
		logfields.BatchID(batchID),
		slog.Int("total", out.Report.TotalFiles),
		slog.Int("successful", out.Report.Successful),
		slog.Int("failed", out.Report.Failed),
		slog.Int64("unresolved_links", unresolvedTotal.Load()),
		logfields.DurationMS(float64(end.Sub(start).Milliseconds())))
	return out
}

// admit validates extractor inputs, creates Documents, and orders them by
// source path. Duplicate or empty source paths fail their document without
// touching siblings.
func (r *Runner) admit(inputs []ir.ExtractedDocument) []*ir.Document {
	ordered := make([]ir.ExtractedDocument, len(inputs))
	copy(ordered, inputs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SourcePath < ordered[j].SourcePath
	})

	seen := make(map[string]bool, len(ordered))
	docs := make([]*ir.Document, 0, len(ordered))
	for _, in := range ordered {
		doc := ir.NewDocument(in)
		switch {
		case in.SourcePath == "":
			doc.Diagnostics.Fail("empty source path")
			doc.Status = ir.StatusFailed
		case seen[in.SourcePath]:
			doc.Diagnostics.Fail("duplicate source path: " + in.SourcePath)
			doc.Status = ir.StatusFailed
		default:
			seen[in.SourcePath] = true
		}
		docs = append(docs, doc)
	}
	return docs
}

// runPhase fans work out over the configured worker pool. Cancellation is
// checked between documents: in-flight work completes, un-started documents
// are marked failed with the cancellation reason.
func (r *Runner) runPhase(ctx context.Context, phase string, docs []*ir.Document, fn func(*ir.Document)) {
	phaseStart := time.Now()

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for _, doc := range docs {
		if ctx.Err() != nil {
			r.markCancelled(doc)
			continue
		}
		g.Go(func() error {
			docStart := time.Now()
			fn(doc)
			doc.DurationMS += float64(time.Since(docStart).Microseconds()) / 1000.0
			return nil
		})
	}
	_ = g.Wait()

	r.opts.Metrics.ObservePhaseDuration(phase, time.Since(phaseStart))
	slog.Debug("Phase complete",
		logfields.Phase(phase),
		logfields.DurationMS(float64(time.Since(phaseStart).Milliseconds())))
}

func (r *Runner) markCancelled(doc *ir.Document) {
	if doc.Status == ir.StatusFailed || doc.Status == ir.StatusResolved {
		return
	}
	doc.Diagnostics.Fail(cancelledReason)
	doc.Status = ir.StatusFailed
}

// finalize scores every document, records metrics, and publishes failure
// events. Documents still in a non-terminal state (cancelled between the
// phases) are failed here.
func (r *Runner) finalize(ctx context.Context, batchID string, docs []*ir.Document) {
	for _, doc := range docs {
		if doc.Status != ir.StatusResolved && doc.Status != ir.StatusFailed {
			r.markCancelled(doc)
		}

		switch doc.Status {
		case ir.StatusResolved:
			doc.QualityScore = quality.Score(doc.Diagnostics)
			r.opts.Metrics.ObserveQualityScore(doc.QualityScore)
			r.opts.Metrics.IncDocumentOutcome(metrics.OutcomeResolved)
		case ir.StatusFailed:
			doc.QualityScore = 0.0
			outcome := metrics.OutcomeFailed
			if isCancelled(doc) {
				outcome = metrics.OutcomeCancelled
			} else {
				r.publishFailed(ctx, batchID, doc)
			}
			r.opts.Metrics.IncDocumentOutcome(outcome)
		}
		r.opts.Metrics.AddWarnings(len(doc.Diagnostics.Warnings))
		r.opts.Metrics.ObserveDocumentDuration(time.Duration(doc.DurationMS * float64(time.Millisecond)))

		slog.Debug("Document finished",
			logfields.BatchID(batchID),
			logfields.Document(doc.SourcePath),
			logfields.Output(doc.OutputPath),
			logfields.Status(string(doc.Status)),
			logfields.Warnings(len(doc.Diagnostics.Warnings)),
			logfields.Errors(len(doc.Diagnostics.Errors)),
			logfields.Quality(doc.QualityScore))
	}
}

func isCancelled(doc *ir.Document) bool {
	for _, e := range doc.Diagnostics.Errors {
		if e == cancelledReason {
			return true
		}
	}
	return false
}

func (r *Runner) publishUnresolved(ctx context.Context, batchID, sourcePath, warning string) {
	err := r.opts.Events.PublishUnresolvedLink(ctx, &events.UnresolvedLinkEvent{
		BatchID:    batchID,
		SourcePath: sourcePath,
		TargetRef:  strings.TrimPrefix(warning, WarnUnresolvedLink+": "),
		Reason:     WarnUnresolvedLink,
	})
	if err != nil {
		slog.Warn("Failed to publish unresolved-link event",
			logfields.BatchID(batchID),
			logfields.Document(sourcePath),
			logfields.Error(err))
	}
}

func (r *Runner) publishFailed(ctx context.Context, batchID string, doc *ir.Document) {
	msg := ""
	if n := len(doc.Diagnostics.Errors); n > 0 {
		msg = doc.Diagnostics.Errors[n-1]
	}
	err := r.opts.Events.PublishDocumentFailed(ctx, &events.DocumentFailedEvent{
		BatchID:    batchID,
		SourcePath: doc.SourcePath,
		Error:      msg,
	})
	if err != nil {
		slog.Warn("Failed to publish document-failed event",
			logfields.BatchID(batchID),
			logfields.Document(doc.SourcePath),
			logfields.Error(err))
	}
}
