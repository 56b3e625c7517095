package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docnorm/internal/batch"
	"git.home.luguber.info/inful/docnorm/internal/config"
	"git.home.luguber.info/inful/docnorm/internal/events"
	"git.home.luguber.info/inful/docnorm/internal/ingest"
	"git.home.luguber.info/inful/docnorm/internal/ir"
	"git.home.luguber.info/inful/docnorm/internal/metrics"
	"git.home.luguber.info/inful/docnorm/internal/report"
	"git.home.luguber.info/inful/docnorm/internal/reportstore"
	"git.home.luguber.info/inful/docnorm/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docnorm.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run struct {
		Input  string `arg:"" help:"Directory containing source documents"`
		Output string `short:"o" help:"Output directory" default:"./out"`
	} `cmd:"" help:"Normalize a batch of documents once and exit"`

	Watch struct {
		Input         string `arg:"" help:"Directory containing source documents"`
		Output        string `short:"o" help:"Output directory" default:"./out"`
		MetricsListen string `help:"Address to serve Prometheus metrics on (empty disables)"`
	} `cmd:"" help:"Watch the source directory and re-normalize on changes"`

	History struct {
		Limit   int    `short:"n" help:"Number of recent runs to show" default:"10"`
		BatchID string `help:"Show one run by batch ID"`
	} `cmd:"" help:"Show past batch runs from the run-history store"`
}

func main() {
	// Local development convenience; a missing .env file is fine.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docnorm: %v\n", err)
		os.Exit(1)
	}
	if CLI.Verbose {
		cfg.Logging.Level = "debug"
	}
	setupLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch kctx.Command() {
	case "run <input>":
		err = runOnce(ctx, cfg, CLI.Run.Input, CLI.Run.Output)
	case "watch <input>":
		err = runWatch(ctx, cfg, CLI.Watch.Input, CLI.Watch.Output, CLI.Watch.MetricsListen)
	case "history":
		err = runHistory(ctx, cfg)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: config.NormalizeLogLevel(cfg.Logging.Level).SlogLevel()}
	var handler slog.Handler
	if config.NormalizeLogFormat(cfg.Logging.Format) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runOnce(ctx context.Context, cfg *config.Config, input, output string) error {
	runner, publisher, store, err := buildRunner(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer closeQuietly(publisher, store)

	return executeBatch(ctx, cfg, runner, store, input, output)
}

func runWatch(ctx context.Context, cfg *config.Config, input, output, metricsListen string) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if metricsListen != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		go serveMetrics(ctx, metricsListen, reg)
	}

	runner, publisher, store, err := buildRunner(cfg, recorder)
	if err != nil {
		return err
	}
	defer closeQuietly(publisher, store)

	w, err := watch.New(input, watch.Options{})
	if err != nil {
		return err
	}

	// Initial run so the output is populated before the first change.
	if err := executeBatch(ctx, cfg, runner, store, input, output); err != nil {
		slog.Error("Initial batch run failed", "error", err)
	}

	return w.Run(ctx, func(runCtx context.Context) error {
		return executeBatch(runCtx, cfg, runner, store, input, output)
	})
}

func runHistory(ctx context.Context, cfg *config.Config) error {
	store, err := reportstore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if CLI.History.BatchID != "" {
		rec, err := store.Get(ctx, CLI.History.BatchID)
		if err != nil {
			return err
		}
		fmt.Print(report.RenderText(rec.Report))
		return nil
	}

	recs, err := store.Recent(ctx, CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, rec := range recs {
		fmt.Printf("%s  %s  files=%d ok=%d failed=%d avg=%.2f\n",
			rec.StartedAt.Format(time.RFC3339),
			rec.BatchID,
			rec.Report.TotalFiles,
			rec.Report.Successful,
			rec.Report.Failed,
			rec.Report.AverageQualityScore)
	}
	return nil
}

// buildRunner wires the batch runner with the configured publisher and
// run-history store. Either may be nil when disabled.
func buildRunner(cfg *config.Config, recorder metrics.Recorder) (*batch.Runner, events.Publisher, reportstore.Store, error) {
	var publisher events.Publisher
	if cfg.Events.Enabled {
		p, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return nil, nil, nil, err
		}
		publisher = p
	}

	var store reportstore.Store
	if cfg.Store.Enabled {
		s, err := reportstore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			closeQuietly(publisher, nil)
			return nil, nil, nil, err
		}
		store = s
	}

	runner := batch.NewRunner(batch.Options{
		Workers:            cfg.Batch.Workers,
		AssetSequenceWidth: cfg.Batch.AssetSequenceWidth,
		SlugMaxLength:      cfg.Batch.SlugMaxLength,
		Metrics:            recorder,
		Events:             publisher,
	})
	return runner, publisher, store, nil
}

func closeQuietly(publisher events.Publisher, store reportstore.Store) {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			slog.Warn("Closing event publisher", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			slog.Warn("Closing run-history store", "error", err)
		}
	}
}

// executeBatch ingests every source file under input, runs the batch, and
// writes outputs, assets, and the batch report under output.
func executeBatch(ctx context.Context, cfg *config.Config, runner *batch.Runner, store reportstore.Store, input, output string) error {
	inputs, err := collectInputs(input)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		slog.Warn("No source documents found", "dir", input)
	}

	outcome := runner.Run(ctx, inputs)

	if err := writeOutputs(outcome.Documents, output); err != nil {
		return err
	}
	if err := writeReport(outcome.Report, output); err != nil {
		return err
	}
	if store != nil {
		rec := reportstore.RunRecord{
			BatchID:   outcome.BatchID,
			StartedAt: outcome.StartedAt,
			Report:    outcome.Report,
		}
		if err := store.Save(ctx, rec); err != nil {
			slog.Warn("Saving run history", "error", err)
		}
	}

	fmt.Print(report.RenderText(outcome.Report))
	return nil
}

// collectInputs walks the input directory and parses every markdown source,
// ordered by path. Files that fail to read become failed documents rather
// than aborting the batch.
func collectInputs(dir string) ([]ir.ExtractedDocument, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(paths)

	docs := make([]ir.ExtractedDocument, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		doc, err := ingest.File(p)
		if err != nil {
			docs = append(docs, ir.ExtractedDocument{
				SourcePath: filepath.ToSlash(rel),
				Errors:     []string{err.Error()},
			})
			continue
		}
		doc.SourcePath = filepath.ToSlash(rel)
		docs = append(docs, doc)
	}
	return docs, nil
}

func writeOutputs(docs []*ir.Document, output string) error {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	for _, doc := range docs {
		if doc.Status != ir.StatusResolved {
			continue
		}
		path := filepath.Join(output, filepath.FromSlash(doc.OutputPath))
		if err := os.WriteFile(path, ingest.Render(doc.Blocks), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", doc.OutputPath, err)
		}
		for _, asset := range doc.Assets {
			target := filepath.Join(output, filepath.FromSlash(asset.Path))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating asset dir for %s: %w", asset.Path, err)
			}
			if err := os.WriteFile(target, asset.Data, 0o644); err != nil {
				return fmt.Errorf("writing asset %s: %w", asset.Path, err)
			}
		}
	}
	return nil
}

func writeReport(r report.BatchReport, output string) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(output, "report.json"), data, 0o644)
}

func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Metrics server failed", "error", err)
	}
}
