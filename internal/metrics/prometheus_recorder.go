package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	phaseDuration     *prom.HistogramVec
	documentDuration  prom.Histogram
	qualityScore      prom.Histogram
	documentOutcomes  *prom.CounterVec
	warnings          prom.Counter
	unresolvedLinks   prom.Counter
	workerConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.phaseDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docnorm",
			Name:      "phase_duration_seconds",
			Help:      "Duration of batch phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"})
		pr.documentDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docnorm",
			Name:      "document_duration_seconds",
			Help:      "Per-document processing duration across both phases",
			Buckets:   prom.DefBuckets,
		})
		pr.qualityScore = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docnorm",
			Name:      "quality_score",
			Help:      "Per-document quality scores",
			Buckets:   prom.LinearBuckets(0, 0.1, 11),
		})
		pr.documentOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docnorm",
			Name:      "document_outcomes_total",
			Help:      "Document outcomes by terminal status",
		}, []string{"outcome"})
		pr.warnings = prom.NewCounter(prom.CounterOpts{
			Namespace: "docnorm",
			Name:      "warnings_total",
			Help:      "Total repair and resolution warnings emitted",
		})
		pr.unresolvedLinks = prom.NewCounter(prom.CounterOpts{
			Namespace: "docnorm",
			Name:      "unresolved_links_total",
			Help:      "Internal links whose target was not in the batch",
		})
		pr.workerConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: "docnorm",
			Name:      "worker_concurrency",
			Help:      "Configured Phase 1 worker concurrency for the last batch",
		})
		reg.MustRegister(pr.phaseDuration, pr.documentDuration, pr.qualityScore,
			pr.documentOutcomes, pr.warnings, pr.unresolvedLinks, pr.workerConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveQualityScore(score float64) {
	p.qualityScore.Observe(score)
}

func (p *PrometheusRecorder) IncDocumentOutcome(outcome string) {
	p.documentOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddWarnings(n int) {
	if n > 0 {
		p.warnings.Add(float64(n))
	}
}

func (p *PrometheusRecorder) AddUnresolvedLinks(n int) {
	if n > 0 {
		p.unresolvedLinks.Add(float64(n))
	}
}

func (p *PrometheusRecorder) SetWorkerConcurrency(n int) {
	p.workerConcurrency.Set(float64(n))
}
