// Package metrics defines the Prometheus instrumentation shared by the
// Collector and Rule Loader. Each process constructs exactly one metric set
// (a *Collector or a *RuleLoader) in main and threads it into every
// component by constructor
// injection — never a package-level singleton (spec §9's "owned object,
// not a global" principle applies here as much as it does to the dedup
// cache).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the metric families emitted by the Collector process.
type Collector struct {
	RequestsTotal          *prometheus.CounterVec
	RequestDuration        prometheus.Histogram
	SanitizationOperations *prometheus.CounterVec
	DeduplicationOps       *prometheus.CounterVec
	QueueDepth             prometheus.Gauge
	LeakDetected           prometheus.Counter
}

// NewCollector registers and returns the Collector metric set. reg is
// typically prometheus.DefaultRegisterer; tests pass a fresh
// prometheus.NewRegistry() to avoid collisions across table-driven cases.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_requests_total",
			Help: "Ingest RPC records processed, partitioned by outcome status.",
		}, []string{"status"}),
		RequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "collector_request_duration_seconds",
			Help:    "Per-record ingest pipeline latency (validate through enqueue).",
			Buckets: prometheus.DefBuckets,
		}),
		SanitizationOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_sanitization_operations_total",
			Help: "Pattern matches applied during sanitization, partitioned by pattern name.",
		}, []string{"pattern"}),
		DeduplicationOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_deduplication_operations_total",
			Help: "Deduplicator observations, partitioned by result (fresh/duplicate).",
		}, []string{"result"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "collector_queue_depth",
			Help: "Approximate depth of the staging channel awaiting enqueue to the Queue.",
		}),
		LeakDetected: f.NewCounter(prometheus.CounterOpts{
			Name: "collector_sanitizer_leak_detected_total",
			Help: "Captures dropped because the post-sanitization re-scan still matched a pattern.",
		}),
	}
}

// RecordRequest increments the request counter for the given outcome status
// and observes the pipeline latency.
func (c *Collector) RecordRequest(status string, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(status).Inc()
	c.RequestDuration.Observe(d.Seconds())
}

// RecordSanitization increments the per-pattern match counter.
func (c *Collector) RecordSanitization(pattern string, count int) {
	if c == nil || count == 0 {
		return
	}
	c.SanitizationOperations.WithLabelValues(pattern).Add(float64(count))
}

// RecordDedup increments the deduplication-result counter.
func (c *Collector) RecordDedup(result string) {
	if c == nil {
		return
	}
	c.DeduplicationOps.WithLabelValues(result).Inc()
}

// RecordLeak increments the leak-detection counter.
func (c *Collector) RecordLeak() {
	if c == nil {
		return
	}
	c.LeakDetected.Inc()
}

// SetQueueDepth sets the staging-channel depth gauge.
func (c *Collector) SetQueueDepth(depth int) {
	if c == nil {
		return
	}
	c.QueueDepth.Set(float64(depth))
}

// RuleLoader holds the metric families emitted by the Rule Loader process.
type RuleLoader struct {
	MappingsProcessed *prometheus.CounterVec
	InstallDuration   prometheus.Histogram
	Errors            *prometheus.CounterVec
}

// NewRuleLoader registers and returns the Rule Loader metric set.
func NewRuleLoader(reg prometheus.Registerer) *RuleLoader {
	f := promauto.With(reg)
	return &RuleLoader{
		MappingsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rule_loader_mappings_processed_total",
			Help: "Descriptors processed by the Rule Loader, partitioned by outcome status.",
		}, []string{"status"}),
		InstallDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rule_loader_install_duration_seconds",
			Help:    "Latency of a single mock-server install call, including retries.",
			Buckets: prometheus.DefBuckets,
		}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rule_loader_errors_total",
			Help: "Install errors, partitioned by kind (transient/permanent).",
		}, []string{"kind"}),
	}
}

// RecordInstall increments the processed counter for status and observes the
// install latency.
func (r *RuleLoader) RecordInstall(status string, d time.Duration) {
	if r == nil {
		return
	}
	r.MappingsProcessed.WithLabelValues(status).Inc()
	r.InstallDuration.Observe(d.Seconds())
}

// RecordError increments the error counter for the given kind.
func (r *RuleLoader) RecordError(kind string) {
	if r == nil {
		return
	}
	r.Errors.WithLabelValues(kind).Inc()
}
