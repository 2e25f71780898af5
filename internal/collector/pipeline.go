package collector

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/meshcap/sanitizer-pipeline/internal/dedup"
	"github.com/meshcap/sanitizer-pipeline/internal/logger"
	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/model"
	"github.com/meshcap/sanitizer-pipeline/internal/queue"
	"github.com/meshcap/sanitizer-pipeline/internal/sanitizer"
)

// Config bounds the per-record pipeline and the enqueue worker fleet (spec
// §4.3, §5).
type Config struct {
	MaxBodyBytes         int
	FingerprintBodyLimit int
	StagingChannelDepth  int
	EnqueueWorkers       int
	EnqueueTimeout       time.Duration
}

// Pipeline runs the Collector's per-record work (validate → sanitize →
// fingerprint → dedup → stage) and owns the staging channel plus the
// enqueue worker fleet that drains it onto the Queue. One Pipeline is
// constructed per process and threaded into the gRPC server — never a
// package-level singleton (spec §9).
type Pipeline struct {
	cfg      Config
	san      *sanitizer.Sanitizer
	cache    *dedup.Cache
	q        queue.Queue
	m        *metrics.Collector
	log      *logger.Logger
	staging  chan model.MockRuleDescriptor
	degraded atomic.Bool
}

// New constructs a Pipeline. Call Run in a background goroutine before
// sending any records to Process.
func New(cfg Config, san *sanitizer.Sanitizer, cache *dedup.Cache, q queue.Queue, m *metrics.Collector, log *logger.Logger) *Pipeline {
	if cfg.StagingChannelDepth < 1 {
		cfg.StagingChannelDepth = 1
	}
	if cfg.EnqueueWorkers < 1 {
		cfg.EnqueueWorkers = 1
	}
	if cfg.FingerprintBodyLimit <= 0 {
		cfg.FingerprintBodyLimit = model.DefaultFingerprintBodyLimit
	}
	return &Pipeline{
		cfg:     cfg,
		san:     san,
		cache:   cache,
		q:       q,
		m:       m,
		log:     log,
		staging: make(chan model.MockRuleDescriptor, cfg.StagingChannelDepth),
	}
}

// Run launches the enqueue worker fleet and blocks until ctx is canceled,
// then drains whatever remains in staging before returning (bounded by the
// caller's shutdown deadline via ctx). Call in its own goroutine.
func (p *Pipeline) Run(ctx context.Context) {
	done := make(chan struct{})
	for i := 0; i < p.cfg.EnqueueWorkers; i++ {
		go func() {
			p.enqueueWorker(ctx)
			done <- struct{}{}
		}()
	}
	for i := 0; i < p.cfg.EnqueueWorkers; i++ {
		<-done
	}
}

// enqueueWorker ranges over staging, pushing each descriptor to the Queue.
// Queue.Push already retries transient failures internally; if it still
// fails after retry exhaustion the descriptor is dropped, the drop is
// logged, and Healthy reports false until the next successful push —
// spec §4.3's "no acknowledged record is guaranteed durable until the
// Queue accepts it".
func (p *Pipeline) enqueueWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drainRemaining()
			return
		case d, ok := <-p.staging:
			if !ok {
				return
			}
			p.pushOne(ctx, d)
		}
	}
}

// drainRemaining flushes whatever is still buffered in staging once ctx is
// canceled, honoring the bounded-flush stage of shutdown (spec §5).
func (p *Pipeline) drainRemaining() {
	for {
		select {
		case d := <-p.staging:
			// Use a fresh bounded context: the caller's ctx is already
			// canceled by the time we get here.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.pushOne(ctx, d)
			cancel()
		default:
			return
		}
	}
}

func (p *Pipeline) pushOne(ctx context.Context, d model.MockRuleDescriptor) {
	pushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.q.Push(pushCtx, d); err != nil {
		p.degraded.Store(true)
		if p.log != nil {
			p.log.Warnf("enqueue", "dropping descriptor %s after queue push failure: %v", d.Fingerprint, err)
		}
	} else {
		p.degraded.Store(false)
	}
	p.m.SetQueueDepth(len(p.staging))
}

// Healthy reports false once the Queue adapter has observed a push failure
// after exhausting its own retry budget, until the next successful push —
// the signal the /health endpoint surfaces as a 503 (spec §6).
func (p *Pipeline) Healthy() bool {
	return !p.degraded.Load()
}

// Process runs one CaptureRecord through the full pipeline and returns the
// ack to send back over the ingest stream. It never blocks longer than
// cfg.EnqueueTimeout beyond the sanitize/dedup work, which is in-process and
// non-suspending (spec §5).
func (p *Pipeline) Process(ctx context.Context, record model.CaptureRecord) model.IngestAck {
	start := time.Now()

	record, err := validateAndBound(record, p.cfg.MaxBodyBytes)
	if err != nil {
		p.m.RecordRequest("validation", time.Since(start))
		return model.IngestAck{Accepted: false, DroppedReason: "validation"}
	}

	sanitized, err := p.san.Sanitize(record)
	if err != nil {
		if errors.Is(err, model.ErrLeak) {
			p.m.RecordRequest("leak", time.Since(start))
			return model.IngestAck{Accepted: false, DroppedReason: "leak"}
		}
		p.m.RecordRequest("error", time.Since(start))
		return model.IngestAck{Accepted: false, DroppedReason: "error"}
	}

	match := buildMatch(sanitized)
	fp := model.ComputeFingerprintWithLimit(match, p.cfg.FingerprintBodyLimit)

	if p.cache.Observe(fp, sanitized.ObservedAt) == dedup.Duplicate {
		p.m.RecordRequest("duplicate", time.Since(start))
		return model.IngestAck{Accepted: false, Duplicate: true}
	}

	descriptor := buildDescriptor(sanitized, fp, match)

	if !p.stage(ctx, descriptor) {
		p.m.RecordRequest("backpressure", time.Since(start))
		return model.IngestAck{Accepted: false, DroppedReason: "backpressure"}
	}

	p.m.RecordRequest("accepted", time.Since(start))
	p.m.SetQueueDepth(len(p.staging))
	return model.IngestAck{Accepted: true}
}

// stage attempts a non-blocking send into the staging channel, falling back
// to a blocking send bounded by cfg.EnqueueTimeout (spec §4.3 step 4: "apply
// backpressure: block up to enqueue_timeout, then drop").
func (p *Pipeline) stage(ctx context.Context, d model.MockRuleDescriptor) bool {
	select {
	case p.staging <- d:
		return true
	default:
	}

	timer := time.NewTimer(p.cfg.EnqueueTimeout)
	defer timer.Stop()
	select {
	case p.staging <- d:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// validateAndBound enforces the record-shape and body-bound invariants from
// spec §4.3 step 1: a malformed record (missing method/path, status outside
// 100-599) is rejected; an oversized body is truncated and flagged rather
// than rejected.
func validateAndBound(record model.CaptureRecord, maxBodyBytes int) (model.CaptureRecord, error) {
	if record.Request.Method == "" || record.Request.Path == "" {
		return model.CaptureRecord{}, fmt.Errorf("%w: missing method or path", model.ErrValidation)
	}
	if record.Response.Status < 100 || record.Response.Status > 599 {
		return model.CaptureRecord{}, fmt.Errorf("%w: response status %d out of range", model.ErrValidation, record.Response.Status)
	}
	if maxBodyBytes > 0 {
		if len(record.Request.Body) > maxBodyBytes {
			record.Request.Body = record.Request.Body[:maxBodyBytes]
			record.Request.Truncated = true
		}
		if len(record.Response.Body) > maxBodyBytes {
			record.Response.Body = record.Response.Body[:maxBodyBytes]
		}
	}
	return record, nil
}
