// Package ruleloader implements the worker pool that drains the Queue and
// installs each descriptor into a mock server's admin API (spec §4.5):
// pop a batch, install each with retry/backoff, dead-letter on exhaustion
// or permanent rejection, optionally append accepted installs to a backup
// sink.
package ruleloader

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meshcap/sanitizer-pipeline/internal/backupsink"
	"github.com/meshcap/sanitizer-pipeline/internal/logger"
	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/model"
	"github.com/meshcap/sanitizer-pipeline/internal/queue"
)

func marshalDescriptor(d model.MockRuleDescriptor) ([]byte, error) {
	return json.Marshal(d)
}

// Installer is the subset of mockadmin.Client the loader depends on, so
// tests can substitute a fake.
type Installer interface {
	Install(ctx context.Context, descriptor model.MockRuleDescriptor) error
}

// Config configures a Loader's worker pool and retry policy.
type Config struct {
	Workers       int
	BatchSize     int
	PopTimeout    time.Duration
	RetryAttempts int
}

// Loader runs Workers goroutines, each looping: pop a batch from q, install
// every descriptor via installer, dead-letter on failure, optionally append
// to backup.
type Loader struct {
	q         queue.Queue
	installer Installer
	backup    *backupsink.Sink
	cfg       Config
	m         *metrics.RuleLoader
	log       *logger.Logger
	degraded  atomic.Bool
}

// Healthy reports false once a PopBatch call has failed, until the next
// successful pop — the signal the /health endpoint surfaces as a 503
// (spec §6, mirrored from the Collector's Queue-degradation check).
func (l *Loader) Healthy() bool {
	return !l.degraded.Load()
}

// New returns a Loader. backup may be nil to disable the audit trail.
func New(q queue.Queue, installer Installer, backup *backupsink.Sink, cfg Config, m *metrics.RuleLoader, log *logger.Logger) *Loader {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 3
	}
	return &Loader{q: q, installer: installer, backup: backup, cfg: cfg, m: m, log: log}
}

// Run starts Workers worker goroutines and blocks until ctx is canceled,
// then waits for all workers to finish their current batch.
func (l *Loader) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < l.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.workerLoop(ctx)
		}()
	}
	wg.Wait()
}

func (l *Loader) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := l.q.PopBatch(ctx, l.cfg.BatchSize, l.cfg.PopTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			l.degraded.Store(true)
			if l.log != nil {
				l.log.Warnf("pop", "PopBatch error: %v", err)
			}
			continue
		}
		l.degraded.Store(false)
		for _, d := range batch {
			l.processOne(ctx, d)
		}
	}
}

// processOne installs one descriptor with exponential backoff, then records
// success/dead-letter and the optional backup append.
func (l *Loader) processOne(ctx context.Context, d model.MockRuleDescriptor) {
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	bounded := backoff.WithMaxRetries(b, uint64(l.cfg.RetryAttempts))
	withCtx := backoff.WithContext(bounded, ctx)

	var lastErr error
	permanent := false
	err := backoff.Retry(func() error {
		err := l.installer.Install(ctx, d)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, model.ErrInstallPermanent) {
			permanent = true
			l.m.RecordError("permanent")
			return backoff.Permanent(err)
		}
		// Every transient attempt (5xx, transport error) is counted as it
		// happens, not just on final exhaustion — spec scenario (e): two
		// 503s followed by a 201 records kind="transient" twice.
		l.m.RecordError("transient")
		return err
	}, withCtx)

	if err == nil {
		l.m.RecordInstall("success", time.Since(start))
		if l.backup != nil {
			payload, marshalErr := marshalDescriptor(d)
			if marshalErr == nil {
				if appendErr := l.backup.Append(d.Fingerprint, payload); appendErr != nil && l.log != nil {
					l.log.Warnf("backup", "append failed for %s: %v", d.Fingerprint, appendErr)
				}
			}
		}
		return
	}

	reason := "transient_exhausted"
	if permanent {
		reason = "permanent_rejection"
	}
	l.m.RecordInstall(reason, time.Since(start))

	dlqErr := l.q.DeadLetter(ctx, d, lastErr.Error())
	if dlqErr != nil && l.log != nil {
		l.log.Errorf("dead_letter", "failed to dead-letter %s: %v (original error: %v)", d.Fingerprint, dlqErr, lastErr)
	}
}
