package model

import "errors"

// Sentinel errors classifying the record-level failure kinds from spec §7.
// These are never meant to abort the pipeline; callers inspect them with
// errors.Is to pick a metric and an ack/dead-letter disposition.
var (
	// ErrValidation marks a malformed record rejected before sanitization.
	ErrValidation = errors.New("model: validation failed")

	// ErrLeak marks a capture dropped because the post-sanitization re-scan
	// still matched a configured pattern.
	ErrLeak = errors.New("model: sanitization leak detected")

	// ErrBackpressure marks a capture dropped because the staging channel
	// stayed full past the enqueue timeout.
	ErrBackpressure = errors.New("model: staging backpressure")

	// ErrQueueTransient marks a Queue operation that failed after
	// exhausting its own retry budget.
	ErrQueueTransient = errors.New("model: queue transient failure")

	// ErrInstallTransient marks a mock-server install attempt that failed
	// with a retryable error (5xx, transport failure).
	ErrInstallTransient = errors.New("model: install transient failure")

	// ErrInstallPermanent marks a mock-server install attempt rejected with
	// a non-retryable 4xx (other than conflict).
	ErrInstallPermanent = errors.New("model: install permanent failure")

	// ErrFatalConfig marks a configuration problem that must stop startup.
	ErrFatalConfig = errors.New("model: fatal configuration error")
)
