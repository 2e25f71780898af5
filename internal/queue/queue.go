// Package queue defines the Queue contract (spec §4.4): Push, PopBatch,
// DeadLetter against a single named FIFO plus its dead-letter list. The
// interface is deliberately separated from any backing store, in the style
// of the pack's generic envelope-queue contract — here specialized to carry
// a model.MockRuleDescriptor payload instead of an arbitrary byte envelope,
// since this pipeline has exactly one message shape.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

// Bounds mirror the defensive constants used by the pack's generic queue
// contract, scaled to a single-descriptor-per-message pipeline rather than
// an arbitrary-payload one.
const (
	// MaxBatchSize caps a single PopBatch call regardless of what the
	// caller requests.
	MaxBatchSize = 256
	// MaxRecommendedAttempts is an advisory upper bound on retry counts.
	// RedisQueue and the Rule Loader do not enforce it; they take their
	// retry counts from their own configuration.
	MaxRecommendedAttempts = 10
)

// Standard errors for Queue implementations, in addition to the sentinel
// model.ErrQueueTransient wrapped around backend failures. RedisQueue
// returns ErrInvalid from Push; it never returns ErrEmpty, since an empty
// PopBatch is (nil, nil).
var (
	ErrEmpty   = errors.New("queue: empty")
	ErrInvalid = errors.New("queue: invalid descriptor")
)

// Queue is the Push/PopBatch/DeadLetter contract every backend implements.
// All methods are safe for concurrent use by multiple producers and
// consumers.
type Queue interface {
	// Push enqueues descriptor onto the FIFO, retrying transient backend
	// failures internally before returning model.ErrQueueTransient.
	Push(ctx context.Context, descriptor model.MockRuleDescriptor) error

	// PopBatch blocks until at least one descriptor is available or
	// timeout elapses, then returns up to maxN descriptors without
	// blocking further. A timeout with nothing available returns
	// (nil, nil), not an error — spec §4.4's "blocks... or timeout" is not
	// itself a failure.
	PopBatch(ctx context.Context, maxN int, timeout time.Duration) ([]model.MockRuleDescriptor, error)

	// DeadLetter records descriptor on the dead-letter list with reason,
	// for operator inspection or replay.
	DeadLetter(ctx context.Context, descriptor model.MockRuleDescriptor, reason string) error

	// Close releases backend resources.
	Close() error
}

// validateDescriptor enforces the minimal shape invariant every backend
// should check before attempting to serialize a descriptor: a Fingerprint
// must be set, since it's both the Queue's natural identifier and the
// backup sink's key.
func validateDescriptor(d model.MockRuleDescriptor) error {
	if d.Fingerprint == "" {
		return ErrInvalid
	}
	return nil
}
