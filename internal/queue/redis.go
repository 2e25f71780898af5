package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/meshcap/sanitizer-pipeline/internal/logger"
	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

// RedisConfig configures a RedisQueue.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	ListName     string
	DLQName      string
	RetryAttempts int // passed to backoff.WithMaxRetries; 0 selects the default of 5
}

// RedisQueue implements Queue against a single Redis list pair: ListName
// for live work, DLQName for dead-lettered descriptors. Push is RPUSH;
// PopBatch is a blocking LPOP loop seeded by BLPOP; DeadLetter is RPUSH
// onto the DLQ key. go-redis owns connection pooling and reconnection; the
// additional backoff.Retry wrapper here absorbs transient command failures
// (network blips, momentary unavailability) before surfacing
// model.ErrQueueTransient to the caller.
type RedisQueue struct {
	client   *redis.Client
	listName string
	dlqName  string
	attempts uint64
	m        *metrics.Collector
	log      *logger.Logger
}

// NewRedisQueue dials (lazily — go-redis connects on first use) a Redis
// client per cfg.
func NewRedisQueue(cfg RedisConfig, m *metrics.Collector, log *logger.Logger) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	attempts := uint64(cfg.RetryAttempts)
	if attempts == 0 {
		attempts = 5
	}
	return &RedisQueue{
		client:   client,
		listName: cfg.ListName,
		dlqName:  cfg.DLQName,
		attempts: attempts,
		m:        m,
		log:      log,
	}
}

// retry wraps op with exponential backoff (50ms base, 5s cap, attempts
// bounded) per spec.md's "5 attempts, 50ms→5s" retry policy.
func (q *RedisQueue) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	bounded := backoff.WithMaxRetries(b, q.attempts)
	withCtx := backoff.WithContext(bounded, ctx)
	return backoff.Retry(op, withCtx)
}

// Push serializes descriptor as JSON and RPUSHes it onto the live list.
func (q *RedisQueue) Push(ctx context.Context, descriptor model.MockRuleDescriptor) error {
	if err := validateDescriptor(descriptor); err != nil {
		return err
	}
	payload, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("queue: marshal descriptor: %w", err)
	}

	err = q.retry(ctx, func() error {
		return q.client.RPush(ctx, q.listName, payload).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrQueueTransient, err)
	}
	return nil
}

// PopBatch blocks on BLPOP for up to timeout waiting for the first
// descriptor, then drains up to maxN-1 more with non-blocking LPOP. An
// empty result after timeout is (nil, nil), not an error.
func (q *RedisQueue) PopBatch(ctx context.Context, maxN int, timeout time.Duration) ([]model.MockRuleDescriptor, error) {
	if maxN <= 0 {
		return nil, nil
	}
	if maxN > MaxBatchSize {
		maxN = MaxBatchSize
	}

	var first []string
	err := q.retry(ctx, func() error {
		res, err := q.client.BLPop(ctx, timeout, q.listName).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		first = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrQueueTransient, err)
	}
	if len(first) < 2 {
		return nil, nil // timed out, nothing available
	}

	batch := make([]model.MockRuleDescriptor, 0, maxN)
	d, err := decodeDescriptor(first[1])
	if err != nil {
		if q.log != nil {
			q.log.Warnf("decode", "dropping undecodable queue entry: %v", err)
		}
	} else {
		batch = append(batch, d)
	}

	for len(batch) < maxN {
		raw, err := q.client.LPop(ctx, q.listName).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return batch, fmt.Errorf("%w: %v", model.ErrQueueTransient, err)
		}
		d, err := decodeDescriptor(raw)
		if err != nil {
			if q.log != nil {
				q.log.Warnf("decode", "dropping undecodable queue entry: %v", err)
			}
			continue
		}
		batch = append(batch, d)
	}

	return batch, nil
}

// DeadLetter wraps descriptor and reason into a model.DeadLetterEntry and
// RPUSHes it onto the DLQ list.
func (q *RedisQueue) DeadLetter(ctx context.Context, descriptor model.MockRuleDescriptor, reason string) error {
	now := descriptor.Metadata.ObservedAt
	entry := model.DeadLetterEntry{
		Descriptor: descriptor,
		Reason:     reason,
		LastError:  reason,
		Attempts:   1,
		FirstSeen:  now,
		LastSeen:   now,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("queue: marshal dead-letter entry: %w", err)
	}
	err = q.retry(ctx, func() error {
		return q.client.RPush(ctx, q.dlqName, payload).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrQueueTransient, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func decodeDescriptor(raw string) (model.MockRuleDescriptor, error) {
	var d model.MockRuleDescriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return model.MockRuleDescriptor{}, fmt.Errorf("queue: unmarshal descriptor: %w", err)
	}
	return d, nil
}
