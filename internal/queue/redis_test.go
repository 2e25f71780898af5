package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

func newTestQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisQueue(RedisConfig{
		Addr:          mr.Addr(),
		ListName:      "rules",
		DLQName:       "rules:dlq",
		RetryAttempts: 1,
	}, nil, nil)
}

func sampleDescriptor(fp string) model.MockRuleDescriptor {
	return model.MockRuleDescriptor{
		Fingerprint: fp,
		Match: model.RuleMatch{
			Method: "GET",
			Path:   "/v1/widgets",
		},
		Response: model.RuleResponse{Status: 200, Body: []byte(`{"ok":true}`)},
		Metadata: model.RuleMetadata{ObservedAt: time.Unix(100, 0).UTC()},
	}
}

func TestRedisQueuePushThenPopBatchReturnsDescriptor(t *testing.T) {
	q := newTestQueue(t)
	defer q.Close()
	ctx := context.Background()

	if err := q.Push(ctx, sampleDescriptor("fp-1")); err != nil {
		t.Fatalf("Push: %v", err)
	}

	batch, err := q.PopBatch(ctx, 10, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("PopBatch: %v", err)
	}
	if len(batch) != 1 || batch[0].Fingerprint != "fp-1" {
		t.Fatalf("batch = %+v, want one descriptor fp-1", batch)
	}
}

func TestRedisQueuePopBatchTimesOutWithoutError(t *testing.T) {
	q := newTestQueue(t)
	defer q.Close()
	ctx := context.Background()

	batch, err := q.PopBatch(ctx, 10, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("PopBatch: %v", err)
	}
	if batch != nil {
		t.Fatalf("batch = %+v, want nil on timeout", batch)
	}
}

func TestRedisQueuePopBatchRespectsMaxN(t *testing.T) {
	q := newTestQueue(t)
	defer q.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Push(ctx, sampleDescriptor("fp")); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	batch, err := q.PopBatch(ctx, 3, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("PopBatch: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("batch len = %d, want 3", len(batch))
	}
}

func TestRedisQueuePushRejectsMissingFingerprint(t *testing.T) {
	q := newTestQueue(t)
	defer q.Close()

	d := sampleDescriptor("")
	if err := q.Push(context.Background(), d); err != ErrInvalid {
		t.Fatalf("Push error = %v, want ErrInvalid", err)
	}
}

func TestRedisQueueDeadLetterIsRetrievableFromDLQ(t *testing.T) {
	q := newTestQueue(t)
	defer q.Close()
	ctx := context.Background()

	d := sampleDescriptor("fp-dead")
	if err := q.DeadLetter(ctx, d, "install exhausted retries"); err != nil {
		t.Fatalf("DeadLetter: %v", err)
	}

	n, err := q.client.LLen(ctx, q.dlqName).Result()
	if err != nil {
		t.Fatalf("LLen: %v", err)
	}
	if n != 1 {
		t.Fatalf("dlq len = %d, want 1", n)
	}
}
