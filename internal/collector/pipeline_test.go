package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshcap/sanitizer-pipeline/internal/dedup"
	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/model"
	"github.com/meshcap/sanitizer-pipeline/internal/sanitizer"
)

// fakeQueue is an in-memory queue.Queue double for pipeline tests.
type fakeQueue struct {
	mu       sync.Mutex
	pushed   []model.MockRuleDescriptor
	pushErr  error
	deadLets []model.MockRuleDescriptor
}

func (f *fakeQueue) Push(_ context.Context, d model.MockRuleDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed = append(f.pushed, d)
	return nil
}

func (f *fakeQueue) PopBatch(_ context.Context, _ int, _ time.Duration) ([]model.MockRuleDescriptor, error) {
	return nil, nil
}

func (f *fakeQueue) DeadLetter(_ context.Context, d model.MockRuleDescriptor, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadLets = append(f.deadLets, d)
	return nil
}

func (f *fakeQueue) Close() error { return nil }

func (f *fakeQueue) pushedLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func newTestPipeline(t *testing.T, q *fakeQueue) *Pipeline {
	t.Helper()
	m := metrics.NewCollector(prometheus.NewRegistry())
	san, err := sanitizer.New(sanitizer.DefaultConfig(), m)
	if err != nil {
		t.Fatalf("sanitizer.New: %v", err)
	}
	cache := dedup.New(16, m)
	return New(Config{
		MaxBodyBytes:        4096,
		StagingChannelDepth: 8,
		EnqueueWorkers:      1,
		EnqueueTimeout:      100 * time.Millisecond,
	}, san, cache, q, m, nil)
}

func validRecord() model.CaptureRecord {
	return model.CaptureRecord{
		Direction: model.DirectionInbound,
		Request: model.RequestData{
			Method: "GET",
			Path:   "/v1/users/42",
		},
		Response: model.ResponseData{
			Status: 200,
		},
		ObservedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestPipelineProcessAcceptsFreshRecord(t *testing.T) {
	q := &fakeQueue{}
	p := newTestPipeline(t, q)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	ack := p.Process(context.Background(), validRecord())
	if !ack.Accepted {
		t.Fatalf("expected record to be accepted, got %+v", ack)
	}

	cancel()
	<-done

	if q.pushedLen() != 1 {
		t.Errorf("expected 1 descriptor pushed to queue, got %d", q.pushedLen())
	}
}

func TestPipelineProcessRejectsMissingMethod(t *testing.T) {
	q := &fakeQueue{}
	p := newTestPipeline(t, q)

	record := validRecord()
	record.Request.Method = ""

	ack := p.Process(context.Background(), record)
	if ack.Accepted {
		t.Fatal("expected rejection for missing method")
	}
	if ack.DroppedReason != "validation" {
		t.Errorf("expected validation drop reason, got %q", ack.DroppedReason)
	}
}

func TestPipelineProcessRejectsOutOfRangeStatus(t *testing.T) {
	q := &fakeQueue{}
	p := newTestPipeline(t, q)

	record := validRecord()
	record.Response.Status = 9001

	ack := p.Process(context.Background(), record)
	if ack.Accepted {
		t.Fatal("expected rejection for out-of-range status")
	}
	if ack.DroppedReason != "validation" {
		t.Errorf("expected validation drop reason, got %q", ack.DroppedReason)
	}
}

func TestPipelineProcessDeduplicatesSecondObservation(t *testing.T) {
	q := &fakeQueue{}
	p := newTestPipeline(t, q)

	first := p.Process(context.Background(), validRecord())
	if !first.Accepted {
		t.Fatalf("expected first observation to be accepted, got %+v", first)
	}

	second := p.Process(context.Background(), validRecord())
	if second.Accepted {
		t.Fatal("expected second observation to be rejected as duplicate")
	}
	if !second.Duplicate {
		t.Errorf("expected Duplicate flag set, got %+v", second)
	}
}

func TestPipelineProcessTruncatesOversizedBody(t *testing.T) {
	q := &fakeQueue{}
	p := newTestPipeline(t, q)

	record := validRecord()
	record.Request.Body = make([]byte, 8192)
	for i := range record.Request.Body {
		record.Request.Body[i] = 'a'
	}

	ack := p.Process(context.Background(), record)
	if !ack.Accepted {
		t.Fatalf("expected oversized-but-truncatable body to be accepted, got %+v", ack)
	}
}

func TestPipelineProcessAppliesBackpressureWhenStagingFull(t *testing.T) {
	q := &fakeQueue{}
	m := metrics.NewCollector(prometheus.NewRegistry())
	san, err := sanitizer.New(sanitizer.DefaultConfig(), m)
	if err != nil {
		t.Fatalf("sanitizer.New: %v", err)
	}
	cache := dedup.New(16, m)
	// Staging depth 1, no workers draining it, so the 2nd distinct record
	// must hit the bounded blocking path and then time out.
	p := New(Config{
		MaxBodyBytes:        4096,
		StagingChannelDepth: 1,
		EnqueueWorkers:      1,
		EnqueueTimeout:      20 * time.Millisecond,
	}, san, cache, q, m, nil)

	r1 := validRecord()
	r1.Request.Path = "/v1/a"
	ack1 := p.Process(context.Background(), r1)
	if !ack1.Accepted {
		t.Fatalf("expected first record accepted, got %+v", ack1)
	}

	r2 := validRecord()
	r2.Request.Path = "/v1/b"
	ack2 := p.Process(context.Background(), r2)
	if ack2.Accepted {
		t.Fatal("expected second record to be dropped under backpressure")
	}
	if ack2.DroppedReason != "backpressure" {
		t.Errorf("expected backpressure drop reason, got %q", ack2.DroppedReason)
	}
}

func TestPipelineHealthyReflectsQueueFailures(t *testing.T) {
	q := &fakeQueue{pushErr: model.ErrQueueTransient}
	p := newTestPipeline(t, q)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.Process(context.Background(), validRecord())

	// pushOne runs asynchronously in the enqueue worker; poll briefly for
	// the degraded flag to flip.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !p.Healthy() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if p.Healthy() {
		t.Error("expected Healthy() to report false after a queue push failure")
	}

	cancel()
	<-done
}
