package expiration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	mu      sync.Mutex
	results map[string][]error
	calls   map[string]int
	expired map[string]bool
}

func newFakeExpirer() *fakeExpirer {
	return &fakeExpirer{results: map[string][]error{}, calls: map[string]int{}, expired: map[string]bool{}}
}

func (f *fakeExpirer) ExpirePayment(_ context.Context, uuid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.calls[uuid]
	f.calls[uuid]++
	if errs := f.results[uuid]; n < len(errs) && errs[n] != nil {
		return false, errs[n]
	}
	if f.expired[uuid] {
		return false, nil
	}
	f.expired[uuid] = true
	return true, nil
}

func (f *fakeExpirer) callsFor(uuid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[uuid]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestWorker(q Queue, e Expirer, cfg WorkerConfig) (*Worker, *clock) {
	c := &clock{now: t0}
	w := NewWorker(q, e, cfg, nil)
	w.now = c.Now
	return w, c
}

func TestBackoff(t *testing.T) {
	base, limit := time.Second, 10*time.Second
	assert.Equal(t, time.Second, Backoff(base, limit, 0))
	assert.Equal(t, time.Second, Backoff(base, limit, 1))
	assert.Equal(t, 2*time.Second, Backoff(base, limit, 2))
	assert.Equal(t, 8*time.Second, Backoff(base, limit, 4))
	assert.Equal(t, limit, Backoff(base, limit, 5))
	assert.Equal(t, limit, Backoff(base, limit, 500))
}

func TestWorker_ExpiresDueJobs(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	e := newFakeExpirer()
	w, _ := newTestWorker(q, e, WorkerConfig{Concurrency: 4})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(ctx, fmt.Sprintf("p-%d", i), t0))
	}
	require.NoError(t, q.Enqueue(ctx, "future", t0.Add(time.Hour)))

	n, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	for i := 0; i < 20; i++ {
		assert.Equal(t, 1, e.callsFor(fmt.Sprintf("p-%d", i)))
	}
	assert.Zero(t, e.callsFor("future"))
	ready, processing := q.Len()
	assert.Equal(t, 1, ready)
	assert.Zero(t, processing)
}

func TestWorker_RetriesTransientErrorsWithBackoff(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	e := newFakeExpirer()
	boom := errors.New("connection reset")
	e.results["p"] = []error{boom, boom}
	w, c := newTestWorker(q, e, WorkerConfig{MaxAttempts: 5, BackoffBase: time.Second, BackoffMax: time.Minute})
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "p", t0))

	_, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.callsFor("p"))

	c.Advance(500 * time.Millisecond)
	n, _ := w.RunOnce(ctx)
	assert.Zero(t, n, "first retry waits one second")

	c.Advance(500 * time.Millisecond)
	_, _ = w.RunOnce(ctx)
	assert.Equal(t, 2, e.callsFor("p"))

	c.Advance(time.Second)
	n, _ = w.RunOnce(ctx)
	assert.Zero(t, n, "second retry waits two seconds")

	c.Advance(time.Second)
	_, _ = w.RunOnce(ctx)
	assert.Equal(t, 3, e.callsFor("p"))
	assert.True(t, e.expired["p"])

	ready, processing := q.Len()
	assert.Zero(t, ready)
	assert.Zero(t, processing)
}

func TestWorker_DeadLettersAfterMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	e := newFakeExpirer()
	boom := errors.New("db down")
	e.results["p"] = []error{boom, boom, boom, boom}
	w, c := newTestWorker(q, e, WorkerConfig{MaxAttempts: 3, BackoffBase: time.Second, BackoffMax: time.Second})
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "p", t0))
	for i := 0; i < 5; i++ {
		_, err := w.RunOnce(ctx)
		require.NoError(t, err)
		c.Advance(time.Second)
	}

	assert.Equal(t, 3, e.callsFor("p"))
	ready, processing := q.Len()
	assert.Zero(t, ready)
	assert.Zero(t, processing)
	assert.Equal(t, 1, q.Buried())

	added, err := q.EnqueueIfAbsent(ctx, "p", c.Now())
	require.NoError(t, err)
	assert.False(t, added, "buried job stays out of the sweep")
}

func TestWorker_DoesNotRetryClassifiedErrors(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	e := newFakeExpirer()
	notFound := apperr.New(apperr.KindNotFound, "payment not found")
	e.results["gone"] = []error{fmt.Errorf("%w: gone", notFound)}
	w, c := newTestWorker(q, e, WorkerConfig{MaxAttempts: 5})
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "gone", t0))
	_, err := w.RunOnce(ctx)
	require.NoError(t, err)

	c.Advance(time.Hour)
	n, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, e.callsFor("gone"))
}

func TestWorker_DuplicateDeliveryIsHarmless(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	e := newFakeExpirer()
	w, _ := newTestWorker(q, e, WorkerConfig{})
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "p", t0))
	_, _ = w.RunOnce(ctx)
	require.NoError(t, q.Enqueue(ctx, "p", t0))
	_, _ = w.RunOnce(ctx)

	assert.Equal(t, 2, e.callsFor("p"))
	assert.True(t, e.expired["p"])
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	e := newFakeExpirer()
	w := NewWorker(q, e, WorkerConfig{PollInterval: 10 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, q.Enqueue(ctx, "p", time.Now().Add(-time.Second)))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return e.callsFor("p") == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
