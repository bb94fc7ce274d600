package expiration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

func TestMemoryQueue_ClaimsOnlyDueJobsInOrder(t *testing.T) {
	q := NewMemoryQueue(30 * time.Second)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "late", t0.Add(time.Minute)))
	require.NoError(t, q.Enqueue(ctx, "b", t0.Add(-time.Second)))
	require.NoError(t, q.Enqueue(ctx, "a", t0.Add(-2*time.Second)))

	jobs, err := q.Claim(ctx, t0, 10)
	require.NoError(t, err)
	assert.Equal(t, []Job{{Key: "a", Attempt: 1}, {Key: "b", Attempt: 1}}, jobs)

	jobs, err = q.Claim(ctx, t0, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs, "claimed jobs are invisible")

	ready, processing := q.Len()
	assert.Equal(t, 1, ready)
	assert.Equal(t, 2, processing)
}

func TestMemoryQueue_ClaimRespectsLimit(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, k, t0))
	}

	jobs, err := q.Claim(ctx, t0, 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestMemoryQueue_EnqueueReplacesPendingJob(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "p", t0))
	require.NoError(t, q.Enqueue(ctx, "p", t0.Add(time.Hour)))

	jobs, err := q.Claim(ctx, t0, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	ready, _ := q.Len()
	assert.Equal(t, 1, ready)
}

func TestMemoryQueue_RetryCountsAttempts(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "p", t0))
	jobs, _ := q.Claim(ctx, t0, 1)
	require.Len(t, jobs, 1)
	require.NoError(t, q.Retry(ctx, "p", t0.Add(time.Second)))

	jobs, _ = q.Claim(ctx, t0.Add(time.Second), 1)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, jobs[0].Attempt)

	require.NoError(t, q.Ack(ctx, "p"))
	ready, processing := q.Len()
	assert.Zero(t, ready)
	assert.Zero(t, processing)

	require.NoError(t, q.Enqueue(ctx, "p", t0))
	jobs, _ = q.Claim(ctx, t0.Add(time.Second), 1)
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].Attempt)
}

func TestMemoryQueue_RequeueStale(t *testing.T) {
	q := NewMemoryQueue(30 * time.Second)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "p", t0))
	_, err := q.Claim(ctx, t0, 1)
	require.NoError(t, err)

	n, err := q.RequeueStale(ctx, t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = q.RequeueStale(ctx, t0.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	jobs, err := q.Claim(ctx, t0.Add(30*time.Second), 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, jobs[0].Attempt)
}

func TestParseClaim(t *testing.T) {
	jobs, err := parseClaim([]interface{}{"a", int64(1), "b", int64(3)})
	require.NoError(t, err)
	assert.Equal(t, []Job{{Key: "a", Attempt: 1}, {Key: "b", Attempt: 3}}, jobs)

	_, err = parseClaim([]interface{}{"a"})
	assert.Error(t, err)

	_, err = parseClaim([]interface{}{int64(1), int64(1)})
	assert.Error(t, err)
}

func TestScheduler_EnqueuesAtNowPlusDelay(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	s := NewScheduler(q, nil)
	s.now = func() time.Time { return t0 }
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, "p", 15*time.Minute))
	require.NoError(t, s.Schedule(ctx, "q", -time.Minute))

	jobs, err := q.Claim(ctx, t0, 10)
	require.NoError(t, err)
	assert.Equal(t, []Job{{Key: "q", Attempt: 1}}, jobs)

	jobs, err = q.Claim(ctx, t0.Add(15*time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, []Job{{Key: "p", Attempt: 1}}, jobs)
}
