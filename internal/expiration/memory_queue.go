package expiration

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue. Jobs are lost on restart; the sweeper
// re-enqueues overdue payments.
type MemoryQueue struct {
	mu         sync.Mutex
	visibility time.Duration
	ready      map[string]time.Time
	processing map[string]time.Time
	attempts   map[string]int
	dead       map[string]struct{}
}

func NewMemoryQueue(visibility time.Duration) *MemoryQueue {
	return &MemoryQueue{
		visibility: visibility,
		ready:      make(map[string]time.Time),
		processing: make(map[string]time.Time),
		attempts:   make(map[string]int),
		dead:       make(map[string]struct{}),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, key string, runAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ready[key] = runAt
	delete(q.attempts, key)
	delete(q.dead, key)
	return nil
}

func (q *MemoryQueue) EnqueueIfAbsent(_ context.Context, key string, runAt time.Time) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.ready[key]; ok {
		return false, nil
	}
	if _, ok := q.processing[key]; ok {
		return false, nil
	}
	if _, ok := q.dead[key]; ok {
		return false, nil
	}
	q.ready[key] = runAt
	return true, nil
}

func (q *MemoryQueue) Claim(_ context.Context, now time.Time, limit int) ([]Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	type due struct {
		key   string
		runAt time.Time
	}
	var candidates []due
	for key, runAt := range q.ready {
		if !runAt.After(now) {
			candidates = append(candidates, due{key, runAt})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].runAt.Equal(candidates[j].runAt) {
			return candidates[i].key < candidates[j].key
		}
		return candidates[i].runAt.Before(candidates[j].runAt)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	jobs := make([]Job, 0, len(candidates))
	for _, c := range candidates {
		delete(q.ready, c.key)
		q.processing[c.key] = now.Add(q.visibility)
		q.attempts[c.key]++
		jobs = append(jobs, Job{Key: c.key, Attempt: q.attempts[c.key]})
	}
	return jobs, nil
}

func (q *MemoryQueue) Ack(_ context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, key)
	if _, pending := q.ready[key]; !pending {
		delete(q.attempts, key)
	}
	return nil
}

func (q *MemoryQueue) Retry(_ context.Context, key string, runAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, key)
	q.ready[key] = runAt
	return nil
}

func (q *MemoryQueue) Bury(_ context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, key)
	delete(q.ready, key)
	delete(q.attempts, key)
	q.dead[key] = struct{}{}
	return nil
}

func (q *MemoryQueue) RequeueStale(_ context.Context, now time.Time) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	moved := 0
	for key, deadline := range q.processing {
		if deadline.After(now) {
			continue
		}
		delete(q.processing, key)
		if _, pending := q.ready[key]; !pending {
			q.ready[key] = now
		}
		moved++
	}
	return moved, nil
}

// Buried reports how many keys ran out of attempts.
func (q *MemoryQueue) Buried() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.dead)
}

// Len reports pending and in-flight jobs.
func (q *MemoryQueue) Len() (ready, processing int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready), len(q.processing)
}
