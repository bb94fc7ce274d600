package expiration

import (
	"context"
	"time"
)

// Scheduler turns "expire this payment after delay" into a queued job.
type Scheduler struct {
	queue   Queue
	now     func() time.Time
	loggerf func(format string, args ...interface{})
}

func NewScheduler(queue Queue, loggerf func(format string, args ...interface{})) *Scheduler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Scheduler{queue: queue, now: time.Now, loggerf: loggerf}
}

// Schedule enqueues uuid to run after delay. Scheduling the same uuid again
// replaces the pending job.
func (s *Scheduler) Schedule(ctx context.Context, uuid string, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	runAt := s.now().Add(delay)
	if err := s.queue.Enqueue(ctx, uuid, runAt); err != nil {
		return err
	}
	s.loggerf("level=info msg=payment expiration scheduled uuid=%s run_at=%s", uuid, runAt.UTC().Format(time.RFC3339))
	return nil
}
