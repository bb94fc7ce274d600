package expiration

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepBatch = 500

type OverdueLister interface {
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// Sweeper periodically re-enqueues unpaid payments past their deadline. It
// recovers jobs that never reached the queue or were lost with it.
type Sweeper struct {
	cron     *cron.Cron
	spec     string
	payments OverdueLister
	queue    Queue
	now      func() time.Time
	loggerf  func(format string, args ...interface{})
}

func NewSweeper(payments OverdueLister, queue Queue, spec string, loggerf func(format string, args ...interface{})) *Sweeper {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Sweeper{
		cron:     cron.New(cron.WithSeconds()),
		spec:     spec,
		payments: payments,
		queue:    queue,
		now:      time.Now,
		loggerf:  loggerf,
	}
}

func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.loggerf("level=error msg=expiration sweep failed err=%v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.loggerf("level=info msg=expiration sweeper started spec=%q", s.spec)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.loggerf("level=info msg=expiration sweeper stopped")
}

// Sweep enqueues every overdue payment that has no live or buried job to run
// now and returns how many were enqueued. Jobs waiting out a retry backoff keep
// their schedule and attempt count.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	uuids, err := s.payments.ListOverdue(ctx, now, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list overdue payments: %w", err)
	}

	enqueued := 0
	for _, id := range uuids {
		added, err := s.queue.EnqueueIfAbsent(ctx, id, now)
		if err != nil {
			s.loggerf("level=error msg=failed to enqueue overdue payment uuid=%s err=%v", id, err)
			continue
		}
		if added {
			enqueued++
		}
	}
	if enqueued > 0 {
		s.loggerf("level=info msg=overdue payments enqueued count=%d", enqueued)
	}
	return enqueued, nil
}
