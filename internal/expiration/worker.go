package expiration

import (
	"context"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

	"golang.org/x/sync/errgroup"
)

type Expirer interface {
	ExpirePayment(ctx context.Context, uuid string) (bool, error)
}

type WorkerConfig struct {
	Concurrency  int
	BatchSize    int
	MaxAttempts  int
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	PollInterval time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.BatchSize < 1 {
		c.BatchSize = c.Concurrency * 8
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffMax < c.BackoffBase {
		c.BackoffMax = c.BackoffBase
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	return c
}

// Worker claims due jobs and expires the matching payments.
type Worker struct {
	queue   Queue
	expirer Expirer
	cfg     WorkerConfig
	now     func() time.Time
	loggerf func(format string, args ...interface{})
}

func NewWorker(queue Queue, expirer Expirer, cfg WorkerConfig, loggerf func(format string, args ...interface{})) *Worker {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Worker{
		queue:   queue,
		expirer: expirer,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		loggerf: loggerf,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.loggerf("level=info msg=expiration worker started concurrency=%d max_attempts=%d", w.cfg.Concurrency, w.cfg.MaxAttempts)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.tick(ctx)
		select {
		case <-ctx.Done():
			w.loggerf("level=info msg=expiration worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if n, err := w.queue.RequeueStale(ctx, w.now()); err != nil {
		w.loggerf("level=error msg=failed to requeue stale expiration jobs err=%v", err)
	} else if n > 0 {
		w.loggerf("level=info msg=requeued stale expiration jobs count=%d", n)
	}

	for ctx.Err() == nil {
		n, err := w.RunOnce(ctx)
		if err != nil {
			w.loggerf("level=error msg=failed to claim expiration jobs err=%v", err)
			return
		}
		if n < w.cfg.BatchSize {
			return
		}
	}
}

// RunOnce claims one batch of due jobs, handles them with at most
// Concurrency goroutines and returns the batch size.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	jobs, err := w.queue.Claim(ctx, w.now(), w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			w.handle(gctx, job)
			return nil
		})
	}
	_ = g.Wait()
	return len(jobs), nil
}

func (w *Worker) handle(ctx context.Context, job Job) {
	expired, err := w.expirer.ExpirePayment(ctx, job.Key)
	switch {
	case err == nil:
		if expired {
			w.loggerf("level=info msg=payment expired by worker uuid=%s attempt=%d", job.Key, job.Attempt)
		}
		w.ack(ctx, job.Key)
	case apperr.KindOf(err) != apperr.KindInternal:
		w.loggerf("level=error msg=expiration job dropped uuid=%s attempt=%d err=%v", job.Key, job.Attempt, err)
		w.ack(ctx, job.Key)
	case job.Attempt >= w.cfg.MaxAttempts:
		w.loggerf("level=error msg=expiration job dead-lettered uuid=%s attempts=%d err=%v", job.Key, job.Attempt, err)
		if berr := w.queue.Bury(ctx, job.Key); berr != nil {
			w.loggerf("level=error msg=failed to bury expiration job uuid=%s err=%v", job.Key, berr)
		}
	default:
		delay := Backoff(w.cfg.BackoffBase, w.cfg.BackoffMax, job.Attempt)
		w.loggerf("level=error msg=expiration job failed uuid=%s attempt=%d retry_in=%s err=%v", job.Key, job.Attempt, delay, err)
		if rerr := w.queue.Retry(ctx, job.Key, w.now().Add(delay)); rerr != nil {
			w.loggerf("level=error msg=failed to reschedule expiration job uuid=%s err=%v", job.Key, rerr)
		}
	}
}

func (w *Worker) ack(ctx context.Context, key string) {
	if err := w.queue.Ack(ctx, key); err != nil {
		w.loggerf("level=error msg=failed to ack expiration job uuid=%s err=%v", key, err)
	}
}

// Backoff is base * 2^(attempt-1), capped at limit.
func Backoff(base, limit time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit || d <= 0 {
			return limit
		}
	}
	return min(d, limit)
}
