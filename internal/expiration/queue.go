// Package expiration runs payment deadlines as delayed jobs keyed by payment
// uuid. A job is claimed with a visibility deadline, acknowledged when done
// and put back with a later run time when it must be retried.
package expiration

import (
	"context"
	"time"
)

// Job is a claimed unit of work. Attempt counts claims of Key since it was
// last enqueued, starting at 1.
type Job struct {
	Key     string
	Attempt int
}

type Queue interface {
	// Enqueue schedules key at runAt. A pending job with the same key is
	// replaced and its attempt count reset.
	Enqueue(ctx context.Context, key string, runAt time.Time) error
	// EnqueueIfAbsent schedules key at runAt unless it is already pending,
	// claimed or buried. Attempt counts of live jobs are left alone. It
	// reports whether key was added.
	EnqueueIfAbsent(ctx context.Context, key string, runAt time.Time) (bool, error)
	// Claim takes up to limit jobs due at now. Claimed jobs are invisible to
	// other claimers until now plus the queue's visibility timeout.
	Claim(ctx context.Context, now time.Time, limit int) ([]Job, error)
	Ack(ctx context.Context, key string) error
	Retry(ctx context.Context, key string, runAt time.Time) error
	// Bury drops a claimed job that ran out of attempts. A buried key is only
	// scheduled again by Enqueue.
	Bury(ctx context.Context, key string) error
	// RequeueStale returns claims whose visibility deadline passed to the
	// ready set and reports how many were moved.
	RequeueStale(ctx context.Context, now time.Time) (int, error)
}
