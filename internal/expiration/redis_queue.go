package expiration

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	readyKey      = "payment:expiration:ready"
	processingKey = "payment:expiration:processing"
	attemptsKey   = "payment:expiration:attempts"
	deadKey       = "payment:expiration:dead"
)

// claimScript moves due members from the ready set into the processing set
// scored by their visibility deadline and bumps their attempt counters.
// Returns a flat list of member, attempt pairs.
var claimScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local out = {}
for _, member in ipairs(due) do
  redis.call('ZREM', KEYS[1], member)
  redis.call('ZADD', KEYS[2], ARGV[3], member)
  local n = redis.call('HINCRBY', KEYS[3], member, 1)
  table.insert(out, member)
  table.insert(out, n)
end
return out
`)

// requeueScript returns processing members past their deadline to the ready
// set without overriding a newer pending schedule.
var requeueScript = redis.NewScript(`
local stale = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, member in ipairs(stale) do
  redis.call('ZREM', KEYS[2], member)
  redis.call('ZADD', KEYS[1], 'NX', ARGV[1], member)
end
return #stale
`)

// ackScript drops the claim and forgets the attempt count unless the key was
// enqueued again while it ran.
var ackScript = redis.NewScript(`
redis.call('ZREM', KEYS[2], ARGV[1])
if not redis.call('ZSCORE', KEYS[1], ARGV[1]) then
  redis.call('HDEL', KEYS[3], ARGV[1])
end
return 1
`)

// addIfAbsentScript adds the member to the ready set only when it is not
// pending, claimed or buried.
var addIfAbsentScript = redis.NewScript(`
if redis.call('ZSCORE', KEYS[1], ARGV[2]) or redis.call('ZSCORE', KEYS[2], ARGV[2]) then
  return 0
end
if redis.call('SISMEMBER', KEYS[4], ARGV[2]) == 1 then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// RedisQueue keeps jobs in Redis sorted sets scored by unix milliseconds, so
// pending deadlines survive process restarts.
type RedisQueue struct {
	rdb        redis.UniversalClient
	visibility time.Duration
}

func NewRedisQueue(rdb redis.UniversalClient, visibility time.Duration) *RedisQueue {
	return &RedisQueue{rdb: rdb, visibility: visibility}
}

func (q *RedisQueue) keys() []string {
	return []string{readyKey, processingKey, attemptsKey, deadKey}
}

func (q *RedisQueue) Enqueue(ctx context.Context, key string, runAt time.Time) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, readyKey, redis.Z{Score: score(runAt), Member: key})
		pipe.HDel(ctx, attemptsKey, key)
		pipe.SRem(ctx, deadKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) EnqueueIfAbsent(ctx context.Context, key string, runAt time.Time) (bool, error) {
	added, err := addIfAbsentScript.Run(ctx, q.rdb, q.keys(), score(runAt), key).Int()
	if err != nil {
		return false, fmt.Errorf("enqueue %s: %w", key, err)
	}
	return added == 1, nil
}

func (q *RedisQueue) Claim(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	res, err := claimScript.Run(ctx, q.rdb, q.keys(), score(now), limit, score(now.Add(q.visibility))).Slice()
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	return parseClaim(res)
}

func (q *RedisQueue) Ack(ctx context.Context, key string) error {
	if err := ackScript.Run(ctx, q.rdb, q.keys(), key).Err(); err != nil {
		return fmt.Errorf("ack %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) Retry(ctx context.Context, key string, runAt time.Time) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, processingKey, key)
		pipe.ZAdd(ctx, readyKey, redis.Z{Score: score(runAt), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("retry %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) Bury(ctx context.Context, key string) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, processingKey, key)
		pipe.ZRem(ctx, readyKey, key)
		pipe.HDel(ctx, attemptsKey, key)
		pipe.SAdd(ctx, deadKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("bury %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) RequeueStale(ctx context.Context, now time.Time) (int, error) {
	n, err := requeueScript.Run(ctx, q.rdb, q.keys(), score(now)).Int()
	if err != nil {
		return 0, fmt.Errorf("requeue stale: %w", err)
	}
	return n, nil
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func parseClaim(res []interface{}) ([]Job, error) {
	if len(res)%2 != 0 {
		return nil, fmt.Errorf("claim: odd reply length %d", len(res))
	}
	jobs := make([]Job, 0, len(res)/2)
	for i := 0; i < len(res); i += 2 {
		key, ok := res[i].(string)
		if !ok {
			return nil, fmt.Errorf("claim: unexpected member %T", res[i])
		}
		attempt, ok := res[i+1].(int64)
		if !ok {
			return nil, fmt.Errorf("claim: unexpected attempt %T", res[i+1])
		}
		jobs = append(jobs, Job{Key: key, Attempt: int(attempt)})
	}
	return jobs, nil
}
