package lock

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our value, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// Redis is a best-effort distributed lock built on SET NX PX. When Redis
// itself fails the lock degrades to the Fallback locker instead of failing
// the request.
type Redis struct {
	Client   *redis.Client
	Prefix   string
	TTL      time.Duration
	Retry    time.Duration
	Fallback *Local
}

// NewRedis returns a Redis locker. ttl bounds how long a crashed holder can
// block others.
func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{Client: rdb, Prefix: prefix, TTL: ttl, Retry: 25 * time.Millisecond, Fallback: NewLocal()}
}

// Lock retries SET NX until it wins or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	value := id.String()
	full := r.Prefix + ":" + key
	for {
		ok, err := r.Client.SetNX(ctx, full, value, r.TTL).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, err
			}
			log.Printf("lock: redis unavailable for %s: %v; using local lock", full, err)
			return r.Fallback.Lock(ctx, key)
		}
		if ok {
			return func() {
				// Release on a fresh context so a cancelled request still frees the key.
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := releaseScript.Run(rctx, r.Client, []string{full}, value).Err(); err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("lock: release %s failed: %v", full, err)
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.Retry):
		}
	}
}
