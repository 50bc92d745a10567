package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

const keyPrefix = "chronos:column:"

// Only the holder of the token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis locks columns across instances with SET NX PX. A holder that dies
// loses the lock once ttl expires.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, poll: 20 * time.Millisecond}
}

func key(c goal.Column) string { return keyPrefix + c.String() }

func (r *Redis) acquire(ctx context.Context, k, token string) error {
	t := time.NewTicker(r.poll)
	defer t.Stop()
	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", k, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (r *Redis) Lock(ctx context.Context, cols ...goal.Column) (func(), error) {
	token := uuid.NewString()
	held := make([]string, 0, len(cols))
	unlock := func() {
		// Release must run even when the request context is already gone.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := releaseScript.Run(rctx, r.client, []string{held[i]}, token).Err(); err != nil {
				config.WithContext(ctx).WithError(err).WithField("key", held[i]).Warn("Failed to release column lock")
			}
		}
	}
	for _, c := range ordered(cols) {
		k := key(c)
		if err := r.acquire(ctx, k, token); err != nil {
			unlock()
			return nil, err
		}
		held = append(held, k)
	}
	return unlock, nil
}
