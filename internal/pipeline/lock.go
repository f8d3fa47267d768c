package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"gapradar.app/engine/common/id"
)

// releaseScript deletes the lock only when the caller still holds it, so a
// runner that outlived its TTL cannot release a successor's lease.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Lock is a single-holder lease over the pipeline, backed by SET NX PX.
// If a holder crashes, the TTL expires the lease on its own.
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{client: client, key: key, ttl: ttl}
}

// Acquire takes the lease. Returns a release token, or ("", false) when
// another runner holds it.
func (l *Lock) Acquire(ctx context.Context) (string, bool, error) {
	token := strconv.FormatInt(id.New(), 10)

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquiring pipeline lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lease back if we still hold it.
func (l *Lock) Release(ctx context.Context, token string) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("releasing pipeline lock: %w", err)
	}
	return nil
}
