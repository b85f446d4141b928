package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("platform/cache: lock held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements short-lived mutual exclusion across processes with SET NX.
type Locker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLocker returns a Locker; a nil client yields a no-op locker.
func NewLocker(client *redis.Client, logger *slog.Logger) *Locker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locker{client: client, logger: logger}
}

func noopRelease(context.Context) error { return nil }

// Acquire takes key for ttl and returns the release func. When Redis cannot
// be reached the lock degrades to a no-op and callers fall back on their
// database row locks. Only a lock owned by someone else is an error.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if l == nil || l.client == nil {
		return noopRelease, nil
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("platform/cache: acquire %s: %w", key, ctxErr)
		}
		l.logger.Warn("lock unavailable, continuing without it", slog.String("key", key), slog.Any("error", err))
		return noopRelease, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, key)
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
