package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLockerExclusive(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewLocker(client, nil)
	release, err := locker.Acquire(ctx, "finance:year:7:close", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "finance:year:7:close", time.Minute)
	require.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))
	release, err = locker.Acquire(ctx, "finance:year:7:close", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestLockerExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewLocker(client, nil)
	_, err := locker.Acquire(ctx, "finance:period:3:lock", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	release, err := locker.Acquire(ctx, "finance:period:3:lock", time.Second)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestNilLockerIsNoop(t *testing.T) {
	var locker *Locker
	release, err := locker.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
}

func TestLockerDegradesWhenRedisUnreachable(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	var logs bytes.Buffer
	locker := NewLocker(client, slog.New(slog.NewTextHandler(&logs, nil)))
	release, err := locker.Acquire(ctx, "finance:year:9:close", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
	require.Contains(t, logs.String(), "lock unavailable")
	require.Contains(t, logs.String(), "finance:year:9:close")
}

func TestLockerCanceledContextIsAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocker(client, nil).Acquire(ctx, "finance:year:9:close", time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}
