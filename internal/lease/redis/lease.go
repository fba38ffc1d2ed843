// Package redis serializes writers of one property across processes with a
// Redis lease.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/logger"
)

const (
	defaultTTL   = 10 * time.Second
	defaultWait  = 2 * time.Second
	defaultRetry = 50 * time.Millisecond
)

// releaseScript deletes the lease only while it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`

type client interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

type Config struct {
	L      *logger.Logger
	Prefix string
	// TTL expires a lease whose holder died.
	TTL time.Duration
	// Wait is how long Acquire retries before giving up with ErrPropertyBusy.
	Wait  time.Duration
	Retry time.Duration
}

type Locker struct {
	l      *logger.Logger
	client client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func New(conf Config, c client) *Locker {
	locker := &Locker{
		l:      conf.L,
		client: c,
		prefix: conf.Prefix,
		ttl:    conf.TTL,
		wait:   conf.Wait,
		retry:  conf.Retry,
	}

	if locker.ttl <= 0 {
		locker.ttl = defaultTTL
	}

	if locker.wait <= 0 {
		locker.wait = defaultWait
	}

	if locker.retry <= 0 {
		locker.retry = defaultRetry
	}

	return locker
}

func (l *Locker) key(hotelID string) string {
	return l.prefix + "lease:" + hotelID
}

func (l *Locker) Acquire(ctx context.Context, hotelID string) (func(context.Context) error, error) {
	key := l.key(hotelID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("set lease %s: %w", key, err)
		}

		if ok {
			return func(ctx context.Context) error { return l.release(ctx, key, token) }, nil
		}

		if time.Now().Add(l.retry).After(deadline) {
			return nil, fmt.Errorf("hotel %s: %w", hotelID, booking.ErrPropertyBusy)
		}

		timer := time.NewTimer(l.retry)

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("wait for lease %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *Locker) release(ctx context.Context, key, token string) error {
	deleted, err := l.client.Eval(ctx, releaseScript, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("release lease %s: %w", key, err)
	}

	if deleted == 0 {
		l.l.LogWarnf("Lease %s expired before release", key)
	}

	return nil
}
