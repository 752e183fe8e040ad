// Gente Networking | 2026
// lock.go

package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gente-networking/backend/internal/core"
)

// Locker serializes recalculations per member. Two concurrent runs for the
// same member must never both read the same points-before; the loser gets
// a conflict instead of a double-applied delta.
type Locker interface {
	Acquire(ctx context.Context, memberID string) (func(), error)
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLocker{client: client, ttl: ttl}
}

// Release only deletes the key when it still holds our token, so an expired
// lock cannot release a successor's.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

func (l *redisLocker) Acquire(
	ctx context.Context,
	memberID string,
) (func(), error) {
	key := "scoring:lock:" + memberID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire scoring lock: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf(
			"recalculation already in progress for member %s: %w",
			memberID,
			core.ErrConflict,
		)
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		//nolint:errcheck // best-effort release; TTL reclaims the lock anyway
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}

	return release, nil
}

// NopLocker is used in tests and in deployments without Redis; the
// database-level points compare still prevents lost updates.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
