package locksvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teardown"
)

const lockKeyPrefix = "darasa:teardown:"

// releaseScript deletes the lock only if we still hold it, so an expired
// lock re-acquired by another run is never released from under it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker is a short-lived advisory lock keyed by teardown root id.
// The TTL bounds how long a crashed run can block a retry.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ teardown.Locker = (*RedisLocker)(nil)

func NewRedisLocker(conf *core.Config) *RedisLocker {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return &RedisLocker{client: client, ttl: conf.Redis.LockTTL}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	k := lockKeyPrefix + key

	ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "acquiring teardown lock")
	}
	if !ok {
		return nil, teardown.ErrTeardownInProgress
	}

	release := func() {
		// best effort; the TTL reclaims the lock if this fails
		_ = releaseScript.Run(context.Background(), l.client, []string{k}, token).Err()
	}
	return release, nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
