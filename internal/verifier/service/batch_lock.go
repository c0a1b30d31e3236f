package service

import (
	"context"
	"fmt"
	"time"

	"finfluencer-tracker/pkg/common"
	"finfluencer-tracker/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BatchLocker serialises batch runs across processes. Acquire returns a
// release func, or ErrBatchAlreadyRunning when another run holds the lock.
type BatchLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// releaseScript deletes the lock only if it still carries our token, so a
// run that outlived its TTL cannot free a newer run's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type redisBatchLocker struct {
	client   *redis.Client
	key      string
	ttl      time.Duration
	logger   *logger.Logger
	newToken func() string
}

// NewRedisBatchLocker creates a BatchLocker holding a SET NX lock for ttl.
func NewRedisBatchLocker(client *redis.Client, ttl time.Duration, log *logger.Logger) BatchLocker {
	return &redisBatchLocker{
		client:   client,
		key:      common.RedisKeyVerificationBatchLock,
		ttl:      ttl,
		logger:   log,
		newToken: uuid.NewString,
	}
}

func (l *redisBatchLocker) Acquire(ctx context.Context) (func(), error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire batch lock: %w", err)
	}
	if !ok {
		return nil, ErrBatchAlreadyRunning
	}

	release := func() {
		// The batch context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err(); err != nil {
			l.logger.Error("Failed to release batch lock", logger.ErrorField(err), logger.StringField("key", l.key))
		}
	}
	return release, nil
}
