package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/tracing"
)

const submissionKeySegment = ":submission:"

// releaseScript deletes the key only while it still holds the caller's token, so a
// lock that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLock struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, prefix string, ttl time.Duration) domain.SubmissionLock {
	return &redisLock{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (l *redisLock) key(scopeKey string) string {
	return l.prefix + submissionKeySegment + scopeKey
}

func (l *redisLock) Acquire(ctx context.Context, scopeKey string) (string, error) {
	key := l.key(scopeKey)
	ctx, span := tracing.StartLockSpan(ctx, "acquire", key)

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRedisConnection, err)
		tracing.EndWithError(span, err)
		return "", err
	}
	if !ok {
		tracing.EndWithError(span, domain.ErrSubmissionInProgress)
		return "", domain.ErrSubmissionInProgress
	}

	span.End()
	return token, nil
}

func (l *redisLock) Release(ctx context.Context, scopeKey, token string) error {
	key := l.key(scopeKey)
	ctx, span := tracing.StartLockSpan(ctx, "release", key)

	released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("%w: %w", ErrRedisConnection, err)
		tracing.EndWithError(span, err)
		return err
	}
	if released == 0 {
		tracing.EndWithError(span, domain.ErrLockNotHeld)
		return domain.ErrLockNotHeld
	}

	span.End()
	return nil
}
