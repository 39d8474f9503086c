package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ TurnGuard = &RedisGuard{}

// releaseScript deletes the lock only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares turn locks between API and bot instances
type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, prefix string, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (g *RedisGuard) Acquire(ctx context.Context, sessionID string) (Release, error) {
	key := g.prefix + sessionID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire turn lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, entity.ErrTurnInProgress)
	}

	return func() {
		// The request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err(); err != nil {
			ctxzap.Warn(ctx, "failed to release turn lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
