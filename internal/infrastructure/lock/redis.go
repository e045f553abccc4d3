package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/warehouse/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "warehouse:lock:product:"

// releaseScript deletes the key only while it still holds our token, so a lock that expired
// and was taken by someone else is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker locks products across processes sharing one Redis
type RedisLocker struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	retryDelay time.Duration
	waitLimit  time.Duration
	logger     *zap.Logger
}

// NewRedisLocker connects to Redis and verifies the connection
func NewRedisLocker(redisCfg config.RedisConfig, lockCfg config.LockConfig, logger *zap.Logger) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLockerWithClient(client, "", lockCfg, logger), nil
}

// NewRedisLockerWithClient wraps an existing client
func NewRedisLockerWithClient(client *redis.Client, keyPrefix string, lockCfg config.LockConfig, logger *zap.Logger) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := lockCfg.RetryDelay
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{
		client:     client,
		keyPrefix:  keyPrefix,
		ttl:        lockCfg.TTL,
		retryDelay: retry,
		waitLimit:  lockCfg.WaitLimit,
		logger:     logger,
	}
}

// Acquire locks every product or none. Locks expire after the configured TTL if the holder dies.
func (l *RedisLocker) Acquire(ctx context.Context, productIDs []uuid.UUID) (func(), error) {
	if l.waitLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitLimit)
		defer cancel()
	}

	token := uuid.NewString()
	ids := sortedUnique(productIDs)
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		key := l.keyPrefix + id.String()
		if err := l.lock(ctx, id, key, token); err != nil {
			l.release(keys, token)
			return nil, err
		}
		keys = append(keys, key)
	}

	return func() { l.release(keys, token) }, nil
}

func (l *RedisLocker) lock(ctx context.Context, id uuid.UUID, key, token string) error {
	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return busyError(id)
			}
			return fmt.Errorf("failed to acquire product lock: %w", err)
		}
		if ok {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return busyError(id)
		}
	}
}

func (l *RedisLocker) release(keys []string, token string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release product lock", zap.String("key", key), zap.Error(err))
		}
	}
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
