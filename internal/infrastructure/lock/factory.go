package lock

import (
	"fmt"

	appinv "github.com/erp/warehouse/internal/application/inventory"
	"github.com/erp/warehouse/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory builds the configured product locker
type Factory struct {
	lockConfig            config.LockConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to process-local locks.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new Factory
func NewFactory(lockCfg config.LockConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		lockConfig:            lockCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the locker and a function that frees its resources
func (f *Factory) Create() (appinv.ProductLocker, func() error, error) {
	noop := func() error { return nil }
	if f.lockConfig.Backend != config.LockBackendRedis {
		f.logger.Info("using in-memory product locks")
		return NewInMemoryLocker(f.lockConfig.WaitLimit), noop, nil
	}

	locker, err := NewRedisLocker(f.redisConfig, f.lockConfig, f.logger)
	if err == nil {
		f.logger.Info("using Redis product locks", zap.String("addr", f.redisConfig.Addr()))
		return locker, locker.Close, nil
	}
	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for product locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory product locks; "+
		"approvals are only serialized within this process",
		zap.Error(err),
	)
	return NewInMemoryLocker(f.lockConfig.WaitLimit), noop, nil
}

var (
	_ appinv.ProductLocker = (*InMemoryLocker)(nil)
	_ appinv.ProductLocker = (*RedisLocker)(nil)
)
