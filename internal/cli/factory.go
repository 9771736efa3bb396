package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// createLogger configures the application logger.
// Chat keeps stderr quiet unless debugging; servers log at info.
func createLogger(debug, quiet bool, opts ...logging.Option) *slog.Logger {
	switch {
	case debug:
		return logging.New(slog.LevelDebug, opts...)
	case quiet:
		return logging.NewNop()
	default:
		return logging.New(slog.LevelInfo, opts...)
	}
}

// loggerFor is createLogger with the configured redaction patterns applied.
func loggerFor(debug, quiet bool, redact []string) (*slog.Logger, error) {
	r, err := logging.NewRedactor(redact)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return createLogger(debug, quiet), nil
	}
	return createLogger(debug, quiet, logging.WithRedactor(r)), nil
}

// engineConfig selects the engine features a command needs.
type engineConfig struct {
	tree    string
	debug   bool
	strict  bool
	metrics *observability.Metrics
}

// createEngine loads the tree with the standard hooks: dialog event logs in
// debug mode and counters when metrics is set.
func createEngine(ec engineConfig, logger *slog.Logger) (*arbor.Engine, error) {
	var hooks []domain.DialogHooks
	if ec.debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	if ec.metrics != nil {
		hooks = append(hooks, ec.metrics.Hooks())
	}

	opts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithHooks(domain.ComposeHooks(hooks...)),
	}
	if ec.strict {
		opts = append(opts, arbor.WithStrictValidation())
	}

	engine, err := arbor.New(ec.tree, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing arbor: %w", err)
	}
	return engine, nil
}

// storeMiddlewares returns the configured store wrappers: encryption only.
// Redaction applies to logs, never to stored dialogs.
func storeMiddlewares(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if cfg.EncryptionKey != "" {
		active, err := middleware.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		encCfg := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.EncryptionFallbackKeys {
			key, err := middleware.DecodeKey(k)
			if err != nil {
				return nil, err
			}
			encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(encCfg))
	}

	return mws, nil
}

// createStore builds the configured live-session store, wrapped in the
// configured middlewares. closeFn releases backend connections.
func createStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store ports.SessionStore, locker ports.DistributedLocker, closeFn func() error, err error) {
	closeFn = func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.NewStore(cfg.SessionsDir)
	case config.StoreRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.SessionTTL),
			redis.WithPrefix(cfg.Redis.Prefix),
		)
		if err := rs.Client().Ping(ctx).Err(); err != nil {
			rs.Close()
			return nil, nil, nil, fmt.Errorf("redis at %s is unreachable: %w", cfg.Redis.Addr, err)
		}
		store = rs
		locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
		closeFn = rs.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	logger.Debug("session store ready", "store", cfg.Store, "middlewares", len(mws))

	return middleware.Chain(store, mws...), locker, closeFn, nil
}

// createManager wires the engine to the configured store.
func createManager(ctx context.Context, cfg *config.Config, engine *arbor.Engine, logger *slog.Logger) (*session.Manager, func() error, error) {
	store, locker, closeFn, err := createStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(engine, store, opts...), closeFn, nil
}
