package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/config"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/azblob"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/postgres"
	redisbucket "github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/redis"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/store"
)

// OpenBucket connects the configured backend. The returned close func releases
// its connections and is never nil.
func OpenBucket(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (objectstore.Bucket, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendAzblob:
		b, err := azblob.NewFromConnectionString(cfg.AzureConnString, cfg.AzureContainer)
		if err != nil {
			return nil, noop, err
		}
		if err := b.EnsureContainer(ctx); err != nil {
			return nil, noop, fmt.Errorf("ensure container %q: %w", cfg.AzureContainer, err)
		}
		log.Info("storage ready", zap.String("backend", cfg.Backend), zap.String("container", cfg.AzureContainer))
		return b, noop, nil

	case config.BackendPostgres:
		pool, err := OpenDB(ctx, DBOptions{DSN: cfg.DatabaseDSN})
		if err != nil {
			return nil, noop, err
		}
		b := postgres.New(pool)
		if err := b.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("migrate: %w", err)
		}
		log.Info("storage ready", zap.String("backend", cfg.Backend))
		return b, pool.Close, nil

	case config.BackendRedis:
		client, err := OpenRedis(ctx, RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, noop, err
		}
		log.Info("storage ready", zap.String("backend", cfg.Backend), zap.String("addr", cfg.RedisAddr))
		return redisbucket.New(client, ""), func() { _ = client.Close() }, nil

	case config.BackendMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return objectstore.NewMemory(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// NewStore wires the project store with metrics registered on reg.
func NewStore(bucket objectstore.Bucket, cfg config.StoreConfig, log *zap.Logger, reg prometheus.Registerer) *store.Store {
	return store.New(bucket, store.Options{
		Timeout:   cfg.Timeout,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Logger:    log.Named("store"),
		Metrics:   store.NewMetrics(reg),
	})
}
