package memcache_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookstore/internal/config"
	"bookstore/internal/infra"
	"bookstore/internal/repositories"
	mem "bookstore/pkg/memcache"
)

var Module = fx.Provide(
	provideRedisClient, provideCartRepo, provideLocker)

func provideRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	client, err := infra.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := client.Close(); err != nil {
				log.Warn("error closing redis client", zap.Error(err))
			}
			return nil
		},
	})
	return client, nil
}

func provideCartRepo(client *redis.Client, cfg config.Config) repositories.CartRepository {
	return repositories.NewCartRepository(client, cfg.CartTTL)
}

// provideLocker picks the settlement lock backend. "memory" only guards a
// single instance.
func provideLocker(client *redis.Client, cfg config.Config, log *zap.Logger) infra.Locker {
	if cfg.LockBackend == "memory" {
		log.Warn("settlement locks are process-local")
		return mem.NewLocks()
	}
	return infra.NewRedisLocker(client)
}
