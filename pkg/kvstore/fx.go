package kvstore

import (
	"scaleplus-loyalty/pkg/config"
	"scaleplus-loyalty/pkg/db"
	appredis "scaleplus-loyalty/pkg/redis"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Module wires the gateway selected by STORAGE.BACKEND together with the
// infrastructure it needs.
func Module(cfg *config.Config) fx.Option {
	switch cfg.Storage.Backend {
	case config.BackendDatabase:
		return fx.Module("kvstore.database",
			db.Module,
			fx.Provide(
				NewDatabase,
				func(d *Database) Gateway { return d },
				func(d *Database) Pinger { return d },
			),
		)
	case config.BackendRedis:
		return fx.Module("kvstore.redis",
			appredis.Module,
			fx.Provide(
				func(rdb *redis.Client) *Redis { return NewRedis(rdb) },
				func(r *Redis) Gateway { return r },
				func(r *Redis) Pinger { return r },
			),
		)
	default:
		return fx.Module("kvstore.memory",
			fx.Provide(func() Gateway { return NewMemory() }),
		)
	}
}
