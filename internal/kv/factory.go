package kv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/axellelanca/edgelink/internal/config"
)

// Open builds the Store selected by the storage configuration.
func Open(ctx context.Context, conf config.Storage) (Store, error) {
	switch conf.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSQLite, "":
		s, err := OpenSQLite(conf.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if conf.SQLite.AutoMigrate {
			if err := s.Migrate(); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
		return s, nil
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, errors.Wrapf(err, "redis ping %s", conf.Redis.Addr)
		}
		return NewRedisStore(rdb, WithKeyPrefix(conf.Redis.Prefix)), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Driver)
	}
}
