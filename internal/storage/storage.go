package storage

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"storefront/internal/config"
)

// Store is the key-value persistence port shared by the cart, the response
// cache and the session state. Missing keys report ok=false, never an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ErrUnknownDriver is returned by Open for an unrecognized driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Open selects and initializes a Store from configuration. Supported drivers
// are "memory", "file", "redis" and "postgres".
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.StorageFilePath)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(client), nil
	case "postgres":
		return NewPostgres(ctx, cfg.DBConnString, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StorageDriver)
	}
}
