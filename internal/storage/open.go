package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chat-translator/internal/config"
)

const redisKeyPrefix = "chat-translator:"

// Open builds the document store selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFile, "":
		return NewFileStore(cfg.DataDir)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisKeyPrefix)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath, log.Named("sqlite"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
