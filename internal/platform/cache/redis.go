package cache

import (
	"context"
	"fmt"
	"hapyland/internal/platform/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

func ConnectRedis(ctx context.Context, logger *zap.Logger) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("could not connect to Redis at %s: %w", config.AppConfig.RedisAddr, err)
	}
	logger.Info("connected to Redis", zap.String("addr", config.AppConfig.RedisAddr))
	return nil
}

func CloseRedis(logger *zap.Logger) {
	if RDB != nil {
		if err := RDB.Close(); err != nil {
			logger.Warn("closing Redis", zap.Error(err))
			return
		}
		logger.Info("Redis connection closed")
	}
}
