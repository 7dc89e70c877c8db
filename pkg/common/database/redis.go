package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates a client and pings it once. A failed ping is logged,
// not returned: the client reconnects lazily.
func NewRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.L().WithError(err).Error("Failed to connect to Redis")
	} else {
		logger.L().Info("Connected to Redis")
	}

	return client
}
