package heuristics

import (
	"fmt"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/database"
)

const redisKeyPrefix = "heuristics:"

// OpenKV builds the backend named by cfg.HeuristicsBackend. The returned
// close function releases any connection it opened.
func OpenKV(cfg *config.Config) (KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.HeuristicsBackend {
	case "", "file":
		kv, err := NewFileKV(cfg.HeuristicsDir)
		return kv, noop, err
	case "memory":
		return NewMemoryKV(), noop, nil
	case "redis":
		client := database.NewRedis(cfg)
		return NewRedisKV(client, redisKeyPrefix), client.Close, nil
	case "postgres":
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			return nil, noop, err
		}
		kv := NewPostgresKV(db)
		if err := kv.AutoMigrate(); err != nil {
			database.ClosePostgres(db)
			return nil, noop, fmt.Errorf("migrating heuristics table: %w", err)
		}
		return kv, func() error { return database.ClosePostgres(db) }, nil
	default:
		return nil, noop, fmt.Errorf("unknown heuristics backend %q", cfg.HeuristicsBackend)
	}
}
