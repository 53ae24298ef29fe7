package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tixbridge/internal/shared/config"
	"tixbridge/pkg/logger"
)

// DB holds the shared backing connections. Redis backs rate limiting only;
// listings and reservations are never stored.
type DB struct {
	Redis *redis.Client
	log   *logger.Logger
}

// InitDB opens the connections enabled in cfg
func InitDB(cfg *config.Config, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	db := &DB{log: log.WithComponent("database")}

	if !cfg.Redis.Enabled {
		db.log.Info("Redis disabled")
		return db, nil
	}

	rdb, err := initRedis(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	db.Redis = rdb
	db.log.Info("Redis connected successfully", "addr", cfg.Redis.Addr)
	return db, nil
}

// NewWithRedis wraps an existing client
func NewWithRedis(client *redis.Client, log *logger.Logger) *DB {
	if log == nil {
		log = logger.GetDefault()
	}
	return &DB{Redis: client, log: log.WithComponent("database")}
}

// initRedis initializes Redis connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	// Redis client options
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,

		// Connection pool settings
		PoolSize:     10,
		MinIdleConns: 2,

		// Timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	rdb := redis.NewClient(opts)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// Close closes all connections
func (db *DB) Close() error {
	if db == nil || db.Redis == nil {
		return nil
	}
	if err := db.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close Redis: %w", err)
	}
	db.log.Info("All connections closed")
	return nil
}

// HealthCheck pings every open connection
func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.Redis == nil {
		return nil
	}
	if err := db.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetRedis returns the Redis client, nil when Redis is disabled
func (db *DB) GetRedis() *redis.Client {
	if db == nil {
		return nil
	}
	return db.Redis
}
