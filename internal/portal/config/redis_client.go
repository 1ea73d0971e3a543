package config

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultConnMaxLifetime = time.Hour
)

// NewRedisClient creates the client backing the cursor chain store.
// Zero lifetimes fall back to the package defaults.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	idle, lifetime := cfg.ConnMaxIdleTime, cfg.ConnMaxLifetime
	if idle <= 0 {
		idle = defaultConnMaxIdleTime
	}
	if lifetime <= 0 {
		lifetime = defaultConnMaxLifetime
	}

	opts := &redis.Options{
		Addr:            cfg.GetAddr(),
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: idle,
		ConnMaxLifetime: lifetime,
		ClientName: "consultancy-portal",
	}
	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
