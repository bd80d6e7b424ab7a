package httpcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Tier 2 Redis connection.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisTier2 is a Redis-backed Tier2: a faster durable cache than Postgres
// for deployments that front api_cache with Redis, per spec §6's schema
// note that Tier 2 just needs a durable key-value store behind Tier 1.
type RedisTier2 struct {
	client *redis.Client
}

// NewRedisTier2 opens a pooled Redis client and verifies connectivity.
func NewRedisTier2(cfg RedisConfig) (*RedisTier2, error) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis tier2: connect: %w", err)
	}

	return &RedisTier2{client: client}, nil
}

func (r *RedisTier2) Get(ctx context.Context, key string) ([]byte, bool, error) {
	doc, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis tier2: get %s: %w", key, err)
	}
	return doc, true, nil
}

func (r *RedisTier2) Set(ctx context.Context, key string, doc []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, doc, ttl).Err(); err != nil {
		return fmt.Errorf("redis tier2: set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisTier2) Close() error {
	return r.client.Close()
}
