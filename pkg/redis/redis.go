package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// KV is the blob get/set/remove surface cart persistence rides on.
type KV struct {
	client *redis.Client
}

// NewKV wraps the global client. Init must have been called.
func NewKV() *KV {
	return &KV{client: GetClient()}
}

// Get fetches a serialized blob; found is false when the key does not exist.
func (kv *KV) Get(ctx context.Context, key string) (value string, found bool, err error) {
	val, err := kv.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a serialized blob. A zero TTL persists the key indefinitely.
func (kv *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return kv.client.Set(ctx, key, value, ttl).Err()
}

// Remove deletes a key. Removing a missing key is not an error.
func (kv *KV) Remove(ctx context.Context, key string) error {
	return kv.client.Del(ctx, key).Err()
}
