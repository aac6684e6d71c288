// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"tuwi/config"

	"github.com/go-redis/redis/v8"
)

var (
	// RateLimitClient backs the booking admission counters.
	RateLimitClient *redis.Client
	// EventsClient publishes booking events to the realtime layer.
	EventsClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

// InitRedis creates the Redis clients. A failed ping is logged, not fatal:
// the limiter fails closed on its own when Redis is down.
func InitRedis() {
	RateLimitClient = newRedisClient(config.AppConfig.RedisRateLimitDB)
	EventsClient = newRedisClient(config.AppConfig.RedisEventsDB)

	for name, client := range map[string]*redis.Client{"rate-limit": RateLimitClient, "events": EventsClient} {
		if err := PingRedis(client); err != nil {
			GetLogger().Sugar().Warnf("InitRedis: %s client unreachable: %v", name, err)
		}
	}
}

// PingRedis checks a client with a short timeout.
func PingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}

// GetRateLimitClient returns the Redis client for admission counters.
func GetRateLimitClient() *redis.Client {
	if RateLimitClient == nil {
		InitRedis()
	}
	return RateLimitClient
}

// GetEventsClient returns the Redis client used for realtime events.
func GetEventsClient() *redis.Client {
	if EventsClient == nil {
		InitRedis()
	}
	return EventsClient
}
