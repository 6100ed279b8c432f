package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"

	"paediprime/backend/config"
)

// Redis holds the client used by the rate limiter and health checks.
var Redis *redis.Client

// ConnectRedis initializes the shared Redis client. A failed ping is
// logged but not fatal: the rate limiter rejects requests on Redis errors,
// so the process can start and recover once Redis comes back.
func ConnectRedis(cfg *config.Config) *redis.Client {
	log.Printf("redis connecting %s:%s", cfg.RedisHost, cfg.RedisPort)

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
	})

	if err := rc.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis ping failed: %v", err)
	} else {
		log.Printf("redis connected %s:%s", cfg.RedisHost, cfg.RedisPort)
	}

	Redis = rc
	return rc
}
