package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"

	"paediprime/backend/config"
)

// createUserKeyPrefix namespaces the registration endpoint's limiter keys.
const createUserKeyPrefix = "rl_create_user"

// defaultRetryAfter is used when the remaining block time cannot be read.
const defaultRetryAfter = 60 * time.Second

// RateLimiterOptions configures one limiter instance: Points attempts per
// Window, then Block once the budget is exhausted.
type RateLimiterOptions struct {
	KeyPrefix string
	Points    int
	Window    time.Duration
	Block     time.Duration
}

// CreateUserLimiter builds the limiter guarding POST /api/user/create with
// the configured budget (default 5 attempts per 300s, 600s block).
func CreateUserLimiter(cfg *config.Config, rdb *redis.Client) fiber.Handler {
	return RateLimiter(rdb, RateLimiterOptions{
		KeyPrefix: createUserKeyPrefix,
		Points:    cfg.RateLimitPoints,
		Window:    time.Duration(cfg.RateLimitWindowSecs) * time.Second,
		Block:     time.Duration(cfg.RateLimitBlockSecs) * time.Second,
	})
}

// RateLimiter enforces a per-identifier attempt budget backed by Redis.
// The identifier is the lowercased email form field, falling back to the
// client IP. Allowed requests carry X-RateLimit-* headers; rejected ones
// get 429 with Retry-After. Any Redis error rejects rather than letting
// an attempt through unmetered.
func RateLimiter(rdb *redis.Client, opts RateLimiterOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := limiterKey(c)

		remaining, reset, retryAfter, allowed := consume(c.Context(), rdb, opts, key)
		if !allowed {
			log.Printf("[RateLimiter] %s - BLOCKED", key)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retryAfter.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Try again in %d seconds.", int(retryAfter.Seconds())),
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(opts.Points))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(int(reset.Seconds())))

		log.Printf("[RateLimiter] %s - remaining: %d", key, remaining)
		return c.Next()
	}
}

// limiterKey resolves the requester identifier.
func limiterKey(c *fiber.Ctx) string {
	if email := strings.ToLower(strings.TrimSpace(c.FormValue("email"))); email != "" {
		return email
	}
	return c.IP()
}

// consumeScript increments the counter and guarantees it carries the
// window TTL in the same Redis step, so no crash can leave an immortal
// counter behind. Returns {count, remaining ttl in ms}.
var consumeScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// consume spends one point for key. It returns the remaining budget, the
// time until the window resets, and, when the request is rejected, how
// long the caller must wait.
func consume(ctx context.Context, rdb *redis.Client, opts RateLimiterOptions, key string) (remaining int, reset, retryAfter time.Duration, allowed bool) {
	counterKey := opts.KeyPrefix + ":" + key
	blockKey := opts.KeyPrefix + ":block:" + key

	// An active block short-circuits everything.
	blockTTL, err := rdb.TTL(ctx, blockKey).Result()
	if err != nil {
		log.Printf("[RateLimiter] redis error for %s: %v", key, err)
		return 0, 0, defaultRetryAfter, false
	}
	if blockTTL > 0 {
		return 0, 0, blockTTL, false
	}

	res, err := consumeScript.Run(ctx, rdb, []string{counterKey}, opts.Window.Milliseconds()).Result()
	if err != nil {
		log.Printf("[RateLimiter] redis error for %s: %v", key, err)
		return 0, 0, defaultRetryAfter, false
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		log.Printf("[RateLimiter] unexpected script reply for %s: %v", key, res)
		return 0, 0, defaultRetryAfter, false
	}
	count, _ := vals[0].(int64)
	counterTTLMs, _ := vals[1].(int64)

	if count > int64(opts.Points) {
		// Budget exhausted: block the key for the full block duration.
		if err := rdb.Set(ctx, blockKey, "1", opts.Block).Err(); err != nil {
			log.Printf("[RateLimiter] redis error for %s: %v", key, err)
			return 0, 0, defaultRetryAfter, false
		}
		return 0, 0, opts.Block, false
	}

	reset = time.Duration(counterTTLMs) * time.Millisecond
	if reset <= 0 {
		reset = opts.Window
	}
	return opts.Points - int(count), reset, 0, true
}
