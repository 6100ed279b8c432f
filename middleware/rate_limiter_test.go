package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

func testLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		KeyPrefix: "rl_create_user_test",
		Points:    5,
		Window:    300 * time.Second,
		Block:     600 * time.Second,
	}
}

func limiterApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Post("/create", RateLimiter(rdb, testLimiterOptions()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, mr
}

func postForm(t *testing.T, app *fiber.App, email string) *http.Response {
	t.Helper()
	var body string
	if email != "" {
		body = "email=" + email
	}
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func TestRateLimiter_AllowsWithinBudgetAndSetsHeaders(t *testing.T) {
	app, _ := limiterApp(t)

	for i := 1; i <= 5; i++ {
		resp := postForm(t, app, "asha@gmail.com")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, resp.StatusCode)
		}
		if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "5" {
			t.Errorf("Request %d: expected X-RateLimit-Limit 5, got %q", i, limit)
		}
		wantRemaining := strconv.Itoa(5 - i)
		if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != wantRemaining {
			t.Errorf("Request %d: expected X-RateLimit-Remaining %s, got %q", i, wantRemaining, remaining)
		}
		reset, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Reset"))
		if err != nil || reset <= 0 || reset > 300 {
			t.Errorf("Request %d: bad X-RateLimit-Reset %q", i, resp.Header.Get("X-RateLimit-Reset"))
		}
	}
}

func TestRateLimiter_SixthRequestBlocked(t *testing.T) {
	app, _ := limiterApp(t)

	for i := 0; i < 5; i++ {
		postForm(t, app, "asha@gmail.com")
	}

	resp := postForm(t, app, "asha@gmail.com")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on the 6th request, got %d", resp.StatusCode)
	}
	retryAfter, err := strconv.Atoi(resp.Header.Get(fiber.HeaderRetryAfter))
	if err != nil || retryAfter <= 0 {
		t.Errorf("Expected Retry-After > 0, got %q", resp.Header.Get(fiber.HeaderRetryAfter))
	}

	// The block persists on subsequent attempts.
	resp = postForm(t, app, "asha@gmail.com")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429 while blocked, got %d", resp.StatusCode)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	app, _ := limiterApp(t)

	for i := 0; i < 6; i++ {
		postForm(t, app, "asha@gmail.com")
	}

	resp := postForm(t, app, "someone.else@gmail.com")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("A different email must have its own budget, got %d", resp.StatusCode)
	}
}

func TestRateLimiter_BlockExpires(t *testing.T) {
	app, mr := limiterApp(t)

	for i := 0; i < 6; i++ {
		postForm(t, app, "asha@gmail.com")
	}

	// Past the block and the window, the budget is fresh.
	mr.FastForward(601 * time.Second)

	resp := postForm(t, app, "asha@gmail.com")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 after the block expired, got %d", resp.StatusCode)
	}
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "4" {
		t.Errorf("Expected a fresh budget (remaining 4), got %q", remaining)
	}
}

func TestRateLimiter_FallsBackToIPWithoutEmail(t *testing.T) {
	app, _ := limiterApp(t)

	var last *http.Response
	for i := 0; i < 6; i++ {
		last = postForm(t, app, "")
	}
	if last.StatusCode != http.StatusTooManyRequests {
		t.Errorf("IP-keyed requests must share one budget, got %d", last.StatusCode)
	}
}

func TestRateLimiter_CounterAlwaysCarriesTTL(t *testing.T) {
	app, mr := limiterApp(t)

	// A counter key that somehow lost its TTL must regain the window
	// expiry on the next increment instead of pinning the key's budget
	// exhausted forever.
	key := "rl_create_user_test:asha@gmail.com"
	if err := mr.Set(key, "3"); err != nil {
		t.Fatalf("Could not seed counter: %v", err)
	}

	resp := postForm(t, app, "asha@gmail.com")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "1" {
		t.Errorf("Expected remaining 1 after the 4th attempt, got %q", remaining)
	}
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Errorf("Counter must carry the window TTL, got %v", ttl)
	}

	// Once the window lapses the budget is fresh again.
	mr.FastForward(301 * time.Second)
	resp = postForm(t, app, "asha@gmail.com")
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "4" {
		t.Errorf("Expected a fresh budget after the window lapsed, got %q", remaining)
	}
}

func TestRateLimiter_RejectsOnRedisError(t *testing.T) {
	app, mr := limiterApp(t)
	mr.Close()

	resp := postForm(t, app, "asha@gmail.com")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429 when Redis is unreachable, got %d", resp.StatusCode)
	}
	if retry := resp.Header.Get(fiber.HeaderRetryAfter); retry == "" {
		t.Error("Expected a Retry-After header when Redis is unreachable")
	}
}
