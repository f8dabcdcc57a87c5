package middleware

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/opshub/opshub/internal/logging"
)

func TestRegistrationRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Get("/accounts/:accountId/register", RegistrationRateLimit(cache, 2, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		if got := status(t, app, "/accounts/a/register", nil); got != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, got)
		}
	}
	if got := status(t, app, "/accounts/a/register", nil); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", got)
	}
	if got := status(t, app, "/accounts/b/register", nil); got != fiber.StatusOK {
		t.Fatalf("other account should not be limited, got %d", got)
	}
	if ttl := mr.TTL(registrationLimitPrefix + "a"); ttl <= 0 {
		t.Fatalf("expected counter expiry, got %v", ttl)
	}

	mr.FastForward(mr.TTL(registrationLimitPrefix + "a"))
	if got := status(t, app, "/accounts/a/register", nil); got != fiber.StatusOK {
		t.Fatalf("expected window reset, got %d", got)
	}
}

func TestRegistrationRateLimitFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer cache.Close()
	mr.Close()

	app := fiber.New()
	app.Get("/accounts/:accountId/register", RegistrationRateLimit(cache, 1, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if got := status(t, app, "/accounts/a/register", nil); got != fiber.StatusOK {
			t.Fatalf("attempt %d: expected fail-open 200 got %d", i+1, got)
		}
	}
}
