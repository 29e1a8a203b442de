package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestIssueRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/jwt", IssueRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	issue := func() int {
		req := httptest.NewRequest(fiber.MethodPost, "/jwt", strings.NewReader(`{"email":"a@x.com"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	if code := issue(); code != fiber.StatusOK {
		t.Fatalf("first attempt: expected 200, got %d", code)
	}
	if code := issue(); code != fiber.StatusOK {
		t.Fatalf("second attempt: expected 200, got %d", code)
	}
	if code := issue(); code != fiber.StatusTooManyRequests {
		t.Fatalf("third attempt: expected 429, got %d", code)
	}
}

func TestIssueRateLimitWithoutCache(t *testing.T) {
	app := fiber.New()
	app.Post("/jwt", IssueRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/jwt", strings.NewReader(`{"email":"a@x.com"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected fail-open 200, got %d", resp.StatusCode)
		}
	}
}
