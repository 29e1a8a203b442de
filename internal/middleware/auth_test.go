package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smsender/smsender/internal/auth"
	"github.com/smsender/smsender/internal/config"
	"github.com/smsender/smsender/internal/directory"
)

func setupGate(t *testing.T) (*fiber.App, *auth.Service, *directory.Service) {
	t.Helper()
	ids := directory.NewService(directory.NewMemoryRepository(), time.Second)
	tokens := auth.NewService(config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}, ids)

	app := fiber.New()
	app.Get("/protected", RequireAuth(tokens), func(c *fiber.Ctx) error {
		return c.SendString(AuthenticatedEmail(c))
	})
	app.Get("/admin-only", RequireAuth(tokens), RequireRole(ids, directory.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, tokens, ids
}

func registerAndIssue(t *testing.T, tokens *auth.Service, ids *directory.Service, email string) (directory.Identity, string) {
	t.Helper()
	identity, err := ids.Register(context.Background(), email, "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := tokens.Issue(context.Background(), email, "hunter22")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return identity, token
}

func TestRequireAuthMissingToken(t *testing.T) {
	app, _, _ := setupGate(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	app, _, _ := setupGate(t)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	app, tokens, ids := setupGate(t)
	_, token := registerAndIssue(t, tokens, ids, "a@x.com")

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// Wrong role must produce a clean 403, not a broken response write.
func TestRequireRoleForbidden(t *testing.T) {
	app, tokens, ids := setupGate(t)
	_, token := registerAndIssue(t, tokens, ids, "a@x.com")

	req := httptest.NewRequest(fiber.MethodGet, "/admin-only", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRequireRoleAdmitsAdmin(t *testing.T) {
	app, tokens, ids := setupGate(t)
	identity, token := registerAndIssue(t, tokens, ids, "root@x.com")

	if err := ids.SetRole(context.Background(), identity.ID, directory.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/admin-only", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
