package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/smsender/smsender/internal/auth"
	"github.com/smsender/smsender/internal/directory"
)

// LocalsEmail is the Locals key holding the authenticated email claim.
const LocalsEmail = "auth_email"

// RequireAuth validates the bearer token and attaches the email claim to the
// request. Missing, malformed or expired tokens terminate the request with 401.
func RequireAuth(tokens *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized access")
		}
		email, err := tokens.Verify(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized access")
		}
		c.Locals(LocalsEmail, email)
		return c.Next()
	}
}

// RequireRole checks the authenticated identity against the directory and
// terminates with 403 unless it carries the required role. Runs after
// RequireAuth; one directory lookup per request.
func RequireRole(ids *directory.Service, role directory.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals(LocalsEmail).(string)
		if email == "" {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized access")
		}
		ok, err := ids.HasRole(c.UserContext(), email, role)
		if err != nil {
			return err
		}
		if !ok {
			return fiber.NewError(http.StatusForbidden, "forbidden")
		}
		return c.Next()
	}
}

// AuthenticatedEmail returns the email claim attached by RequireAuth.
func AuthenticatedEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalsEmail).(string)
	return email
}
