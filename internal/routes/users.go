package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smsender/smsender/internal/directory"
	"github.com/smsender/smsender/internal/middleware"
)

type identityResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// RegisterUserRoutes wires the identity directory endpoints. Role mutations
// require an authenticated admin.
func RegisterUserRoutes(r fiber.Router, ids *directory.Service, requireAuth, requireAdmin fiber.Handler) {
	r.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		identity, err := ids.Register(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, directory.ErrAlreadyRegistered) {
				// Idempotent registration: duplicates are informational, not errors.
				return c.Status(http.StatusOK).JSON(fiber.Map{"message": "user already exists"})
			}
			return err
		}
		return c.Status(http.StatusCreated).JSON(toIdentityResponse(identity))
	})

	r.Get("/users", requireAuth, requireAdmin, func(c *fiber.Ctx) error {
		identities, err := ids.List(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]identityResponse, 0, len(identities))
		for _, identity := range identities {
			out = append(out, toIdentityResponse(identity))
		}
		return c.Status(http.StatusOK).JSON(out)
	})

	r.Patch("/users/admin/:id", requireAuth, requireAdmin, setRoleHandler(ids, directory.RoleAdmin))
	r.Patch("/users/consumer/:id", requireAuth, requireAdmin, setRoleHandler(ids, directory.RoleConsumer))

	r.Get("/users/admin/:email", requireAuth, checkRoleHandler(ids, directory.RoleAdmin, "admin"))
	r.Get("/users/consumer/:email", requireAuth, checkRoleHandler(ids, directory.RoleConsumer, "consumer"))
}

func setRoleHandler(ids *directory.Service, role directory.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := ids.SetRole(c.UserContext(), c.Params("id"), role); err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": "role updated", "role": string(role)})
	}
}

// checkRoleHandler answers whether :email carries the role. When the token
// subject differs from :email it answers false immediately; the directory
// lookup branch is never reached, so exactly one response is written.
func checkRoleHandler(ids *directory.Service, role directory.Role, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Params("email")
		if middleware.AuthenticatedEmail(c) != email {
			return c.Status(http.StatusOK).JSON(fiber.Map{field: false})
		}
		ok, err := ids.HasRole(c.UserContext(), email, role)
		if err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{field: ok})
	}
}

func toIdentityResponse(identity directory.Identity) identityResponse {
	return identityResponse{
		ID:        identity.ID,
		Email:     identity.Email,
		Role:      string(identity.Role),
		CreatedAt: identity.CreatedAt.UTC().Format(time.RFC3339),
	}
}
