package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smsender/smsender/internal/directory"
)

// Handler exposes the token-issue endpoint.
type Handler struct {
	svc *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type issueRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type issueResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue signs a token for a registered identity.
func (h *Handler) Issue(c *fiber.Ctx) error {
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, expiresAt, err := h.svc.Issue(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrBadCredentials) {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(issueResponse{Token: token, ExpiresAt: expiresAt.UTC()})
}
