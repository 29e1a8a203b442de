package messaging

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the SMS relay endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a messaging HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type consumerSendRequest struct {
	AccountID string `json:"account_id"`
	To        string `json:"to"`
	Message   string `json:"message"`
}

// Send relays a message without a credit check.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Send(c.UserContext(), req.To, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message_id": result.ProviderID,
		"sent_at":    result.SentAt,
	})
}

// SendAsConsumer relays a message, charging one credit to the consumer account.
func (h *Handler) SendAsConsumer(c *fiber.Ctx) error {
	var req consumerSendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.AccountID == "" {
		return fiber.NewError(http.StatusBadRequest, "account_id is required")
	}
	result, err := h.svc.SendAsConsumer(c.UserContext(), req.AccountID, req.To, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message_id":        result.ProviderID,
		"remaining_credits": result.RemainingCredits,
		"sent_at":           result.SentAt,
	})
}

type recordResponse struct {
	ID         string `json:"id"`
	Recipient  string `json:"recipient"`
	Body       string `json:"body"`
	ProviderID string `json:"provider_id"`
	SentAt     string `json:"sent_at"`
}

// History lists the sent-message audit log.
func (h *Handler) History(c *fiber.Ctx) error {
	records, err := h.svc.History(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]recordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, recordResponse{
			ID:         r.ID,
			Recipient:  r.Recipient,
			Body:       r.Body,
			ProviderID: r.ProviderID,
			SentAt:     r.SentAt.Format(time.RFC3339),
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}
