package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smsender/smsender/internal/messaging"
)

// RegisterSMSRoutes wires the relay endpoints.
func RegisterSMSRoutes(r fiber.Router, h *messaging.Handler) {
	api := r.Group("/api")
	api.Post("/send-sms", h.Send)
	api.Post("/consumer/send-sms", h.SendAsConsumer)
	api.Get("/message-history", h.History)
}
