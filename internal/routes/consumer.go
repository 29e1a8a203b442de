package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/smsender/smsender/internal/ledger"
)

type accountResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	SMSCredits int64  `json:"sms_credits"`
	CreatedAt  string `json:"created_at"`
}

// RegisterConsumerRoutes wires consumer account and credit endpoints. The
// credit grant is an admin-only mutation.
func RegisterConsumerRoutes(r fiber.Router, accounts *ledger.Service, requireAuth, requireAdmin fiber.Handler) {
	r.Post("/consumer", func(c *fiber.Ctx) error {
		var req struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Credits int64  `json:"credits"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		account, err := accounts.CreateAccount(c.UserContext(), ledger.CreateInput{Email: req.Email, Name: req.Name, Credits: req.Credits})
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(toAccountResponse(account))
	})

	r.Get("/consumer", func(c *fiber.Ctx) error {
		list, err := accounts.List(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]accountResponse, 0, len(list))
		for _, account := range list {
			out = append(out, toAccountResponse(account))
		}
		return c.Status(http.StatusOK).JSON(out)
	})

	r.Get("/smsCredits/:id", func(c *fiber.Ctx) error {
		balance, err := accounts.Credits(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"account_id": c.Params("id"), "sms_credits": balance})
	})

	r.Get("/consumerCredits", func(c *fiber.Ctx) error {
		list, err := accounts.List(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]fiber.Map, 0, len(list))
		for _, account := range list {
			out = append(out, fiber.Map{"account_id": account.ID, "email": account.Email, "sms_credits": account.SMSCredits})
		}
		return c.Status(http.StatusOK).JSON(out)
	})

	r.Patch("/smsCreditGrant/:id", requireAuth, requireAdmin, func(c *fiber.Ctx) error {
		var req struct {
			Credits int64 `json:"credits"`
		}
		// Empty body resets the balance to zero.
		_ = c.BodyParser(&req)
		// Params strings are backed by Fiber's reusable request buffer; the
		// store retains the id, so it must be copied first.
		id := utils.CopyString(c.Params("id"))
		if err := accounts.SetCredits(c.UserContext(), id, req.Credits); err != nil {
			return err
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"account_id": id, "sms_credits": req.Credits})
	})
}

func toAccountResponse(account ledger.Account) accountResponse {
	return accountResponse{
		ID:         account.ID,
		Email:      account.Email,
		Name:       account.Name,
		SMSCredits: account.SMSCredits,
		CreatedAt:  account.CreatedAt.UTC().Format(time.RFC3339),
	}
}
