package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/smsender/smsender/internal/auth"
	"github.com/smsender/smsender/internal/config"
	"github.com/smsender/smsender/internal/directory"
	"github.com/smsender/smsender/internal/ledger"
	"github.com/smsender/smsender/internal/messaging"
	"github.com/smsender/smsender/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, provider messaging.Provider, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: ErrorHandler(logger),
	})

	deps := routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Provider: provider}
	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// ErrorHandler maps domain errors onto HTTP statuses. Auth failures are
// terminal for the request; store and provider failures surface a generic
// message and are logged internally. Nothing is retried.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error

		status := http.StatusInternalServerError
		message := "internal server error"

		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, directory.ErrBadCredentials):
			status = http.StatusUnauthorized
			message = err.Error()
		case errors.Is(err, directory.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
			status = http.StatusNotFound
			message = err.Error()
		case errors.Is(err, ledger.ErrInsufficientCredits):
			status = http.StatusPaymentRequired
			message = err.Error()
		case errors.Is(err, ledger.ErrDuplicateAccount):
			status = http.StatusConflict
			message = err.Error()
		case errors.Is(err, messaging.ErrSendFailure):
			// Provider failures keep the provider's error message attached.
			status = http.StatusBadGateway
			message = err.Error()
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
			message = "upstream timeout"
		default:
			if logger != nil {
				logger.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
			}
		}

		return c.Status(status).JSON(fiber.Map{"error": true, "message": message})
	}
}
