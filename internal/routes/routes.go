package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/smsender/smsender/internal/auth"
	"github.com/smsender/smsender/internal/config"
	"github.com/smsender/smsender/internal/directory"
	"github.com/smsender/smsender/internal/ledger"
	"github.com/smsender/smsender/internal/messaging"
	"github.com/smsender/smsender/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Provider messaging.Provider

	// Optional pre-built backends. When nil they are derived from DB, falling
	// back to in-memory implementations. Tests use these to reach the stores
	// behind the HTTP surface.
	IdentityRepo directory.Repository
	CreditStore  ledger.Store
	Recorder     messaging.Recorder
}

// Setup configures middlewares and all application routes. When DB or Cache
// are nil (development only) in-memory stand-ins are used.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	idRepo := d.IdentityRepo
	if idRepo == nil {
		if d.DB != nil {
			idRepo = directory.NewPostgresRepository(d.DB)
		} else {
			idRepo = directory.NewMemoryRepository()
		}
	}
	ids := directory.NewService(idRepo, d.Cfg.StoreTimeout)

	creditStore := d.CreditStore
	if creditStore == nil {
		if d.DB != nil {
			creditStore = ledger.NewPostgresStore(d.DB)
		} else {
			creditStore = ledger.NewInMemory()
		}
	}
	accounts := ledger.NewService(creditStore, d.Cfg.StoreTimeout)

	recorder := d.Recorder
	if recorder == nil {
		if d.DB != nil {
			recorder = messaging.NewPostgresRecorder(d.DB)
		} else {
			recorder = messaging.NewMemoryRecorder()
		}
	}

	provider := d.Provider
	if provider == nil {
		provider = messaging.NewLoggerProvider(d.Logger)
	}
	relay := messaging.NewService(provider, creditStore, recorder, d.Logger, d.Cfg.StoreTimeout, d.Cfg.ProviderTimeout)

	tokens := auth.NewService(d.Cfg, ids)

	requireAuth := middleware.RequireAuth(tokens)
	requireAdmin := middleware.RequireRole(ids, directory.RoleAdmin)

	rateLimiter := middleware.IssueRateLimit(d.Cache, d.Cfg.IssueRatePerMin)
	app.Post("/jwt", rateLimiter, auth.NewHandler(tokens).Issue)

	RegisterUserRoutes(app, ids, requireAuth, requireAdmin)
	RegisterConsumerRoutes(app, accounts, requireAuth, requireAdmin)
	RegisterSMSRoutes(app, messaging.NewHandler(relay))

	return nil
}
