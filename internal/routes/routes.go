package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nzuri-bank/nzuri/internal/account"
	"github.com/nzuri-bank/nzuri/internal/auth"
	"github.com/nzuri-bank/nzuri/internal/chat"
	"github.com/nzuri-bank/nzuri/internal/config"
	"github.com/nzuri-bank/nzuri/internal/ledger"
	"github.com/nzuri-bank/nzuri/internal/middleware"
	"github.com/nzuri-bank/nzuri/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. The returned stop
// function drains background work (the chat bot's scheduled replies) and must
// be called during shutdown.
func Setup(app *fiber.App, d Deps) (func(), error) {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Repositories and stores
	accountRepo := account.NewPostgresRepository(d.DB)
	store := ledger.NewPostgresStore(d.DB)
	chatRepo := chat.NewPostgresRepository(d.DB)

	// Services
	notifier := notification.NewLoggerNotifier(d.Logger)
	accountSvc := account.NewService(accountRepo)
	tokenSvc := auth.NewService(d.Cfg, accountRepo)
	movementSvc := ledger.NewService(store, d.Logger, notifier)
	bot := chat.NewBot(chatRepo, d.Cfg.BotReplyDelay, d.Logger, notifier)
	chatSvc := chat.NewService(chatRepo, bot)

	// Handlers
	authHandler := auth.NewHandler(accountSvc, tokenSvc)
	accountHandler := account.NewHandler(accountSvc)
	movementHandler := ledger.NewHandler(movementSvc)
	chatHandler := chat.NewHandler(chatSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, accountRepo)
	protected := api.Group("", jwtmw)
	RegisterSessionRoutes(protected, authHandler)
	RegisterAccountRoutes(protected, accountHandler)
	RegisterChatRoutes(protected, chatHandler)

	// Money movement endpoints additionally require an Idempotency-Key so a
	// retried request cannot move funds twice.
	idem := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	movements := protected.Group("", idem)
	RegisterMovementRoutes(movements, movementHandler)

	return bot.Close, nil
}
