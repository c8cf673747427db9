package routes

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/covault-pay/covault/internal/account"
	"github.com/covault-pay/covault/internal/auth"
	"github.com/covault-pay/covault/internal/config"
	"github.com/covault-pay/covault/internal/dispatch"
	"github.com/covault-pay/covault/internal/middleware"
	"github.com/covault-pay/covault/internal/transfer"
	"github.com/covault-pay/covault/internal/verification"
	"github.com/covault-pay/covault/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Dev can run on in-memory stores; anywhere else the backing
	// services are mandatory.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var codeStore verification.Store
	var userRepo account.Repository
	var walletRepo wallet.Repository
	var txRepo transfer.Repository
	if d.DB != nil && d.Cache != nil {
		codeStore = verification.NewRedisStore(d.Cache)
		userRepo = account.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		txRepo = transfer.NewPostgresRepository(d.DB)
	} else {
		codeStore = verification.NewMemoryStore()
		userRepo = account.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		txRepo = transfer.NewMemoryRepository()
	}

	sender := dispatch.NewRetrying(dispatch.NewLoggerSender(d.Logger), 3, 500*time.Millisecond, d.Logger)
	codeSvc := verification.NewService(codeStore, sender, d.Logger, d.Cfg.CodeLifetime)
	credSvc := auth.NewService(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	walletSvc := wallet.NewService(walletRepo)
	accountSvc := account.NewService(userRepo, codeSvc, credSvc, walletSvc)
	caster := transfer.NewLoggerBroadcaster(d.Logger)
	transferSvc := transfer.NewService(txRepo, userRepo, walletSvc, caster, d.Logger)

	accountHandler := account.NewHandler(accountSvc, codeSvc)
	transferHandler := transfer.NewHandler(transferSvc)

	api := app.Group("/api/v1")

	codeLimiter := middleware.CodeRateLimit(d.Cache, d.Cfg.CodesPerMinute)
	RegisterAccountRoutes(api, accountHandler, codeLimiter)

	protected := api.Group("", middleware.BearerAuth(credSvc))
	RegisterProtectedAccountRoutes(protected, accountHandler)
	RegisterTransferRoutes(protected, transferHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
