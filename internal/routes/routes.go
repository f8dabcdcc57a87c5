package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/opshub/opshub/internal/account"
	"github.com/opshub/opshub/internal/apikey"
	"github.com/opshub/opshub/internal/changelog"
	"github.com/opshub/opshub/internal/client"
	"github.com/opshub/opshub/internal/config"
	"github.com/opshub/opshub/internal/contract"
	"github.com/opshub/opshub/internal/device"
	"github.com/opshub/opshub/internal/i18n"
	"github.com/opshub/opshub/internal/inventory"
	"github.com/opshub/opshub/internal/kaiterra"
	"github.com/opshub/opshub/internal/logging"
	"github.com/opshub/opshub/internal/middleware"
	"github.com/opshub/opshub/internal/notification"
	"github.com/opshub/opshub/internal/role"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	// Registrar overrides the Kaiterra client built from Cfg.
	Registrar device.Registrar
}

type repositories struct {
	clients   client.Repository
	accounts  account.Repository
	roles     role.Repository
	locations inventory.Repository
	contracts contract.Repository
	keys      apikey.Repository
	devices   device.Repository
	changes   changelog.Recorder
}

func newRepositories(db *pgxpool.Pool) repositories {
	if db == nil {
		return repositories{
			clients:   client.NewMemoryRepository(),
			accounts:  account.NewMemoryRepository(),
			roles:     role.NewMemoryRepository(),
			locations: inventory.NewMemoryRepository(),
			contracts: contract.NewMemoryRepository(),
			keys:      apikey.NewMemoryRepository(),
			devices:   device.NewMemoryRepository(),
			changes:   changelog.NewInMemory(),
		}
	}
	return repositories{
		clients:   client.NewPostgresRepository(db),
		accounts:  account.NewPostgresRepository(db),
		roles:     role.NewPostgresRepository(db),
		locations: inventory.NewPostgresRepository(db),
		contracts: contract.NewPostgresRepository(db),
		keys:      apikey.NewPostgresRepository(db),
		devices:   device.NewPostgresRepository(db),
		changes:   changelog.NewPostgresRecorder(db),
	}
}

// Setup configures middlewares and all application routes. The app must be
// created with Immutable set: handlers hand route params to repositories
// that keep them after the request buffer is reused.
func Setup(app *fiber.App, d Deps) error {
	if !app.Config().Immutable {
		return errors.New("routes require a fiber app configured with Immutable")
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	registrar := d.Registrar
	if registrar == nil {
		messages, err := i18n.Load(d.Cfg.Locale)
		if err != nil {
			return fmt.Errorf("load %s messages: %w", d.Cfg.Locale, err)
		}
		registrar = kaiterra.New(kaiterra.Options{
			BaseURL:    d.Cfg.KaiterraBaseURL,
			HTTPClient: &http.Client{Timeout: d.Cfg.KaiterraTimeout},
			Messages:   messages,
			Logger:     d.Logger,
		})
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	if d.Cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Services and handlers
	repos := newRepositories(d.DB)
	notifier := notification.NewLoggerNotifier(d.Logger)

	clientSvc := client.NewService(repos.clients)
	roleSvc := role.NewService(repos.roles)
	locationSvc := inventory.NewService(repos.locations)
	accountSvc := account.NewService(account.Deps{
		Repo:      repos.accounts,
		Clients:   clientSvc,
		Roles:     roleSvc,
		Locations: locationSvc,
		Changes:   repos.changes,
		Notifier:  notifier,
		Logger:    d.Logger,
	})
	contractSvc := contract.NewService(repos.contracts)
	keySvc := apikey.NewService(repos.keys)
	deviceSvc := device.NewService(device.Deps{
		Repo:      repos.devices,
		Accounts:  accountSvc,
		Registrar: registrar,
		Changes:   repos.changes,
		Notifier:  notifier,
		Logger:    d.Logger,
	})

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	admin := api.Group("/admin", middleware.AdminAuth(d.Cfg.AdminToken))
	RegisterAdminRoutes(admin,
		client.NewHandler(clientSvc),
		account.NewHandler(accountSvc),
		apikey.NewHandler(keySvc),
		accountSvc,
	)

	RegisterAccountRoutes(api,
		middleware.APIKeyAuth(keySvc, d.Logger),
		roleSvc,
		locationSvc,
		contract.NewHandler(contractSvc),
		device.NewHandler(deviceSvc),
		registrationGuards(d)...,
	)

	return nil
}

// registrationGuards rate limits Kaiterra registrations and, when Redis is
// available, replays retried requests that carry an Idempotency-Key.
func registrationGuards(d Deps) []fiber.Handler {
	guards := []fiber.Handler{middleware.RegistrationRateLimit(d.Cache, d.Cfg.RegistrationRate, d.Logger)}
	if d.Cache != nil {
		guards = append(guards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, true, d.Logger))
	}
	return guards
}
