package server

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolportal_backend/internals/configs"
	"schoolportal_backend/internals/databases"
	conceptController "schoolportal_backend/internals/features/finance/concepts/controller"
	conceptService "schoolportal_backend/internals/features/finance/concepts/service"
	gatewayController "schoolportal_backend/internals/features/finance/gateway/controller"
	gatewayService "schoolportal_backend/internals/features/finance/gateway/service"
	invoiceController "schoolportal_backend/internals/features/finance/invoices/controller"
	invoiceService "schoolportal_backend/internals/features/finance/invoices/service"
	paymentController "schoolportal_backend/internals/features/finance/payments/controller"
	paymentService "schoolportal_backend/internals/features/finance/payments/service"
	directoryController "schoolportal_backend/internals/features/school/directory/controller"
	directoryService "schoolportal_backend/internals/features/school/directory/service"
	settingController "schoolportal_backend/internals/features/settings/controller"
	settingService "schoolportal_backend/internals/features/settings/service"
	authController "schoolportal_backend/internals/features/users/auth/controller"
	authService "schoolportal_backend/internals/features/users/auth/service"
	"schoolportal_backend/internals/features/users/auth/scheduler"
	userController "schoolportal_backend/internals/features/users/user/controller"
	helper "schoolportal_backend/internals/helpers"
	"schoolportal_backend/internals/helpers/dbtime"
	"schoolportal_backend/internals/helpers/mailer"
	"schoolportal_backend/internals/middlewares"
	"schoolportal_backend/internals/middlewares/logger"
	routes "schoolportal_backend/internals/route"
	routeDetails "schoolportal_backend/internals/route/details"
)

// Options carries the process-owned resources. Nil Provider, Mailer and Clock
// fall back to Midtrans, the configured mailer and the school clock.
type Options struct {
	Config   *configs.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	Provider gatewayService.Provider
	Mailer   mailer.Sender
	Clock    dbtime.Clock
}

type App struct {
	Fiber *fiber.App
	Auth  *authService.AuthService
}

// New wires services, controllers and middlewares into a fiber app.
func New(o Options) *App {
	cfg, log := o.Config, o.Log
	if o.Provider == nil {
		o.Provider = gatewayService.NewMidtransProvider(cfg.MidtransUseProd)
	}
	if o.Mailer == nil {
		o.Mailer = mailer.New(cfg.SendgridAPIKey, cfg.MailFrom, log)
	}
	if o.Clock == nil {
		o.Clock = dbtime.SchoolClock(cfg.SchoolTimezone)
	}

	gw := databases.NewGateway(o.DB)
	v := helper.NewValidator()

	// services
	settings := settingService.NewSettingService(gw)
	directory := directoryService.NewDirectoryService(gw)
	concepts := conceptService.NewConceptService(gw)
	invoices := invoiceService.NewInvoiceService(gw, o.Clock, o.Mailer, log)
	payments := paymentService.NewPaymentService(gw, invoices, log)
	gateway := gatewayService.NewGatewayService(gw, o.Provider, invoices, payments, settings, o.Redis,
		gatewayService.Config{
			ServerKey:  cfg.MidtransServerKey,
			Currencies: cfg.GatewayCurrencies,
			DedupTTL:   cfg.WebhookDedupTT,
		}, log)
	auth := authService.NewAuthService(o.DB, authService.NewTokenService(cfg.JWTSecret, cfg.JWTTTL), log)

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromError(c, log, err)
		},
	})

	app.Use(middlewares.RecoveryMiddleware(log))
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: "reqid",
	}))
	app.Use(logger.LoggerMiddleware(log))
	app.Use(middlewares.CorsMiddleware(cfg.CorsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching
	app.Use(middlewares.GlobalRateLimiter())
	app.Use(middlewares.TimeoutMiddleware(cfg.RequestTimeout))

	routes.SetupRoutes(app, routes.Deps{
		DB:        o.DB,
		Env:       cfg.AppEnv,
		AuthSvc:   auth,
		Log:       log,
		Auth:      authController.NewAuthController(auth, v, log),
		Users:     userController.NewUserController(auth, v, log),
		Directory: directoryController.NewDirectoryController(directory, v, log),
		Settings:  settingController.NewSettingController(settings, v, log),
		Finance: routeDetails.FinanceControllers{
			Concepts: conceptController.NewConceptController(concepts, v, log),
			Invoices: invoiceController.NewInvoiceController(invoices, v, log),
			Payments: paymentController.NewPaymentController(payments, v, log),
			Gateway:  gatewayController.NewGatewayController(gateway, v, log),
		},
	})

	return &App{Fiber: app, Auth: auth}
}

// Run connects the store, serves HTTP and shuts down when ctx is cancelled.
func Run(ctx context.Context, cfg *configs.Config, log *zap.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	db, err := databases.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = databases.Close(db) }()
	databases.TunePool(db, log)
	databases.WarmUp(db, log)

	if cfg.AutoMigrate {
		if err := databases.Migrate(db, log); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}

	rdb := configs.ConnectRedis(cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	scheduler.StartBlacklistCleanupScheduler(ctx, db, cfg.BlacklistCleanup, log)

	a := New(Options{Config: cfg, Log: log, DB: db, Redis: rdb})
	srv := a.Fiber.Server()
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 90 * time.Second

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		errCh <- a.Fiber.Listen("0.0.0.0:" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.Fiber.ShutdownWithContext(shutdownCtx)
}
