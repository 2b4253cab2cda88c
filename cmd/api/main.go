package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/ai"
	httptransport "github.com/storefront-labs/storefront-api/internal/api/http"
	"github.com/storefront-labs/storefront-api/internal/api/http/handlers"
	"github.com/storefront-labs/storefront-api/internal/auth"
	"github.com/storefront-labs/storefront-api/internal/cache"
	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/imagekit"
	"github.com/storefront-labs/storefront-api/internal/mail"
	"github.com/storefront-labs/storefront-api/internal/observability"
	"github.com/storefront-labs/storefront-api/internal/persistence"
	"github.com/storefront-labs/storefront-api/internal/push"
	"github.com/storefront-labs/storefront-api/internal/repository"
	"github.com/storefront-labs/storefront-api/internal/service"
	"github.com/storefront-labs/storefront-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	exampleRepo := repository.NewExampleRepository(pool)
	pushRepo := repository.NewPushSubscriptionRepository(pool)

	var mailer mail.Sender = mail.NewLogSender(logger)
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPSender(cfg.Mail)
	} else {
		logger.Warn("SMTP_HOST not set; emails are logged instead of sent")
	}

	var pusher service.Pusher
	if cfg.Push.Enabled() {
		pusher = push.NewClient(cfg.Push)
	} else {
		logger.Warn("VAPID keys not set; web push disabled")
	}
	var imageHost service.ImageHost
	if cfg.ImageKit.Enabled() {
		imageHost = imagekit.NewClient(cfg.ImageKit)
	} else {
		logger.Warn("ImageKit keys not set; uploads disabled")
	}
	var generator service.Generator
	if cfg.AI.Enabled() {
		generator = ai.NewGeminiClient(cfg.AI)
	} else {
		logger.Warn("GEMINI_API_KEY not set; chat assistant disabled")
	}

	queue := events.NewQueuedDispatcher(cfg.Notification.QueueSize, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Mailer:     mailer,
		Tokens:     tokens,
		Dispatcher: queue,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		Cache:       cache.New(redis.Handle(), logger),
		CacheTTL:    cfg.Cache.ProductTTL(),
		Dispatcher:  queue,
		Logger:      logger,
	})
	exampleService := service.NewExampleService(exampleRepo)
	pushService := service.NewPushService(service.PushDependencies{
		SubscriptionRepo: pushRepo,
		Pusher:           pusher,
		Metrics:          metrics,
		Logger:           logger,
		Concurrency:      cfg.Push.Concurrency,
	})
	uploadService := service.NewUploadService(imageHost, cfg.ImageKit.DefaultFolder)
	chatService := service.NewChatService(generator, productService)
	notificationService := service.NewNotificationService(cfg.Notification, service.NotificationDependencies{
		Dispatcher: queue,
		Mailer:     mailer,
		Push:       pushService,
		Logger:     logger,
	})

	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := worker.StartNotificationWorker(workerCtx, notificationService, queue)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:              cfg.App.RequestTimeout(),
		CORSOrigins:          cfg.App.CORSOrigins,
		ExposeInternalErrors: !cfg.App.IsProduction(),
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Profile:        handlers.NewProfileHandler(userService),
		Admin:          handlers.NewAdminHandler(userService),
		Products:       handlers.NewProductHandler(productService),
		Examples:       handlers.NewExampleHandler(exampleService),
		Uploads:        handlers.NewUploadHandler(uploadService),
		Push:           handlers.NewPushHandler(pushService),
		Chat:           handlers.NewChatHandler(chatService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		RateLimiter:    httptransport.NewRateLimiter(redis.Handle(), cfg.RateLimit, metrics, logger),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopWorker()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
