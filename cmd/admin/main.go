package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/auth"
	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/observability"
	"github.com/storefront-labs/storefront-api/internal/persistence"
	"github.com/storefront-labs/storefront-api/internal/push"
	"github.com/storefront-labs/storefront-api/internal/repository"
	"github.com/storefront-labs/storefront-api/internal/service"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Administrator", "display name for a new account")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "password for a new account (default $ADMIN_PASSWORD)")
	vapidKeys := flag.Bool("vapid-keys", false, "print a new VAPID key pair for VAPID_PUBLIC_KEY/VAPID_PRIVATE_KEY and exit")
	flag.Parse()

	if *vapidKeys {
		privateKey, publicKey, err := push.GenerateKeys()
		if err != nil {
			log.Fatalf("failed to generate vapid keys: %v", err)
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", publicKey, privateKey)
		return
	}

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repository.NewUserRepository(pg.PoolHandle()),
		Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		Logger:   logger,
	})

	user, created, err := authService.BootstrapAdmin(ctx, service.RegisterInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}
	if created {
		fmt.Printf("created admin %s (%s)\n", user.Email, user.ID)
		return
	}
	fmt.Printf("promoted %s (%s) to admin\n", user.Email, user.ID)
}
