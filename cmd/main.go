package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/config"
	"github.com/AnthoniusHendriyanto/travel-auth/db"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/federated"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/handler"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/repository/memory"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/repository/mongodb"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountRepo, closeStore, err := newAccountRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize credential store: %v", err)
	}
	defer closeStore()

	verifier, err := newIdentityVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize federated verifier: %v", err)
	}

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessExpiryMin, cfg.RefreshExpiryMin)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	accountService := service.NewAccountService(accountRepo, tokenService, hasher, verifier, cfg, logger)
	authHandler := handler.NewAuthHandler(accountService, tokenService, logger)

	app := handler.NewApp(logger, cfg)
	handler.RegisterRoutes(app, authHandler, cfg)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "port", cfg.Port, "store", cfg.StoreDriver, "federated_provider", cfg.FederatedProvider)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

func newAccountRepository(ctx context.Context, cfg *config.Config) (domain.AccountRepository, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory credential store, accounts are lost on restart")
		return memory.NewRepository(), func() {}, nil
	}

	client, err := db.NewMongoClient(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("failed to disconnect from MongoDB", "error", err)
		}
	}

	repo := mongodb.NewRepository(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}

func newIdentityVerifier(ctx context.Context, cfg *config.Config) (domain.IdentityVerifier, error) {
	timeout := time.Duration(cfg.FederatedTimeoutSec) * time.Second

	switch cfg.FederatedProvider {
	case config.FederatedProviderFirebase:
		return federated.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseProjectID, timeout)
	case config.FederatedProviderGoogle:
		return federated.NewGoogleVerifier(cfg.GoogleClientID, timeout), nil
	default:
		return federated.Disabled{}, nil
	}
}
