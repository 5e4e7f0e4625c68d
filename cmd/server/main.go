package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"splitfair/internal/api"
	"splitfair/internal/auth"
	"splitfair/internal/config"
	"splitfair/internal/service"
	"splitfair/internal/storage"
	"splitfair/internal/storage/postgres"
	"splitfair/internal/storage/sqlite"
	"splitfair/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.DBBackend)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	var verifier *auth.WebhookVerifier
	if cfg.WebhookSecret != "" {
		verifier, err = auth.NewWebhookVerifier(cfg.WebhookSecret)
		if err != nil {
			slog.Error("Invalid webhook secret", "error", err)
			os.Exit(1)
		}
		slog.Info("Identity webhook enabled")
	}

	handler := api.NewHandler(
		service.NewDashboardService(store),
		service.NewContactService(store),
		service.NewExpenseService(store),
		service.NewUserService(store),
		service.NewAuthService(authenticator, jwtManager),
		verifier,
	)

	router := api.NewRouter(handler, jwtManager)

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DBBackend == "postgres" {
		return postgres.New(cfg.PostgresDSN)
	}
	return sqlite.New(cfg.SQLiteDBPath)
}
