package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ignitegigs/internal/config"
	"ignitegigs/internal/database"
	"ignitegigs/internal/email"
	"ignitegigs/internal/gateway"
	"ignitegigs/internal/logging"
	"ignitegigs/internal/ratelimit"
	"ignitegigs/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component("api")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv, err := server.New(server.Options{
		Config:  cfg,
		DB:      db,
		Gateway: newGateway(cfg),
		Mailer:  newMailer(cfg),
		Guard:   ratelimit.NewGuard(),
		Log:     logging.Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	srv.Hub.Close()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newGateway(cfg *config.Config) gateway.Gateway {
	if cfg.StripeSecretKey == "" {
		logging.Warn().Msg("STRIPE_SECRET_KEY not set, using the sandbox gateway")
		return gateway.NewSandbox()
	}
	return gateway.NewStripe(gateway.StripeConfig{
		SecretKey:         cfg.StripeSecretKey,
		BaseURL:           cfg.StripeAPIBase,
		Timeout:           cfg.GatewayTimeout,
		RequestsPerSecond: cfg.GatewayRPS,
	}, logging.Component("stripe"))
}

func newMailer(cfg *config.Config) email.Sender {
	if cfg.ResendAPIKey == "" {
		return email.NewLogSender(logging.Component("email"))
	}
	return email.NewResend(cfg.ResendAPIKey, cfg.EmailFrom, cfg.GatewayTimeout)
}
