package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ignitegigs/internal/config"
	"ignitegigs/internal/database"
	"ignitegigs/internal/gateway"
	"ignitegigs/internal/logging"
	"ignitegigs/internal/modules/payment"
	"ignitegigs/internal/repository"
)

// refund_sweep pushes refunds recorded by dispute resolutions to the payment
// gateway. Run it from cron; failed refunds stay pending for the next run.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component("refund_sweep")

	if cfg.StripeSecretKey == "" {
		log.Fatal().Msg("STRIPE_SECRET_KEY is required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	gw := gateway.NewStripe(gateway.StripeConfig{
		SecretKey:         cfg.StripeSecretKey,
		BaseURL:           cfg.StripeAPIBase,
		Timeout:           cfg.GatewayTimeout,
		RequestsPerSecond: cfg.GatewayRPS,
	}, logging.Component("stripe"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := payment.NewRefundSweeper(repository.NewBookingRepository(db), gw, logging.Logger())
	processed, failed, err := sweeper.Run(ctx, cfg.RefundBatch)
	if err != nil {
		log.Fatal().Err(err).Msg("refund sweep")
	}
	log.Info().Int("processed", processed).Int("failed", failed).Msg("refund sweep completed")
	if failed > 0 {
		os.Exit(1)
	}
}
