package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coinbase/coinbase-business-whmcs/internal/config"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/coinbase"
	pg "github.com/coinbase/coinbase-business-whmcs/internal/infra/db/postgres"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/logging"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/metrics"
	"github.com/coinbase/coinbase-business-whmcs/internal/infra/web"
	"github.com/coinbase/coinbase-business-whmcs/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "console logging and relaxed sampling")
	flag.Parse()

	// Secrets usually arrive through the environment; a local .env is a
	// convenience for development.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, *devMode)
	metrics.MustRegister()

	// ---- Postgres (WHMCS billing database) ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	billingRepo := pg.NewBillingRepo(pool)

	// ---- Coinbase Business API ----
	signer, err := coinbase.NewTokenSigner(cfg.Gateway.KeyName, cfg.Gateway.PrivateKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("api key rejected")
	}
	linkClient := coinbase.NewPaymentLinkClient(signer, cfg.Gateway.APIBase, logger)
	verifier := coinbase.NewSignatureVerifier(cfg.Gateway.WebhookSecret)

	// ---- Use cases ----
	webhookUC := usecase.NewWebhookUseCase(billingRepo, logger)
	checkoutUC := usecase.NewCheckoutUseCase(billingRepo, linkClient, cfg.Gateway.ReturnURL, logger)

	if !cfg.Gateway.Enabled {
		logger.Warn().Msg("gateway disabled; webhooks will be rejected until gateway.enabled is set")
	}

	// ---- HTTP server ----
	srv := web.NewServer(verifier, webhookUC, checkoutUC, cfg.Gateway.Enabled, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
	cancel()
}
