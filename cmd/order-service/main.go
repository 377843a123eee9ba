package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecomdemo/storefront/internal/cart"
	"github.com/ecomdemo/storefront/internal/config"
	"github.com/ecomdemo/storefront/internal/order"
	"github.com/ecomdemo/storefront/internal/payment"
	"github.com/ecomdemo/storefront/internal/postgres"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "order-service").Logger()

	log.Info().Msg("Order service starting...")

	cfg, err := config.New("order-service")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.Stripe.SecretKey == "" {
		log.Fatal().Msg("STRIPE_SECRET_KEY is required")
	}

	if err := postgres.Migrate(cfg.Postgres, migrationsPath()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	pg, err := postgres.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	payments := payment.NewStripeProvider(cfg.Stripe.SecretKey)

	orderRepo := order.NewRepository(pg.Pool)
	orderSvc := order.NewService(orderRepo, payments)
	orderHandler := order.NewHandler(orderSvc)

	cartRepo := cart.NewRepository(pg.Pool)
	cartSvc := cart.NewService(cartRepo)
	cartHandler := cart.NewHandler(cartSvc)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	orderHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	pg.Close()

	log.Info().Msg("Order service stopped gracefully")
}

func migrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}
	return "file://migrations"
}
