// Command summarid serves the summarization API: usage tracking, premium
// activation, Stripe checkout, and the GPT summarizer behind one HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/summarihq/usagekit/pkg/api"
	"github.com/summarihq/usagekit/pkg/billing"
	"github.com/summarihq/usagekit/pkg/billing/stripe"
	"github.com/summarihq/usagekit/pkg/summarize"
	"github.com/summarihq/usagekit/pkg/usagekit"
	zerologadapter "github.com/summarihq/usagekit/pkg/usagekit/logger/zerolog"
	prommetrics "github.com/summarihq/usagekit/pkg/usagekit/metrics/prometheus"
	"github.com/summarihq/usagekit/storage/memory"
	"github.com/summarihq/usagekit/storage/postgres"
	"github.com/summarihq/usagekit/storage/redis"
)

type config struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"memory"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	DailyLimit     int    `env:"DAILY_LIMIT" envDefault:"3"`
	ActivationCode string `env:"ACTIVATION_CODE"`
	AllowReset     bool   `env:"ALLOW_RESET" envDefault:"false"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`

	StripeAPIKey        string `env:"STRIPE_API_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `env:"STRIPE_PRICE_ID"`
	CheckoutSuccessURL  string `env:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `env:"CHECKOUT_CANCEL_URL"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse environment: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, cleanup, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer cleanup()

	tracker, err := usagekit.NewTracker(storage, usagekit.Config{
		DailyLimit:     cfg.DailyLimit,
		ActivationCode: cfg.ActivationCode,
		Logger:         zerologadapter.NewLogger(logger),
		Metrics:        prommetrics.DefaultMetrics("summarid"),
	})
	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}

	apiConfig := api.Config{
		Tracker:    tracker,
		AllowReset: cfg.AllowReset,
		Logger:     zerologadapter.NewLogger(logger),
	}

	if cfg.OpenAIAPIKey != "" {
		summarizer, err := summarize.NewGPTService(summarize.GPTConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		if err != nil {
			return fmt.Errorf("failed to create summarizer: %w", err)
		}
		apiConfig.Summarizer = summarizer
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, summarize endpoint disabled")
	}

	if cfg.StripeAPIKey != "" {
		provider, err := newBillingProvider(cfg, tracker, logger)
		if err != nil {
			return fmt.Errorf("failed to create billing provider: %w", err)
		}
		apiConfig.Billing = provider
	} else {
		logger.Warn().Msg("STRIPE_API_KEY not set, checkout and webhook endpoints disabled")
	}

	handler, err := api.NewHandler(apiConfig)
	if err != nil {
		return fmt.Errorf("failed to create API handler: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Mount("/api/v1", handler.Routes())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("storage", cfg.StorageBackend).
			Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

// newStorage builds the configured storage backend and a cleanup function.
func newStorage(ctx context.Context, cfg config) (usagekit.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		return memory.New(), func() {}, nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		storage, err := redis.New(client, redis.DefaultConfig())
		if err != nil {
			return nil, nil, err
		}
		return storage, func() { _ = client.Close() }, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("POSTGRES_DSN is required for the postgres backend")
		}
		pgConfig := postgres.DefaultConfig()
		pgConfig.ConnectionString = cfg.PostgresDSN
		storage, err := postgres.New(ctx, pgConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		return storage, storage.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newBillingProvider(cfg config, tracker *usagekit.Tracker, logger zerolog.Logger) (billing.Provider, error) {
	return stripe.NewProvider(stripe.Config{
		APIKey:        cfg.StripeAPIKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
		Tracker:       tracker,
		Logger:        zerologadapter.NewLogger(logger),
	})
}
