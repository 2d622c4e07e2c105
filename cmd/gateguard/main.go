package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/gateguard/core/apikey"
	"github.com/dmitrymomot/gateguard/core/config"
	"github.com/dmitrymomot/gateguard/core/gate"
	"github.com/dmitrymomot/gateguard/core/logger"
	"github.com/dmitrymomot/gateguard/core/permission"
	"github.com/dmitrymomot/gateguard/core/ratelimiter"
	"github.com/dmitrymomot/gateguard/core/token"
	"github.com/dmitrymomot/gateguard/middleware"
)

type appConfig struct {
	Port              int           `env:"PORT" envDefault:"8080"`
	RequestsPerMinute int           `env:"GATE_REQUESTS_PER_MINUTE" envDefault:"60"`
	BurstSize         int           `env:"GATE_BURST_SIZE" envDefault:"10"`
	Strategy          string        `env:"GATE_STRATEGY" envDefault:"token_bucket"`
	SigningSecret     string        `env:"GATE_SIGNING_SECRET,required"`
	TokenTTL          time.Duration `env:"GATE_TOKEN_TTL" envDefault:"24h"`
	KeyPrefix         string        `env:"GATE_KEY_PREFIX" envDefault:"gg_"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	limiterCfg := ratelimiter.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
		BurstSize:         cfg.BurstSize,
		Strategy:          ratelimiter.Strategy(cfg.Strategy),
	}
	limiter, err := ratelimiter.New(limiterCfg, ratelimiter.WithLogger(log))
	if err != nil {
		return err
	}

	keys := apikey.New(apikey.WithSecretPrefix(cfg.KeyPrefix))

	// Bootstrap credential for first contact with the API. The secret is
	// printed exactly once and is not recoverable afterwards.
	bootstrapSecret, err := keys.Create("bootstrap-admin", apikey.WithPermissions(permission.Wildcard))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "bootstrap API key (shown once): %s\n", bootstrapSecret)

	tokens, err := token.New(cfg.SigningSecret,
		token.WithTTL(cfg.TokenTTL),
		token.WithIssuer("gateguard"),
	)
	if err != nil {
		return err
	}

	checker := permission.NewChecker(
		permission.WithEndpoint("/keys", "admin", "control"),
		permission.WithEndpoint("/auth/token", permission.Wildcard),
	)

	g, err := gate.New(gate.Config{
		Limiter:       limiter,
		Keys:          keys,
		Tokens:        tokens,
		Checker:       checker,
		Logger:        log,
		LimiterConfig: limiterCfg,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := limiter.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("limiter cleanup stopped", logger.Error(err))
		}
	}()

	handler := middleware.Chain(
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{Logger: log}),
		middleware.GateWithConfig(middleware.GateConfig{
			Gate:         g,
			EndpointFunc: logicalEndpoint,
		}),
	)(newRouter(limiter, keys, tokens, checker, limiterCfg))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("server started",
		slog.Int("port", cfg.Port),
		logger.Strategy(cfg.Strategy),
		logger.Count("requests_per_minute", cfg.RequestsPerMinute))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := limiter.Stop(); err != nil && !errors.Is(err, ratelimiter.ErrNotStarted) {
		return fmt.Errorf("limiter shutdown: %w", err)
	}
	return nil
}
