// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/mlclient"
	"github.com/tomtom215/marquee/internal/profiles"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

//nolint:gocyclo // sequential wiring of every component
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("storage", cfg.Storage.Backend).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("ml_url", cfg.ML.URL).
		Bool("events", cfg.Events.Enabled).
		Msg("Starting Marquee")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORAGE ===

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	if cfg.Storage.SeedDemo {
		seeded, err := seedDemo(ctx, st)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed demo catalog")
		}
		logging.Info().Int("items", seeded).Msg("Demo catalog seeded")
	}

	genreCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer closeCache()

	// === ML SERVICE ===

	ml := mlclient.New(mlclient.Config{
		BaseURL: cfg.ML.URL,
		Timeout: cfg.ML.Timeout,
		Breaker: mlclient.BreakerConfig{
			Enabled:      cfg.ML.BreakerEnabled,
			MaxRequests:  cfg.ML.BreakerMaxRequests,
			Interval:     cfg.ML.BreakerInterval,
			OpenTimeout:  cfg.ML.BreakerOpenTimeout,
			MinRequests:  cfg.ML.BreakerMinRequests,
			FailureRatio: cfg.ML.BreakerFailureRatio,
		},
		RateLimit: cfg.ML.RateLimitPerSecond,
		RateBurst: cfg.ML.RateLimitBurst,
		Logger:    logging.WithComponent("mlclient"),
	})

	// === EVENTS ===

	feedback, err := newFeedback(cfg, ml, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize feedback events")
	}
	defer feedback.Close()

	// === SERVICES ===

	authMode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid auth mode")
	}

	secret := cfg.Security.JWTSecret
	if authMode == auth.AuthModeNone {
		if _, err := auth.EnsureDevAccount(ctx, st); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create development account")
		}
		if secret == "" {
			// Tokens issued by /auth/login stay valid until restart.
			secret = uuid.NewString() + uuid.NewString()
		}
		logging.Warn().Msg("Authentication disabled (AUTH_MODE=none); all requests act as the development admin")
	}

	jwtManager, err := auth.NewJWTManager(secret, cfg.Security.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	authService := auth.NewService(st, jwtManager, cfg.Security.BcryptCost, logger)
	catalogService := catalog.NewService(st, genreCache, feedback.Publisher, catalog.Config{
		DefaultPageSize: cfg.API.DefaultPageSize,
		MaxPageSize:     cfg.API.MaxPageSize,
		GenreTTL:        cfg.Redis.GenreTTL,
	}, logger)
	profileService := profiles.NewService(st, st, feedback.Publisher, logger)
	engine := recommend.NewEngine(st, st, ml, recommend.Config{
		DefaultLimit:   cfg.Recommend.DefaultLimit,
		SimilarLimit:   cfg.Recommend.SimilarLimit,
		FallbackGenres: cfg.Recommend.FallbackGenres,
	}, logger)

	// === AUTHORIZATION ===

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		ModelPath:   cfg.Security.CasbinModelPath,
		PolicyPath:  cfg.Security.CasbinPolicyPath,
		DefaultRole: "viewer",
		CacheTTL:    time.Minute,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	// === HTTP ===

	handler := api.NewHandler(api.Dependencies{
		Auth:        authService,
		Catalog:     catalogService,
		Profiles:    profileService,
		Recommender: engine,
		ML:          ml,
		Store:       st,
		Policy:      enforcer,
		MaxPageSize: cfg.API.MaxPageSize,
	})
	chiMiddleware := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})
	router := api.NewRouter(
		handler,
		auth.NewMiddleware(jwtManager, authMode, api.WriteError),
		authz.NewMiddleware(enforcer, api.WriteError),
		chiMiddleware,
		metrics.APIRecorder{},
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if feedback.Router != nil {
		tree.AddDataService(services.NewEventRouterService(feedback.Router))
		logging.Info().Str("transport", feedback.Transport.Kind).Msg("Event router added to supervisor tree")
	}
	tree.AddIntegrationService(services.NewMLProbeService(ml, cfg.ML.HealthProbeInterval, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Marquee stopped gracefully")
}
