// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tomtom215/shopfront/internal/api"
	"github.com/tomtom215/shopfront/internal/auth"
	"github.com/tomtom215/shopfront/internal/authz"
	"github.com/tomtom215/shopfront/internal/cache"
	"github.com/tomtom215/shopfront/internal/config"
	"github.com/tomtom215/shopfront/internal/database"
	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/recommend"
	"github.com/tomtom215/shopfront/internal/supervisor"
	"github.com/tomtom215/shopfront/internal/supervisor/services"
)

// routerReadyTimeout bounds the wait for event subscriptions before the
// HTTP server starts accepting events.
const routerReadyTimeout = 30 * time.Second

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	issueToken := flag.String("issue-token", "", "print a signed admin API token for the given subject and exit")
	tokenRoles := flag.String("roles", auth.RoleAdmin, "comma-separated roles for -issue-token")
	flag.Parse()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if *issueToken != "" {
		if err := printToken(&cfg.Security, *issueToken, *tokenRoles); err != nil {
			logging.Fatal().Err(err).Msg("Failed to issue token")
		}
		return
	}

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting Shopfront")

	db, err := database.New(&cfg.Database,
		database.WithViewHistoryCap(cfg.Recommend.ViewHistoryCap),
		database.WithPopularityLookbackWeeks(cfg.Recommend.PopularityLookbackWeeks),
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo data")
			return
		}
		logging.Info().Msg("Demo catalog seeded")
	}
	if counts, err := db.GetRecordCounts(context.Background()); err == nil {
		logging.Info().
			Int64("products", counts.Products).
			Int64("view_history", counts.ViewHistory).
			Int64("popularity_stats", counts.PopularityStats).
			Int64("similarity_edges", counts.SimilarityEdges).
			Msg("Database ready")
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize cache")
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	svc, err := recommend.NewService(recommend.Dependencies{
		Catalog:    db,
		Popularity: db,
		History:    db,
		Searches:   db,
		Similarity: db,
		Cache:      store,
	}, recommend.ConfigFrom(&cfg.Recommend), logging.WithComponent("recommend"))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize recommendation service")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := initEvents(ctx, &cfg.Events, db, store, logging.WithComponent("events"))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize event pipeline")
		return
	}
	defer func() {
		if err := events.Shutdown(); err != nil {
			logging.Error().Err(err).Msg("Error closing event pipeline")
		}
	}()

	registry, scheduled, err := initJobs(&cfg.Jobs, svc, logging.WithComponent("jobs"))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to register jobs")
		return
	}
	scheduler, err := services.NewSchedulerService(registry, scheduled, logging.WithComponent("scheduler"))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create job scheduler")
		return
	}

	server, err := buildHTTPServer(cfg, api.Dependencies{
		Recommender: svc,
		Events:      eventPublisher(events),
		Jobs:        registry,
		DB:          db,
		Cache:       store,
		EventHealth: events.HealthChecks(),
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to build HTTP server")
		return
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	tree.AddJobService(scheduler)
	if events != nil {
		tree.AddEventService(services.NewEventProcessorService(events.Processor, logging.WithComponent("events")))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	// The in-process transport drops messages published before anyone
	// subscribes, so intake opens only once the router is consuming.
	if events != nil {
		select {
		case <-events.Processor.Ready():
		case <-time.After(routerReadyTimeout):
			logging.Warn().Dur("timeout", routerReadyTimeout).Msg("Event router not ready, starting HTTP anyway")
		case <-ctx.Done():
		}
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, u := range unstopped {
		logging.Warn().Str("service", u.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Shopfront stopped")
}

// eventPublisher keeps a disabled pipeline a nil interface.
func eventPublisher(events *EventComponents) api.EventPublisher {
	if events == nil {
		return nil
	}
	return events.Publisher
}

func buildHTTPServer(cfg *config.Config, deps api.Dependencies) (*http.Server, error) {
	mode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return nil, err
	}

	var jwtManager *auth.JWTManager
	if mode == auth.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return nil, err
		}
	} else {
		logging.Warn().Msg("Admin job endpoints are NOT authenticated (AUTH_MODE=none); use only on trusted networks")
	}

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		ModelPath:  cfg.Security.AuthzModelPath,
		PolicyPath: cfg.Security.AuthzPolicyPath,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	router := api.NewRouter(
		api.NewHandler(deps, api.HandlerConfig{RequestTimeout: cfg.Server.Timeout}),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
		auth.NewMiddleware(mode, jwtManager),
		authz.NewMiddleware(enforcer),
	)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Admin job triggers run synchronously and may outlast the request timeout.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}, nil
}

// printToken mints a token for operators calling the admin API.
func printToken(cfg *config.SecurityConfig, subject, roles string) error {
	manager, err := auth.NewJWTManager(cfg)
	if err != nil {
		return err
	}
	var roleList []string
	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}
	token, err := manager.GenerateToken(subject, roleList)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
