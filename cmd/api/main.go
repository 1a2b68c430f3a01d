package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/googleplaces"
	"flex_reviews/internal/adapters/hostaway"
	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/memcache"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// cache backend: redis when configured, in-process TTL store otherwise
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rc.Ping(ctx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		cancel()
		cache = rc
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	} else {
		cache = memcache.New(cfg.CacheTTL, cfg.CacheSweep)
		log.Info().Msg("using in-memory cache")
	}

	// provider clients
	hostawayClient, err := hostaway.New(cfg.HostawayBase, cfg.HostawayKey, cfg.HostawayAccountID, 5, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hostaway client")
	}
	placesClient, err := googleplaces.New(cfg.PlacesBase, cfg.PlacesKey, cfg.SearchQueries, 5, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	svc := app.NewReviewService(hostawayClient, placesClient, cache, cfg.CacheTTL, cfg.ImportWorkers)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
