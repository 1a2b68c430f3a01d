package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/googleplaces"
	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/memcache"
	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/app"
	"flex_reviews/internal/shared"
)

// One-shot import: discover managed properties, pull their place reviews with
// bounded concurrency, then log a cross-source stats summary. Useful as a
// smoke check of both provider integrations.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("hostaway", cfg.HostawayBase).
		Str("places", cfg.PlacesBase).
		Int("workers", cfg.ImportWorkers).
		Msg("importer starting")

	hostawayClient, err := hostaway.New(cfg.HostawayBase, cfg.HostawayKey, cfg.HostawayAccountID, 5, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hostaway client")
	}
	placesClient, err := googleplaces.New(cfg.PlacesBase, cfg.PlacesKey, cfg.SearchQueries, 5, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	cache := memcache.New(cfg.CacheTTL, cfg.CacheSweep)
	defer cache.Close()

	svc := app.NewReviewService(hostawayClient, placesClient, cache, cfg.CacheTTL, cfg.ImportWorkers)

	start := time.Now()
	imported, err := svc.ImportAllProperties(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("property import failed")
	}
	log.Info().Int("reviews", imported).Dur("took", time.Since(start)).Msg("place reviews imported")

	stats, err := svc.GetStats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("stats calculation failed")
	}
	log.Info().
		Int("total", stats.TotalReviews).
		Float64("avg_rating", stats.AverageRating).
		Int("channels", len(stats.ByChannel)).
		Int("properties", len(stats.ByProperty)).
		Int("months", len(stats.Trends)).
		Msg("import completed")
}
