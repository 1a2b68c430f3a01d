package domain

import "context"

// Origin tags where a fetch result came from, so callers and operators can
// tell a degraded (fixture-served) response from a live one.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginFallback Origin = "fallback"
	OriginCache    Origin = "cache"
)

// HostawayResult is a batch of raw property reviews plus its origin.
type HostawayResult struct {
	Reviews []HostawayReview
	Origin  Origin
}

// PlaceResult is one place's details plus its origin.
type PlaceResult struct {
	Place  PlaceDetails
	Origin Origin
}

// HostawayClient fetches raw property reviews. Implementations substitute a
// deterministic fixture dataset on provider failure or an empty result, so
// callers always receive a non-empty baseline; the Origin field records which
// path was taken. Errors are reserved for local faults (e.g. a corrupt
// fixture), not provider outages.
type HostawayClient interface {
	FetchReviews(ctx context.Context) (HostawayResult, error)
	FetchReviewsByListing(ctx context.Context, listingID string) (HostawayResult, error)
}

// PlacesClient talks to the place-search/reviews API.
type PlacesClient interface {
	SearchPlaces(ctx context.Context, query string) ([]PlaceSummary, error)
	// SearchProperties runs the configured query set concurrently and merges
	// the results, deduplicating by place_id first-seen-wins.
	SearchProperties(ctx context.Context) ([]PlaceSummary, error)
	// GetPlaceDetails falls back to fixture data like HostawayClient does.
	GetPlaceDetails(ctx context.Context, placeID string) (PlaceResult, error)
}

// Cache is a TTL key-value store. ttlSec <= 0 means the backend's default TTL.
// Implementations must treat expired entries as absent on Get.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
