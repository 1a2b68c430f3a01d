package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flex_reviews/internal/domain"
)

// hostawayReviewsKey is the well-known cache key for the normalized hostaway
// collection. It is the only key the approval flow invalidates.
const hostawayReviewsKey = "reviews:hostaway:all"

var ErrEmptyReviewID = errors.New("review id is required")
var ErrEmptyListingID = errors.New("listing id is required")

// ReviewService wires the provider adapters, the TTL cache, the approval
// store and the imported-review store behind the operations the HTTP layer
// consumes.
type ReviewService struct {
	hostaway  domain.HostawayClient
	places    domain.PlacesClient
	cache     domain.Cache
	approvals *ApprovalStore
	imported  *ImportedStore
	cacheTTL  time.Duration
	workers   int64
}

func NewReviewService(h domain.HostawayClient, p domain.PlacesClient, c domain.Cache, ttl time.Duration, importWorkers int) *ReviewService {
	if importWorkers <= 0 {
		importWorkers = 4
	}
	return &ReviewService{
		hostaway:  h,
		places:    p,
		cache:     c,
		approvals: NewApprovalStore(),
		imported:  NewImportedStore(),
		cacheTTL:  ttl,
		workers:   int64(importWorkers),
	}
}

// Approvals exposes the moderation store (read-time overlay state).
func (s *ReviewService) Approvals() *ApprovalStore { return s.approvals }

// Snapshot is a normalized collection plus where it came from.
type Snapshot struct {
	Reviews []domain.NormalizedReview
	Origin  domain.Origin
}

// loadHostaway returns the normalized hostaway collection, read-through the
// cache. The cached value never carries approval state.
func (s *ReviewService) loadHostaway(ctx context.Context) ([]domain.NormalizedReview, domain.Origin, error) {
	var cached []domain.NormalizedReview
	if ok, _ := s.cache.Get(ctx, hostawayReviewsKey, &cached); ok {
		return cached, domain.OriginCache, nil
	}

	res, err := s.hostaway.FetchReviews(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetch hostaway reviews: %w", err)
	}
	normalized := NormalizeAllHostaway(res.Reviews)
	if err := s.cache.Set(ctx, hostawayReviewsKey, normalized, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Msg("caching hostaway reviews failed")
	}
	return normalized, res.Origin, nil
}

// GetHostawayReviews returns the cached (or freshly fetched) hostaway
// collection with the approval overlay applied.
func (s *ReviewService) GetHostawayReviews(ctx context.Context) (Snapshot, error) {
	reviews, origin, err := s.loadHostaway(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Reviews: s.overlayApproval(reviews), Origin: origin}, nil
}

// GetAllReviews combines the hostaway collection with every imported place
// review batch.
func (s *ReviewService) GetAllReviews(ctx context.Context) (Snapshot, error) {
	reviews, origin, err := s.loadHostaway(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	combined := append(reviews, s.imported.All()...)
	return Snapshot{Reviews: s.overlayApproval(combined), Origin: origin}, nil
}

// GetReviewsByListing fetches live (listing-scoped reads are never cached),
// normalizes, overlays approval and filters by the listing slug.
func (s *ReviewService) GetReviewsByListing(ctx context.Context, listingID string) ([]domain.NormalizedReview, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, ErrEmptyListingID
	}
	res, err := s.hostaway.FetchReviewsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for listing %s: %w", listingID, err)
	}
	normalized := s.overlayApproval(NormalizeAllHostaway(res.Reviews))
	filtered := make([]domain.NormalizedReview, 0, len(normalized))
	for _, r := range normalized {
		if r.ListingID == listingID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// GetApprovedReviews returns the approved subset of the hostaway collection,
// for public display.
func (s *ReviewService) GetApprovedReviews(ctx context.Context) ([]domain.NormalizedReview, error) {
	reviews, _, err := s.loadHostaway(ctx)
	if err != nil {
		return nil, err
	}
	approved := make([]domain.NormalizedReview, 0)
	for _, r := range reviews {
		if s.approvals.Get(r.ID) {
			r.IsApproved = true
			approved = append(approved, r)
		}
	}
	return approved, nil
}

// GetStats aggregates hostaway plus imported place reviews.
func (s *ReviewService) GetStats(ctx context.Context) (domain.ReviewStats, error) {
	reviews, _, err := s.loadHostaway(ctx)
	if err != nil {
		return domain.ReviewStats{}, err
	}
	combined := append(reviews, s.imported.All()...)
	return CalculateStats(combined), nil
}

// SetApproval flips the moderation flag for one review and invalidates
// exactly the aggregate cache key, so the next aggregate read reflects it.
func (s *ReviewService) SetApproval(ctx context.Context, id string, approved bool) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyReviewID
	}
	s.approvals.Set(id, approved)
	if err := s.InvalidateAggregateCache(ctx); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("aggregate cache invalidation failed")
	}
	log.Info().Str("id", id).Bool("approved", approved).Msg("review approval updated")
	return nil
}

func (s *ReviewService) InvalidateAggregateCache(ctx context.Context) error {
	return s.cache.Del(ctx, hostawayReviewsKey)
}

// SearchPlaces proxies a single text search.
func (s *ReviewService) SearchPlaces(ctx context.Context, query string) ([]domain.PlaceSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	return s.places.SearchPlaces(ctx, query)
}

// SearchProperties runs the configured managed-property queries.
func (s *ReviewService) SearchProperties(ctx context.Context) ([]domain.PlaceSummary, error) {
	return s.places.SearchProperties(ctx)
}

// ImportPlaceReviews fetches one place's reviews, normalizes them and stores
// the batch in the imported store, replacing any earlier import of the same
// place.
func (s *ReviewService) ImportPlaceReviews(ctx context.Context, placeID string) (Snapshot, error) {
	if strings.TrimSpace(placeID) == "" {
		return Snapshot{}, errors.New("place id is required")
	}
	res, err := s.places.GetPlaceDetails(ctx, placeID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("place details %s: %w", placeID, err)
	}
	normalized := NormalizePlaceReviews(res.Place)
	s.imported.Set(placeID, normalized)
	log.Info().Str("place_id", placeID).Int("count", len(normalized)).
		Str("origin", string(res.Origin)).Msg("place reviews imported")
	return Snapshot{Reviews: s.overlayApproval(normalized), Origin: res.Origin}, nil
}

// ImportAllProperties discovers managed properties and imports their reviews
// with bounded concurrency. Returns the number of reviews imported.
func (s *ReviewService) ImportAllProperties(ctx context.Context) (int, error) {
	places, err := s.places.SearchProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("search properties: %w", err)
	}

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0

	for _, p := range places {
		if err := sem.Acquire(ctx, 1); err != nil {
			return total, err
		}
		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(1)
			snap, err := s.ImportPlaceReviews(ctx, placeID)
			if err != nil {
				log.Warn().Err(err).Str("place_id", placeID).Msg("import failed")
				return
			}
			mu.Lock()
			total += len(snap.Reviews)
			mu.Unlock()
		}(p.PlaceID)
	}
	wg.Wait()
	return total, nil
}

// overlayApproval applies the moderation flag at read time. The input slice
// is from a fresh unmarshal or normalization pass, never a shared cached
// object, so in-place mutation is safe.
func (s *ReviewService) overlayApproval(reviews []domain.NormalizedReview) []domain.NormalizedReview {
	for i := range reviews {
		reviews[i].IsApproved = s.approvals.Get(reviews[i].ID)
	}
	return reviews
}
