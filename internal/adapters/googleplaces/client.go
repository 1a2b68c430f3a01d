// internal/adapters/googleplaces/client.go
package googleplaces

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

//go:embed fixtures.json
var fixturesJSON []byte

// Client talks to the Places text-search and details APIs. Review fetches
// fall back to the embedded fixture places on failure or an empty result.
type Client struct {
	base     string
	key      string
	queries  []string
	hc       *http.Client
	rl       *rate.Limiter
	fixtures []domain.PlaceDetails
}

func New(base, key string, queries []string, rps int, timeout time.Duration) (*Client, error) {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var fixtures []domain.PlaceDetails
	if err := json.Unmarshal(fixturesJSON, &fixtures); err != nil {
		return nil, fmt.Errorf("places fixtures: %w", err)
	}
	if key == "" {
		log.Warn().Msg("places API key is empty; detail fetches will fall back to fixtures")
	}
	return &Client{
		base:     base,
		key:      key,
		queries:  queries,
		hc:       &http.Client{Timeout: timeout},
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
		fixtures: fixtures,
	}, nil
}

func (c *Client) SearchPlaces(ctx context.Context, query string) ([]domain.PlaceSummary, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{"query": {query}, "key": {c.key}}
	u := c.base + "/textsearch/json?" + params.Encode()

	var payload struct {
		Status       string                `json:"status"`
		ErrorMessage string                `json:"error_message"`
		Results      []domain.PlaceSummary `json:"results"`
	}
	if err := c.getJSON(ctx, u, "/textsearch", &payload); err != nil {
		return nil, err
	}
	switch payload.Status {
	case "OK":
		return payload.Results, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("places search %s: %s", payload.Status, payload.ErrorMessage)
	}
}

// SearchProperties fans the configured queries out concurrently and merges
// the results in query order, deduplicating by place_id first-seen-wins. An
// empty merge (all queries failed or returned nothing) falls back to fixture
// summaries so discovery always yields a baseline.
func (c *Client) SearchProperties(ctx context.Context) ([]domain.PlaceSummary, error) {
	perQuery := make([][]domain.PlaceSummary, len(c.queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range c.queries {
		i, q := i, q
		g.Go(func() error {
			res, err := c.SearchPlaces(gctx, q)
			if err != nil {
				log.Warn().Err(err).Str("query", q).Msg("property search query failed")
				return nil // other queries still count
			}
			perQuery[i] = res
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var merged []domain.PlaceSummary
	for _, batch := range perQuery {
		for _, p := range batch {
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
			merged = append(merged, p)
		}
	}
	if len(merged) == 0 {
		log.Warn().Msg("property search returned nothing, serving fixture places")
		observability.ObserveFallback(domain.SourceGoogle, "empty")
		for _, f := range c.fixtures {
			merged = append(merged, domain.PlaceSummary{
				PlaceID:          f.PlaceID,
				Name:             f.Name,
				FormattedAddress: f.FormattedAddress,
				Rating:           f.Rating,
				UserRatingsTotal: f.UserRatingsTotal,
			})
		}
	}
	return merged, nil
}

func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (domain.PlaceResult, error) {
	details, err := c.fetchDetails(ctx, placeID)
	if err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("place details failed, serving fixture place")
		observability.ObserveFallback(domain.SourceGoogle, "error")
		return domain.PlaceResult{Place: c.fixtureFor(placeID), Origin: domain.OriginFallback}, nil
	}
	if len(details.Reviews) == 0 {
		log.Warn().Str("place_id", placeID).Msg("place has no reviews, serving fixture place")
		observability.ObserveFallback(domain.SourceGoogle, "empty")
		return domain.PlaceResult{Place: c.fixtureFor(placeID), Origin: domain.OriginFallback}, nil
	}
	return domain.PlaceResult{Place: details, Origin: domain.OriginLive}, nil
}

func (c *Client) fetchDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.PlaceDetails{}, err
	}

	params := url.Values{
		"place_id": {placeID},
		"fields":   {"place_id,name,rating,user_ratings_total,reviews,formatted_address"},
		"key":      {c.key},
	}
	u := c.base + "/details/json?" + params.Encode()

	var payload struct {
		Status       string              `json:"status"`
		ErrorMessage string              `json:"error_message"`
		Result       domain.PlaceDetails `json:"result"`
	}
	if err := c.getJSON(ctx, u, "/details", &payload); err != nil {
		return domain.PlaceDetails{}, err
	}
	if payload.Status != "OK" {
		return domain.PlaceDetails{}, fmt.Errorf("place details %s: %s", payload.Status, payload.ErrorMessage)
	}
	return payload.Result, nil
}

// fixtureFor picks the fixture matching placeID, or the first fixture as the
// deterministic baseline.
func (c *Client) fixtureFor(placeID string) domain.PlaceDetails {
	for _, f := range c.fixtures {
		if f.PlaceID == placeID {
			return f
		}
	}
	return c.fixtures[0]
}

func (c *Client) getJSON(ctx context.Context, u, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(domain.SourceGoogle, endpoint, 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(domain.SourceGoogle, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
