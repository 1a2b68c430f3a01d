// internal/adapters/hostaway/client.go
package hostaway

import (
	"context"
	crand "crypto/rand"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

//go:embed fixtures.json
var fixturesJSON []byte

// Client talks to the Hostaway reviews API. Any provider failure or empty
// result is recovered locally by serving the embedded fixture dataset, tagged
// with OriginFallback; callers always get a non-empty baseline.
type Client struct {
	base      string
	key       string
	accountID string
	hc        *http.Client
	rl        *rate.Limiter
	fixtures  []domain.HostawayReview
}

func New(base, key, accountID string, rps int, timeout time.Duration) (*Client, error) {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var fixtures []domain.HostawayReview
	if err := json.Unmarshal(fixturesJSON, &fixtures); err != nil {
		return nil, fmt.Errorf("hostaway fixtures: %w", err)
	}
	if key == "" {
		log.Warn().Msg("hostaway API key is empty; all fetches will fall back to fixtures")
	}
	return &Client{
		base:      base,
		key:       key,
		accountID: accountID,
		hc:        &http.Client{Timeout: timeout},
		rl:        rate.NewLimiter(rate.Limit(rps), rps),
		fixtures:  fixtures,
	}, nil
}

func (c *Client) FetchReviews(ctx context.Context) (domain.HostawayResult, error) {
	return c.fetchWithFallback(ctx, nil)
}

func (c *Client) FetchReviewsByListing(ctx context.Context, listingID string) (domain.HostawayResult, error) {
	return c.fetchWithFallback(ctx, url.Values{"listingId": {listingID}})
}

// envelope is the Hostaway response wrapper.
type envelope struct {
	Status string                  `json:"status"`
	Result []domain.HostawayReview `json:"result"`
}

func (c *Client) fetchWithFallback(ctx context.Context, extra url.Values) (domain.HostawayResult, error) {
	reviews, err := c.fetch(ctx, extra)
	if err != nil {
		log.Warn().Err(err).Msg("hostaway fetch failed, serving fixture dataset")
		observability.ObserveFallback(domain.SourceHostaway, "error")
		return domain.HostawayResult{Reviews: c.fixtures, Origin: domain.OriginFallback}, nil
	}
	if len(reviews) == 0 {
		log.Warn().Msg("hostaway returned no reviews, serving fixture dataset")
		observability.ObserveFallback(domain.SourceHostaway, "empty")
		return domain.HostawayResult{Reviews: c.fixtures, Origin: domain.OriginFallback}, nil
	}
	return domain.HostawayResult{Reviews: reviews, Origin: domain.OriginLive}, nil
}

// fetch performs a GET with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After when provided.
func (c *Client) fetch(ctx context.Context, extra url.Values) ([]domain.HostawayReview, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{"accountId": {c.accountID}}
	for k, vs := range extra {
		params[k] = vs
	}
	u := c.base + "/reviews?" + params.Encode()

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(domain.SourceHostaway, "/reviews", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return nil, lastErr
		}
		observability.ObserveExternal(domain.SourceHostaway, "/reviews", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var env envelope
			err := json.NewDecoder(resp.Body).Decode(&env)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("decode hostaway response: %w", err)
			}
			return env.Result, nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("hostaway remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("hostaway status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
