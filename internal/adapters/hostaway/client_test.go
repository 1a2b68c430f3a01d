package hostaway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/domain"
)

func newClient(t *testing.T, base string) *hostaway.Client {
	t.Helper()
	cl, err := hostaway.New(base, "test-key", "acc-1", 100, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestFetchReviews_Live(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}
		if got := r.URL.Query().Get("accountId"); got != "acc-1" {
			t.Errorf("accountId param: %q", got)
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"status":"success","result":[
			{"id":1,"type":"guest-to-host","status":"published","rating":9,
			 "publicReview":"ok","reviewCategory":[],"submittedAt":"2024-01-05 10:00:00",
			 "guestName":"Ana","listingName":"Camden Lofts"}]}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := newClient(t, ts.URL).FetchReviews(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Origin != domain.OriginLive {
		t.Errorf("origin: %s, want live", res.Origin)
	}
	if len(res.Reviews) != 1 || res.Reviews[0].ID != 1 {
		t.Fatalf("reviews: %+v", res.Reviews)
	}
}

func TestFetchReviews_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_, _ = w.Write([]byte(`{"status":"success","result":[
				{"id":7,"type":"guest-to-host","status":"published","rating":8,
				 "publicReview":"ok","reviewCategory":[],"submittedAt":"2024-01-05 10:00:00",
				 "guestName":"Ben","listingName":"Camden Lofts"}]}`))
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := newClient(t, ts.URL).FetchReviews(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Origin != domain.OriginLive {
		t.Errorf("origin: %s, want live after retries", res.Origin)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Errorf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestFetchReviews_FallbackOnPersistentError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := newClient(t, ts.URL).FetchReviews(ctx)
	if err != nil {
		t.Fatalf("fallback must not surface an error, got: %v", err)
	}
	if res.Origin != domain.OriginFallback {
		t.Errorf("origin: %s, want fallback", res.Origin)
	}
	if len(res.Reviews) == 0 {
		t.Fatal("fixture dataset must be non-empty")
	}
}

func TestFetchReviews_FallbackOnEmptyResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"status":"success","result":[]}`))
	}))
	defer ts.Close()

	res, err := newClient(t, ts.URL).FetchReviews(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Origin != domain.OriginFallback || len(res.Reviews) == 0 {
		t.Fatalf("origin=%s count=%d, want fixture fallback", res.Origin, len(res.Reviews))
	}
}

func TestFetchReviewsByListing_PassesParam(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("listingId"); got != "camden-lofts" {
			t.Errorf("listingId param: %q", got)
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"status":"success","result":[
			{"id":2,"type":"guest-to-host","status":"published","rating":7,
			 "publicReview":"ok","reviewCategory":[],"submittedAt":"2024-01-05 10:00:00",
			 "guestName":"Cleo","listingName":"Camden Lofts"}]}`))
	}))
	defer ts.Close()

	res, err := newClient(t, ts.URL).FetchReviewsByListing(context.Background(), "camden-lofts")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Origin != domain.OriginLive || len(res.Reviews) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
