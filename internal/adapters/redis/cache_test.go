package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "flex_reviews/internal/adapters/redis"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0, time.Hour), mr
}

func TestRedisCache_SetGetDel(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "camden", Count: 2}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "camden" || got.Count != 2 {
		t.Fatalf("got %+v", got)
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatal("deleted key must be a miss")
	}
}

func TestRedisCache_MissIsNotAnError(t *testing.T) {
	c, _ := newCache(t)

	var got payload
	ok, err := c.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("missing key must be a miss")
	}
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "x"}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(29 * time.Second)
	var got payload
	if ok, _ := c.Get(ctx, "k", &got); !ok {
		t.Fatal("entry expired too early")
	}

	mr.FastForward(2 * time.Second)
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatal("expired entry must not be served")
	}
}

func TestRedisCache_DefaultTTLApplied(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "x"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	ttl := mr.TTL("k")
	if ttl != time.Hour {
		t.Fatalf("ttl = %v, want the default 1h", ttl)
	}
}
