package memcache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c := New(time.Hour, time.Minute)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "camden", Count: 3}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "camden" || got.Count != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := New(time.Hour, time.Minute)
	defer c.Close()

	var got payload
	ok, err := c.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("missing key must be a miss")
	}
}

func TestDel(t *testing.T) {
	c := New(time.Hour, time.Minute)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "x"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var got payload
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatal("deleted key must be a miss")
	}
}

func TestExpiryBetweenSweeps(t *testing.T) {
	c := New(time.Hour, time.Hour)
	defer c.Close()
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	if err := c.Set(ctx, "k", payload{Name: "x"}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}

	// still valid just before the deadline
	c.now = func() time.Time { return base.Add(29 * time.Second) }
	var got payload
	if ok, _ := c.Get(ctx, "k", &got); !ok {
		t.Fatal("entry expired too early")
	}

	// rejected after the deadline, even though the janitor has not run
	c.now = func() time.Time { return base.Add(31 * time.Second) }
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatal("expired entry must not be served")
	}

	c.mu.RLock()
	_, still := c.entries["k"]
	c.mu.RUnlock()
	if still {
		t.Fatal("expired read must drop the entry")
	}
}

func TestDefaultTTLApplied(t *testing.T) {
	c := New(10*time.Second, time.Hour)
	defer c.Close()
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	if err := c.Set(ctx, "k", payload{Name: "x"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	c.now = func() time.Time { return base.Add(11 * time.Second) }
	var got payload
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatal("zero ttl must fall back to the default ttl")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	c := New(time.Hour, time.Hour)
	defer c.Close()
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Set(ctx, "old", payload{Name: "a"}, 10)
	_ = c.Set(ctx, "fresh", payload{Name: "b"}, 3600)

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.sweep()

	c.mu.RLock()
	_, oldStill := c.entries["old"]
	_, freshStill := c.entries["fresh"]
	c.mu.RUnlock()
	if oldStill {
		t.Fatal("sweep must remove expired entries")
	}
	if !freshStill {
		t.Fatal("sweep must keep live entries")
	}
}

func TestGetReturnsCopies(t *testing.T) {
	c := New(time.Hour, time.Minute)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", payload{Name: "orig", Count: 1}, 60)

	var first payload
	if ok, _ := c.Get(ctx, "k", &first); !ok {
		t.Fatal("expected hit")
	}
	first.Name = "mutated"

	var second payload
	if ok, _ := c.Get(ctx, "k", &second); !ok {
		t.Fatal("expected hit")
	}
	if second.Name != "orig" {
		t.Fatalf("cached value was aliased: %+v", second)
	}
}
