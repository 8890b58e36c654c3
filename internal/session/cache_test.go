package session

import (
	"context"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSetAndGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "room", "AB12CD"); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := c.Get(ctx, "room")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "AB12CD" {
		t.Fatalf("unexpected read: %q ok=%v", value, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("missing key must read as absent")
	}
}

func TestSetOverwritesAndRefreshesExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "name", "Mara"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(ctx, "name", "Zeca"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, ok, err := c.Get(ctx, "name")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "Zeca" {
		t.Fatalf("unexpected read: %q ok=%v", value, ok)
	}
}

func TestExpiredEntryReadsAbsentAndIsPurged(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "room", "AB12CD"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Jump the clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(TTL + time.Minute) }

	_, ok, err := c.Get(ctx, "room")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expired entry must read as absent")
	}

	// The row is gone even if the clock moves back.
	c.now = time.Now
	_, ok, err = c.Get(ctx, "room")
	if err != nil {
		t.Fatalf("get after purge: %v", err)
	}
	if ok {
		t.Fatal("expired entry must be purged on read")
	}
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "room", "AB12CD"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(ctx, "room"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "room"); ok {
		t.Fatal("deleted key must read as absent")
	}
}
