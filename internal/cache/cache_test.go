package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute, 10)
	c.Set("check:example.com", "found")

	v, ok := c.Get("check:example.com")
	if !ok || v.(string) != "found" {
		t.Fatalf("expected cached value, got %v (%v)", v, ok)
	}
	if _, ok := c.Get("check:other.com"); ok {
		t.Fatal("missing key must not hit")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(time.Minute, 10)
	c.SetTTL("k", "v", 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry must not hit")
	}
}

func TestCache_PatternInvalidation(t *testing.T) {
	c := New(time.Minute, 10)
	c.Set("check:a.com", 1)
	c.Set("check:b.com", 2)
	c.Set("history:a.com", 3)

	dropped := c.Invalidate("check:*")
	if dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", dropped)
	}
	if _, ok := c.Get("history:a.com"); !ok {
		t.Fatal("non-matching key must survive invalidation")
	}
}

func TestCache_BoundedSize(t *testing.T) {
	c := New(time.Minute, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	if c.Len() > 2 {
		t.Fatalf("cache must not exceed its bound, got %d entries", c.Len())
	}
}
