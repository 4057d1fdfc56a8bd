package cache

import (
	"testing"
	"time"
)

func TestLRUBasic(t *testing.T) {
	c := NewLRU[string](3, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("empty cache returned a value")
	}

	c.Set("a", "1")
	v, ok := c.Get("a")
	if !ok || v != "1" {
		t.Fatalf("got %q, %v", v, ok)
	}

	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Fatalf("overwrite not applied: %q", v)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("value survived delete")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // now "b" is the least recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("least recently used entry survived")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("recently used entry evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](10, -time.Second) // entries are born expired

	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expired entry returned")
	}

	c.Set("b", 2)
	c.Set("c", 3)
	if got := c.CleanExpired(); got != 2 {
		t.Fatalf("cleaned %d entries, want 2", got)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d after cleanup", c.Size())
	}
}
