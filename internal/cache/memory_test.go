package cache_test

import (
	"testing"
	"time"

	"eventhub/internal/cache"
)

func TestMemoryPutGet(t *testing.T) {
	c := cache.NewMemory(0)
	defer c.Close()

	c.Put("k", "v", time.Minute)
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := cache.NewMemory(0)
	defer c.Close()

	c.Put("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should be invisible to Get")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := cache.NewMemory(0)
	defer c.Close()

	c.Put("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry should be gone")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	c := cache.NewMemory(0)
	defer c.Close()

	c.Put("k", "v1", time.Minute)
	c.Put("k", "v2", time.Minute)
	if got, _ := c.Get("k"); got != "v2" {
		t.Errorf("Get = %q, want v2", got)
	}
}
