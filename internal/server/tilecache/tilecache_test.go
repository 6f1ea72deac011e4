package tilecache

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("osm", 12, 1205, 1539); got != "osm/12/1205/1539" {
		t.Errorf("Key = %q", got)
	}
}

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "osm/0/0/0", []byte("tile"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, ok, err := c.Get(ctx, "osm/0/0/0")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if string(data) != "tile" {
		t.Errorf("Get = %q", data)
	}

	if _, ok, _ := c.Get(ctx, "osm/0/0/1"); ok {
		t.Error("Get hit for absent key")
	}
}

func TestMemory_TTL(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get hit for expired entry")
	}
}

func TestNull(t *testing.T) {
	c := NewNull()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("null cache stored a value")
	}
}
