package redis

import (
	"context"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"periodic-table-service/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*CacheStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheStore(client, ttl), mr
}

func TestCacheStoreRoundTripsResponses(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 0)

	body := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	err := store.PutAll(ctx, "v1", []domain.CacheEntry{
		{Key: "/icons/icon-192.png", Response: domain.CachedResponse{
			Status: 200,
			Header: http.Header{"Content-Type": {"image/png"}},
			Body:   body,
		}},
		{Key: "/", Response: domain.CachedResponse{Status: 200, Body: []byte("<html></html>")}},
	})
	if err != nil {
		t.Fatalf("put all: %v", err)
	}
	if !mr.Exists("asset-cache:v1:entry:/icons/icon-192.png") {
		t.Fatalf("expected entry hash to be set")
	}

	got, ok, err := store.Match(ctx, "v1", "/icons/icon-192.png")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Status != 200 || string(got.Body) != string(body) || got.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response %+v", got)
	}

	if _, ok, err := store.Match(ctx, "v1", "/missing"); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
}

func TestCacheStoreDeleteRemovesKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 0)

	_ = store.Put(ctx, "v1", "/", domain.CachedResponse{Status: 200, Body: []byte("old")})
	_ = store.Put(ctx, "v2", "/", domain.CachedResponse{Status: 200, Body: []byte("new")})

	names, err := store.Names(ctx)
	if err != nil || len(names) != 2 {
		t.Fatalf("expected two caches, got %v err=%v", names, err)
	}

	deleted, err := store.Delete(ctx, "v1")
	if err != nil || !deleted {
		t.Fatalf("expected v1 deleted, deleted=%v err=%v", deleted, err)
	}
	if mr.Exists("asset-cache:v1:entry:/") || mr.Exists("asset-cache:v1:keys") {
		t.Fatalf("expected v1 keys removed")
	}
	if deleted, _ := store.Delete(ctx, "v1"); deleted {
		t.Fatalf("expected second delete to report false")
	}
	got, ok, _ := store.Match(ctx, "v2", "/")
	if !ok || string(got.Body) != "new" {
		t.Fatalf("expected v2 kept, got %+v", got)
	}
}

func TestCacheStoreAppliesTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Minute)

	if err := store.Put(ctx, "v1", "/", domain.CachedResponse{Status: 200}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ttl := mr.TTL("asset-cache:v1:entry:/")
	if ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl within jitter, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Match(ctx, "v1", "/"); ok {
		t.Fatalf("expected entry to expire")
	}
}
