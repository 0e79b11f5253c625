package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"

	"github.com/Strob0t/TripForge/internal/adapter/redis"
	"github.com/Strob0t/TripForge/internal/config"
	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/port/memorystore"
)

func newStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, "test:memory"), mr
}

func TestRedisStore_Contract(t *testing.T) {
	memorystore.RunContract(t, func(t *testing.T) memorystore.Store {
		store, _ := newStore(t)
		return store
	})
}

func TestLoadPartialDocument(t *testing.T) {
	store, mr := newStore(t)

	if err := mr.Set("test:memory", `{"trips":[{"destination":"Rome"}]}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(doc.Trips))
	}
	if len(doc.VisitedPlaces) != 0 || doc.VisitedPlaces == nil {
		t.Errorf("expected empty, non-nil visited places, got %v", doc.VisitedPlaces)
	}
}

func TestLoadCorruptValue(t *testing.T) {
	store, mr := newStore(t)
	if err := mr.Set("test:memory", "[1,2,3]"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error for a non-object value")
	}
}

func TestNewUsesConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.New(config.Redis{Addr: mr.Addr()}, "")
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := store.Save(context.Background(), memory.Empty()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists(redis.DefaultKey) {
		t.Errorf("expected default key %q to be written", redis.DefaultKey)
	}
}
