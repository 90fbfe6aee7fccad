package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/presenca/internal/remote"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL não definido")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCacheRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	cache := NewRedisCache(client, uuid.NewString(), time.Minute)
	defer cache.Clear(ctx)

	if entry, err := cache.Load(ctx); err != nil || entry != nil {
		t.Fatalf("expected empty cache, got %+v %v", entry, err)
	}

	saved := cachedEntry(time.Minute)
	if err := cache.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	entry, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entry.Identity.ID != "u1" || entry.Profile.Nome != "Ana (cache)" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.LastCheckedAt.UnixMilli() != saved.LastCheckedAt.UnixMilli() {
		t.Fatalf("expected timestamp in milliseconds preserved")
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if entry, _ := cache.Load(ctx); entry != nil {
		t.Fatalf("expected cleared cache")
	}
}

func TestRedisSessionStore(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	store := NewRedisSessionStore(client, uuid.NewString(), time.Minute)

	if s, err := store.LoadSession(ctx); err != nil || s != nil {
		t.Fatalf("expected no session, got %+v %v", s, err)
	}
	if err := store.SaveSession(ctx, &remote.Session{AccessToken: "a", RefreshToken: "r", User: remote.User{ID: "u1"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err := store.LoadSession(ctx)
	if err != nil || s == nil || s.RefreshToken != "r" {
		t.Fatalf("unexpected session: %+v %v", s, err)
	}
	if err := store.DeleteSession(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s, _ := store.LoadSession(ctx); s != nil {
		t.Fatalf("expected session deleted")
	}
}
