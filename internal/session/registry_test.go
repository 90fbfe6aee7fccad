package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestaozabele/presenca/internal/calendario"
)

func TestRegistryReusesAndEvicts(t *testing.T) {
	auth, tables, _ := fixture()
	created := 0
	registry := NewRegistry(func(sid string) (*Browser, error) {
		created++
		return &Browser{
			Manager:  newTestManager(auth, tables, NewMemoryCache(), time.Second),
			Calendar: calendario.NewAggregator(tables),
		}, nil
	}, RegistryOptions{IdleTTL: time.Minute, InitTimeout: time.Second})

	now := baseTime
	registry.now = func() time.Time { return now }

	first, err := registry.Get("sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, _ := registry.Get("sid-1")
	if first != second || created != 1 || first.ID != "sid-1" {
		t.Fatalf("expected the same browser for the same sid")
	}
	if _, err := registry.Get("sid-2"); err != nil {
		t.Fatalf("get: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := first.Manager.WaitReady(ctx); err != nil {
		t.Fatalf("expected background initialize: %v", err)
	}

	now = now.Add(30 * time.Second)
	_, _ = registry.Get("sid-2")
	now = now.Add(45 * time.Second)

	if n := registry.EvictIdle(); n != 1 {
		t.Fatalf("expected one idle manager evicted, got %d", n)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one manager left, got %d", registry.Len())
	}

	registry.Stop()
	if registry.Len() != 0 {
		t.Fatalf("expected registry empty after stop")
	}
	waitFor(t, "subscriptions released", func() bool { return auth.hub.Len() == 0 })
}

func TestRegistryCapsActiveBrowsers(t *testing.T) {
	auth, tables, _ := fixture()
	registry := NewRegistry(func(sid string) (*Browser, error) {
		return &Browser{
			Manager:  newTestManager(auth, tables, NewMemoryCache(), time.Second),
			Calendar: calendario.NewAggregator(tables),
		}, nil
	}, RegistryOptions{IdleTTL: time.Minute, InitTimeout: time.Second, MaxEntries: 2})
	defer registry.Stop()

	now := baseTime
	registry.now = func() time.Time { return now }

	for _, sid := range []string{"sid-1", "sid-2"} {
		if _, err := registry.Get(sid); err != nil {
			t.Fatalf("get %s: %v", sid, err)
		}
	}
	if _, err := registry.Get("sid-3"); !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
	if registry.Len() != 2 {
		t.Fatalf("expected registry to stay at the limit, got %d", registry.Len())
	}
	if _, err := registry.Get("sid-1"); err != nil {
		t.Fatalf("existing browser must still be served when full: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := registry.Get("sid-3"); err != nil {
		t.Fatalf("expected idle browsers to make room: %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected only the new browser left, got %d", registry.Len())
	}
	waitFor(t, "idle subscriptions released", func() bool { return auth.hub.Len() == 1 })
}
