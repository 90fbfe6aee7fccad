package session

import (
	"context"
	"sync"
	"time"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
)

// CacheEntry é o último usuário e perfil conhecidos de um navegador.
type CacheEntry struct {
	Identity      *remote.User
	Profile       *repo.Profile
	LastCheckedAt time.Time
}

// Fresh informa se a entrada pode ser exibida sem confirmação remota.
func (e *CacheEntry) Fresh(now time.Time, maxAge time.Duration) bool {
	if e == nil || e.Identity == nil || e.Profile == nil || e.LastCheckedAt.IsZero() {
		return false
	}
	return now.Sub(e.LastCheckedAt) < maxAge
}

// Cache guarda a CacheEntry de um navegador. Load devolve nil quando vazio.
type Cache interface {
	Load(ctx context.Context) (*CacheEntry, error)
	Save(ctx context.Context, entry CacheEntry) error
	Clear(ctx context.Context) error
}

// MemoryCache mantém a entrada na memória do processo.
type MemoryCache struct {
	mu    sync.Mutex
	entry *CacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Load(ctx context.Context) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil, nil
	}
	copied := *c.entry
	return &copied, nil
}

func (c *MemoryCache) Save(ctx context.Context, entry CacheEntry) error {
	c.mu.Lock()
	c.entry = &entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
	return nil
}
