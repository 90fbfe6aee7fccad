package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/calendario"
	"github.com/gestaozabele/presenca/internal/util"
)

// Browser agrupa o estado mantido para um navegador.
type Browser struct {
	ID       string
	Manager  *Manager
	Calendar *calendario.Aggregator
}

// DefaultMaxEntries limita os navegadores mantidos em memória.
const DefaultMaxEntries = 10000

// ErrRegistryFull indica que o limite de navegadores ativos foi atingido.
var ErrRegistryFull = errors.New("limite de sessões ativas atingido")

// Factory monta o Browser identificado por sid.
type Factory func(sid string) (*Browser, error)

type registryEntry struct {
	browser  *Browser
	lastSeen time.Time
}

// RegistryOptions ajusta expiração e limite do registro.
type RegistryOptions struct {
	IdleTTL     time.Duration
	InitTimeout time.Duration
	MaxEntries  int
}

// Registry guarda um Browser por navegador e descarta os ociosos.
type Registry struct {
	factory     Factory
	idleTTL     time.Duration
	initTimeout time.Duration
	maxEntries  int
	now         func() time.Time
	logger      zerolog.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry

	once   sync.Once
	cancel context.CancelFunc
}

// NewRegistry cria o registro; valores zerados usam 30 minutos de ociosidade,
// DefaultInitTimeout e DefaultMaxEntries.
func NewRegistry(factory Factory, opts RegistryOptions) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = DefaultInitTimeout
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &Registry{
		factory:     factory,
		idleTTL:     opts.IdleTTL,
		initTimeout: opts.InitTimeout,
		maxEntries:  opts.MaxEntries,
		now:         util.Now,
		logger:      log.With().Str("component", "session_registry").Logger(),
		entries:     make(map[string]*registryEntry),
	}
}

// Get devolve o Browser de sid, criando-o e iniciando Initialize em segundo plano.
// Com o registro cheio, descarta os ociosos e falha com ErrRegistryFull se não houver vaga.
func (r *Registry) Get(sid string) (*Browser, error) {
	r.mu.Lock()
	now := r.now()
	if entry, ok := r.entries[sid]; ok {
		entry.lastSeen = now
		r.mu.Unlock()
		return entry.browser, nil
	}

	var idle []*Manager
	if len(r.entries) >= r.maxEntries {
		idle = r.removeIdleLocked(now)
	}
	if len(r.entries) >= r.maxEntries {
		r.mu.Unlock()
		closeAll(idle)
		r.logger.Warn().Int("max", r.maxEntries).Msg("registry: limite de sessões atingido")
		return nil, ErrRegistryFull
	}

	browser, err := r.factory(sid)
	if err != nil {
		r.mu.Unlock()
		closeAll(idle)
		return nil, err
	}
	browser.ID = sid
	r.entries[sid] = &registryEntry{browser: browser, lastSeen: now}
	r.mu.Unlock()
	closeAll(idle)

	manager := browser.Manager
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*r.initTimeout)
		defer cancel()
		manager.Initialize(ctx)
	}()
	return browser, nil
}

// Len devolve o número de navegadores ativos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Start inicia a limpeza periódica. Seguro para chamar múltiplas vezes.
func (r *Registry) Start(parent context.Context) {
	r.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		r.cancel = cancel
		go r.runLoop(ctx)
	})
}

// Stop encerra a limpeza e fecha todos os Managers.
func (r *Registry) Stop() {
	if r.cancel != nil {
		r.cancel()
	}

	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.browser.Manager.Close()
	}
}

func (r *Registry) runLoop(ctx context.Context) {
	interval := r.idleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info().Dur("idle_ttl", r.idleTTL).Msg("registry: limpeza iniciada")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("registry: limpeza encerrada")
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.logger.Debug().Int("removidos", n).Msg("registry: sessões ociosas descartadas")
			}
		}
	}
}

// EvictIdle fecha e remove Managers sem uso há mais de idleTTL.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	idle := r.removeIdleLocked(r.now())
	r.mu.Unlock()

	closeAll(idle)
	return len(idle)
}

func (r *Registry) removeIdleLocked(now time.Time) []*Manager {
	var idle []*Manager
	for sid, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			idle = append(idle, entry.browser.Manager)
			delete(r.entries, sid)
		}
	}
	return idle
}

func closeAll(managers []*Manager) {
	for _, manager := range managers {
		manager.Close()
	}
}
