// Package session mantém, por navegador, o usuário autenticado e seu perfil.
//
// O Manager começa em ColdStart. Com cache recente passa a CacheHydrated e
// libera a interface enquanto confirma a sessão remota. A confirmação leva a
// Verified (ou SignedOut sem sessão). Falha remota com cache recente leva a
// Degraded, preservando os dados do cache.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

// Phase é a etapa do ciclo de autenticação.
type Phase string

const (
	PhaseColdStart     Phase = "cold_start"
	PhaseCacheHydrated Phase = "cache_hydrated"
	PhaseVerified      Phase = "verified"
	PhaseDegraded      Phase = "degraded"
	PhaseSignedOut     Phase = "signed_out"
)

const (
	DefaultMaxAge      = 5 * time.Minute
	DefaultInitTimeout = 10 * time.Second
)

// State é a fotografia exposta às telas protegidas.
type State struct {
	Phase    Phase         `json:"fase"`
	Loading  bool          `json:"loading"`
	Identity *remote.User  `json:"usuario"`
	Profile  *repo.Profile `json:"perfil"`
}

// Options ajusta tempos e relógio do Manager.
type Options struct {
	MaxAge      time.Duration
	InitTimeout time.Duration
	Now         func() time.Time
	Logger      *zerolog.Logger
}

// Manager é o dono do ciclo de autenticação de um navegador.
type Manager struct {
	auth   remote.Auth
	tables remote.Tables
	cache  Cache

	maxAge      time.Duration
	initTimeout time.Duration
	now         func() time.Time
	logger      zerolog.Logger

	initOnce  sync.Once
	readyOnce sync.Once
	ready     chan struct{}
	sub       remote.Subscription

	mu          sync.Mutex
	state       State
	initialized bool
	closed      bool
	generation  uint64
	timer       *time.Timer
}

// NewManager cria o Manager e assina o canal de autenticação.
// Notificações recebidas antes de Initialize terminar são ignoradas.
func NewManager(auth remote.Auth, tables remote.Tables, cache Cache, opts Options) *Manager {
	if cache == nil {
		cache = NewMemoryCache()
	}
	m := &Manager{
		auth:        auth,
		tables:      tables,
		cache:       cache,
		maxAge:      opts.MaxAge,
		initTimeout: opts.InitTimeout,
		now:         opts.Now,
		ready:       make(chan struct{}),
		state:       State{Phase: PhaseColdStart, Loading: true},
	}
	if m.maxAge <= 0 {
		m.maxAge = DefaultMaxAge
	}
	if m.initTimeout <= 0 {
		m.initTimeout = DefaultInitTimeout
	}
	if m.now == nil {
		m.now = util.Now
	}
	if opts.Logger != nil {
		m.logger = *opts.Logger
	} else {
		m.logger = log.With().Str("component", "session").Logger()
	}

	m.sub = auth.OnAuthStateChange(m.handleAuthEvent)
	return m
}

// Auth expõe o cliente de autenticação do navegador.
func (m *Manager) Auth() remote.Auth {
	return m.auth
}

// Tables expõe as tabelas acessadas em nome do navegador.
func (m *Manager) Tables() remote.Tables {
	return m.tables
}

// State devolve cópia do estado atual.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready é fechado quando o carregamento inicial termina ou o timer de segurança dispara.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady bloqueia até o fim do carregamento inicial ou do ctx.
func (m *Manager) WaitReady(ctx context.Context) (State, error) {
	select {
	case <-m.ready:
		return m.State(), nil
	case <-ctx.Done():
		return m.State(), ctx.Err()
	}
}

// Initialize carrega o cache e reconcilia com a sessão remota. Executa uma única vez.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
}

func (m *Manager) initialize(ctx context.Context) {
	m.mu.Lock()
	m.timer = time.AfterFunc(m.initTimeout, m.forceReady)
	gen := m.nextGenerationLocked()
	m.mu.Unlock()

	hydrated := m.loadFromCache(ctx, gen)

	session, err := m.auth.GetSession(ctx)
	switch {
	case err != nil:
		m.logger.Error().Err(err).Msg("erro ao verificar sessão")
		m.applyRemoteFailure(ctx, gen, hydrated)
	case session != nil:
		m.logger.Debug().Str("user_id", session.User.ID).Msg("sessão encontrada")
		m.updateUserAndProfile(ctx, gen, &session.User)
	default:
		m.logger.Debug().Msg("nenhuma sessão encontrada")
		m.updateUserAndProfile(ctx, gen, nil)
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.initialized = true
	m.state.Loading = false
	m.mu.Unlock()
	m.markReady()
}

// loadFromCache expõe o cache recente como estado provisório.
func (m *Manager) loadFromCache(ctx context.Context, gen uint64) bool {
	entry, err := m.cache.Load(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("erro ao recuperar cache local")
		return false
	}
	if !entry.Fresh(m.now(), m.maxAge) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false
	}
	m.state.Identity = entry.Identity
	m.state.Profile = entry.Profile
	m.state.Phase = PhaseCacheHydrated
	m.state.Loading = false
	m.logger.Debug().Str("user_id", entry.Identity.ID).Msg("carregando dados do cache local")
	return true
}

func (m *Manager) applyRemoteFailure(ctx context.Context, gen uint64, hydrated bool) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	if hydrated {
		m.state.Phase = PhaseDegraded
		m.mu.Unlock()
		return
	}
	m.state.Identity = nil
	m.state.Profile = nil
	m.state.Phase = PhaseSignedOut
	m.mu.Unlock()
	m.clearCache(ctx)
}

// updateUserAndProfile aplica o usuário informado e busca o perfil dele.
func (m *Manager) updateUserAndProfile(ctx context.Context, gen uint64, user *remote.User) {
	if user == nil {
		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			return
		}
		m.state.Identity = nil
		m.state.Profile = nil
		m.state.Phase = PhaseSignedOut
		m.mu.Unlock()
		m.clearCache(ctx)
		return
	}

	identity := *user
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.state.Identity = &identity
	m.mu.Unlock()

	profile := m.fetchProfile(ctx, identity.ID)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.state.Profile = profile
	m.state.Phase = PhaseVerified
	m.mu.Unlock()

	m.saveCache(ctx, &identity, profile)
}

func (m *Manager) fetchProfile(ctx context.Context, userID string) *repo.Profile {
	profile, err := m.tables.GetProfile(ctx, userID)
	if err != nil {
		m.logger.Error().Err(err).Str("user_id", userID).Msg("erro ao buscar perfil")
		return nil
	}
	return profile
}

// handleAuthEvent reconcilia o estado a cada notificação, após Initialize.
func (m *Manager) handleAuthEvent(event remote.AuthEvent, session *remote.Session) {
	m.mu.Lock()
	if !m.initialized || m.closed {
		m.mu.Unlock()
		return
	}
	gen := m.nextGenerationLocked()
	m.mu.Unlock()

	var user *remote.User
	if session != nil {
		user = &session.User
	}
	m.logger.Debug().Str("event", string(event)).Bool("session", user != nil).Msg("evento de auth")

	ctx, cancel := context.WithTimeout(context.Background(), m.initTimeout)
	defer cancel()
	m.updateUserAndProfile(ctx, gen, user)
}

// RefreshProfile busca novamente o perfil do usuário atual.
func (m *Manager) RefreshProfile(ctx context.Context) {
	m.mu.Lock()
	if m.state.Identity == nil {
		m.mu.Unlock()
		return
	}
	identity := *m.state.Identity
	gen := m.nextGenerationLocked()
	m.mu.Unlock()

	profile := m.fetchProfile(ctx, identity.ID)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.state.Profile = profile
	m.mu.Unlock()

	m.saveCache(ctx, &identity, profile)
}

// SignIn autentica e aplica o usuário mesmo antes de Initialize terminar.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	session, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	applied := m.initialized && m.state.Identity != nil && m.state.Identity.ID == session.User.ID
	gen := m.nextGenerationLocked()
	m.mu.Unlock()

	if !applied {
		m.updateUserAndProfile(ctx, gen, &session.User)
	}
	return nil
}

// SignOut encerra a sessão remota e sempre limpa usuário, perfil e cache.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	m.state.Loading = true
	m.nextGenerationLocked()
	m.mu.Unlock()

	if err := m.auth.SignOut(ctx); err != nil {
		m.logger.Error().Err(err).Msg("erro ao fazer logout")
	}

	m.mu.Lock()
	m.nextGenerationLocked()
	m.state.Identity = nil
	m.state.Profile = nil
	m.state.Phase = PhaseSignedOut
	m.state.Loading = false
	m.mu.Unlock()
	m.clearCache(ctx)
}

// Close cancela a assinatura e o timer de segurança.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Unlock()
	m.sub.Unsubscribe()
}

func (m *Manager) forceReady() {
	m.mu.Lock()
	if m.initialized || m.closed {
		m.mu.Unlock()
		return
	}
	m.logger.Warn().Dur("timeout", m.initTimeout).Msg("timeout na inicialização, forçando fim do loading")
	m.state.Loading = false
	m.initialized = true
	m.mu.Unlock()
	m.markReady()
}

func (m *Manager) markReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

func (m *Manager) nextGenerationLocked() uint64 {
	m.generation++
	return m.generation
}

func (m *Manager) saveCache(ctx context.Context, identity *remote.User, profile *repo.Profile) {
	entry := CacheEntry{Identity: identity, Profile: profile}
	if profile != nil {
		entry.LastCheckedAt = m.now()
	}
	if err := m.cache.Save(ctx, entry); err != nil {
		m.logger.Warn().Err(err).Msg("erro ao salvar cache local")
	}
}

func (m *Manager) clearCache(ctx context.Context) {
	if err := m.cache.Clear(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("erro ao limpar cache local")
	}
}
