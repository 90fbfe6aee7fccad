// Package memory implementa o serviço de dados hospedado dentro do processo.
// Atende o modo BACKEND=memory e os testes.
package memory

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

// Operações que aceitam injeção de falha.
const (
	OpSignIn         = "auth.signIn"
	OpSignUp         = "auth.signUp"
	OpSignOut        = "auth.signOut"
	OpGetSession     = "auth.getSession"
	OpGetProfile     = "profiles.select"
	OpUpdateProfile  = "profiles.update"
	OpListRegistros  = "registros_presenca.select"
	OpFindRegistro   = "registros_presenca.maybeSingle"
	OpInsertRegistro = "registros_presenca.insert"
	OpUpdateRegistro = "registros_presenca.update"
	OpListFeriados   = "feriados.select"
)

type userRecord struct {
	user remote.User
	hash string
}

type refreshRecord struct {
	userID  string
	expires time.Time
}

// Backend guarda usuários, sessões e tabelas.
type Backend struct {
	mu         sync.Mutex
	jwt        *auth.JWTManager
	now        func() time.Time
	refreshTTL time.Duration

	users     map[string]*userRecord
	byEmail   map[string]string
	refresh   map[string]refreshRecord
	profiles  map[string]repo.Profile
	registros []repo.RegistroPresenca
	feriados  []repo.Feriado
	failures  map[string]error
	calls     map[string]int
}

// New cria backend vazio que assina tokens com jwtManager.
func New(jwtManager *auth.JWTManager) *Backend {
	return &Backend{
		jwt:        jwtManager,
		now:        util.Now,
		refreshTTL: 30 * 24 * time.Hour,
		users:      make(map[string]*userRecord),
		byEmail:    make(map[string]string),
		refresh:    make(map[string]refreshRecord),
		profiles:   make(map[string]repo.Profile),
		failures:   make(map[string]error),
		calls:      make(map[string]int),
	}
}

// SetClock substitui o relógio (testes).
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// FailNext faz a próxima chamada de op falhar com err.
func (b *Backend) FailNext(op string, err error) {
	b.mu.Lock()
	b.failures[op] = err
	b.mu.Unlock()
}

// Calls devolve quantas vezes op foi chamada.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// enter registra a chamada e consome falha injetada. Exige b.mu.
func (b *Backend) enter(op string) error {
	b.calls[op]++
	if err, ok := b.failures[op]; ok {
		delete(b.failures, op)
		return err
	}
	return nil
}

// AddUser cadastra usuário com hash Argon2id já calculado e cria o perfil.
func (b *Backend) AddUser(email, passwordHash string, profile repo.Profile) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, passwordHash, profile)
}

func (b *Backend) addUserLocked(email, passwordHash string, profile repo.Profile) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("memory: email obrigatório")
	}
	if _, exists := b.byEmail[email]; exists {
		return "", remote.ErrUserExists
	}

	now := b.now()
	id := profile.ID
	if id == "" {
		id = util.NewID()
	}
	metadata := map[string]any{
		"nome":      profile.Nome,
		"matricula": profile.Matricula,
	}
	if profile.PatrimonioEstacao != nil {
		metadata["patrimonio_estacao"] = *profile.PatrimonioEstacao
	}
	b.users[id] = &userRecord{
		user: remote.User{
			ID:        id,
			Email:     email,
			Metadata:  metadata,
			CreatedAt: &now,
		},
		hash: passwordHash,
	}
	b.byEmail[email] = id

	profile.ID = id
	profile.Email = email
	if profile.CreatedAt == nil {
		profile.CreatedAt = &now
	}
	if profile.UpdatedAt == nil {
		profile.UpdatedAt = &now
	}
	b.profiles[id] = profile
	return id, nil
}

// AddFeriado inclui feriado na tabela.
func (b *Backend) AddFeriado(f repo.Feriado) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f.ID == "" {
		f.ID = util.NewID()
	}
	b.feriados = append(b.feriados, f)
}

// Auth cria o cliente de autenticação de um navegador.
func (b *Backend) Auth(store remote.SessionStore) *Auth {
	if store == nil {
		store = remote.NewMemorySessionStore()
	}
	return &Auth{backend: b, store: store}
}

// Tables devolve o acesso às tabelas.
func (b *Backend) Tables() *Tables {
	return &Tables{backend: b}
}

func (b *Backend) issueSessionLocked(rec *userRecord) (*remote.Session, error) {
	now := b.now()
	token, expires, err := b.jwt.GenerateAccessToken(rec.user.ID, rec.user.Email, now)
	if err != nil {
		return nil, err
	}
	raw, hashed, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	b.refresh[hashed] = refreshRecord{userID: rec.user.ID, expires: now.Add(b.refreshTTL)}

	return &remote.Session{
		AccessToken:  token,
		RefreshToken: raw,
		ExpiresAt:    expires,
		User:         rec.user,
	}, nil
}
