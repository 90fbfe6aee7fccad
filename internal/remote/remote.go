// Package remote define a fronteira com o serviço de dados hospedado:
// autenticação, sessão e tabelas profiles, registros_presenca e feriados.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/gestaozabele/presenca/internal/repo"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrNoSession indica que não há sessão autenticada.
	ErrNoSession = errors.New("sessão inexistente")
	// ErrUserExists indica cadastro com email já utilizado.
	ErrUserExists = errors.New("usuário já cadastrado")
)

// AuthEvent identifica notificações de mudança de autenticação.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// User é a identidade emitida pelo provedor.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// Session agrega tokens e usuário autenticado.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired informa se o token expira antes de now+margin.
func (s *Session) Expired(now time.Time, margin time.Duration) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(margin).Before(s.ExpiresAt)
}

// SignUpData carrega os metadados gravados no cadastro.
type SignUpData struct {
	Nome              string `json:"nome"`
	Matricula         string `json:"matricula"`
	PatrimonioEstacao string `json:"patrimonio_estacao"`
}

// AuthHandler recebe notificações do canal de autenticação.
type AuthHandler func(event AuthEvent, session *Session)

// Subscription representa uma inscrição ativa.
type Subscription interface {
	Unsubscribe()
}

// Auth expõe o ciclo de vida da autenticação para um navegador.
type Auth interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, data SignUpData) (*User, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	OnAuthStateChange(handler AuthHandler) Subscription
	AccessToken(ctx context.Context) (string, error)
}

// SessionStore guarda a sessão (tokens) de um navegador.
type SessionStore interface {
	LoadSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context) error
}

// Tables é a versão tipada das operações from(tabela).select/insert/update.
type Tables interface {
	GetProfile(ctx context.Context, id string) (*repo.Profile, error)
	UpdateProfile(ctx context.Context, id string, in repo.ProfileUpdate) error
	ListRegistros(ctx context.Context, from, to string) ([]repo.RegistroPresenca, error)
	FindRegistro(ctx context.Context, funcionarioID, data string) (*repo.RegistroPresenca, error)
	InsertRegistro(ctx context.Context, in repo.RegistroInput) (*repo.RegistroPresenca, error)
	UpdateRegistro(ctx context.Context, id string, in repo.RegistroInput) error
	ListFeriados(ctx context.Context, from, to string) ([]repo.Feriado, error)
}

// RefreshMargin antecipa a renovação de tokens prestes a expirar.
const RefreshMargin = 60 * time.Second
