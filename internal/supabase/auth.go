package supabase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/remote"
)

// Auth implementa remote.Auth sobre o GoTrue para um navegador.
type Auth struct {
	client *Client
	store  remote.SessionStore
	hub    remote.Hub

	// refreshMu evita renovações simultâneas do mesmo refresh token.
	refreshMu sync.Mutex
}

var _ remote.Auth = (*Auth)(nil)

// Auth cria o cliente de autenticação de um navegador.
func (c *Client) Auth(store remote.SessionStore) *Auth {
	if store == nil {
		store = remote.NewMemorySessionStore()
	}
	return &Auth{client: c, store: store}
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         remote.User `json:"user"`
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*remote.Session, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	req, err := a.client.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := a.client.do(req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, remote.ErrInvalidCredentials
		}
		return nil, err
	}

	session, err := a.client.toSession(resp)
	if err != nil {
		return nil, err
	}
	if err := a.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	a.hub.Emit(remote.EventSignedIn, session)
	return session, nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string, data remote.SignUpData) (*remote.User, error) {
	body := map[string]any{
		"email":    strings.TrimSpace(email),
		"password": password,
		"data":     data,
	}
	req, err := a.client.newRequest(ctx, http.MethodPost, "/auth/v1/signup", "", body)
	if err != nil {
		return nil, err
	}

	// Com confirmação por email o GoTrue devolve o usuário; sem ela, uma sessão.
	var resp struct {
		remote.User
		Nested *remote.User `json:"user"`
	}
	if err := a.client.do(req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isUserExists(apiErr) {
			return nil, remote.ErrUserExists
		}
		return nil, err
	}

	user := resp.User
	if resp.Nested != nil && resp.Nested.ID != "" {
		user = *resp.Nested
	}
	return &user, nil
}

// SignOut encerra a sessão remota quando possível e sempre limpa a local.
func (a *Auth) SignOut(ctx context.Context) error {
	session, _ := a.store.LoadSession(ctx)

	var err error
	if session != nil {
		var req *http.Request
		req, err = a.client.newRequest(ctx, http.MethodPost, "/auth/v1/logout", session.AccessToken, nil)
		if err == nil {
			err = a.client.do(req, nil)
		}
	}

	_ = a.store.DeleteSession(ctx)
	a.hub.Emit(remote.EventSignedOut, nil)
	return err
}

// GetSession devolve a sessão guardada, renovando-a quando expirada.
func (a *Auth) GetSession(ctx context.Context) (*remote.Session, error) {
	session, refreshed, err := a.loadOrRefresh(ctx)
	if err != nil {
		return nil, err
	}
	if refreshed {
		a.hub.Emit(remote.EventTokenRefreshed, session)
	}
	return session, nil
}

func (a *Auth) loadOrRefresh(ctx context.Context) (*remote.Session, bool, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	session, err := a.store.LoadSession(ctx)
	if err != nil {
		return nil, false, err
	}
	if session == nil {
		return nil, false, nil
	}
	if !session.Expired(a.client.now(), remote.RefreshMargin) {
		return session, false, nil
	}

	req, err := a.client.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": session.RefreshToken,
	})
	if err != nil {
		return nil, false, err
	}

	var resp tokenResponse
	if err := a.client.do(req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			_ = a.store.DeleteSession(ctx)
			return nil, false, nil
		}
		return nil, false, err
	}

	renewed, err := a.client.toSession(resp)
	if err != nil {
		return nil, false, err
	}
	if err := a.store.SaveSession(ctx, renewed); err != nil {
		return nil, false, err
	}
	return renewed, true, nil
}

func (a *Auth) OnAuthStateChange(handler remote.AuthHandler) remote.Subscription {
	return a.hub.Subscribe(handler)
}

func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	session, err := a.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", remote.ErrNoSession
	}
	return session.AccessToken, nil
}

// toSession valida o token de acesso e monta a sessão.
func (c *Client) toSession(resp tokenResponse) (*remote.Session, error) {
	var (
		claims *auth.Claims
		err    error
	)
	if c.jwt != nil {
		claims, err = c.jwt.ParseAndValidate(resp.AccessToken)
	} else {
		claims, err = auth.ParseUnverified(resp.AccessToken)
	}
	if err != nil {
		return nil, err
	}
	if resp.User.ID != "" && resp.User.ID != claims.Subject {
		return nil, auth.ErrTokenInvalido
	}

	user := resp.User
	if user.ID == "" {
		user.ID = claims.Subject
		user.Email = claims.Email
	}

	var expires time.Time
	switch {
	case resp.ExpiresAt > 0:
		expires = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		expires = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	case claims.ExpiresAt != nil:
		expires = claims.ExpiresAt.Time.UTC()
	}

	return &remote.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expires,
		User:         user,
	}, nil
}

func isUserExists(err *APIError) bool {
	if err.Code == "user_already_exists" || err.Code == "email_exists" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Message), "already registered")
}
