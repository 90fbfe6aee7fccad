package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

// Auth implementa remote.Auth para um navegador.
type Auth struct {
	backend *Backend
	store   remote.SessionStore
	hub     remote.Hub

	// refreshMu serializa leitura e rotação do refresh token do navegador.
	refreshMu sync.Mutex
}

var _ remote.Auth = (*Auth)(nil)

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*remote.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a.backend.mu.Lock()
	if err := a.backend.enter(OpSignIn); err != nil {
		a.backend.mu.Unlock()
		return nil, err
	}
	id, ok := a.backend.byEmail[email]
	var rec *userRecord
	if ok {
		rec = a.backend.users[id]
	}
	a.backend.mu.Unlock()

	if rec == nil {
		return nil, remote.ErrInvalidCredentials
	}
	match, err := auth.Verify(password, rec.hash)
	if err != nil || !match {
		return nil, remote.ErrInvalidCredentials
	}

	a.backend.mu.Lock()
	session, err := a.backend.issueSessionLocked(rec)
	a.backend.mu.Unlock()
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
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	a.backend.mu.Lock()
	defer a.backend.mu.Unlock()
	if err := a.backend.enter(OpSignUp); err != nil {
		return nil, err
	}

	id, err := a.backend.addUserLocked(email, hash, repo.Profile{
		Nome:              strings.TrimSpace(data.Nome),
		Matricula:         strings.TrimSpace(data.Matricula),
		PatrimonioEstacao: util.OptionalString(data.PatrimonioEstacao),
	})
	if err != nil {
		return nil, err
	}
	user := a.backend.users[id].user
	return &user, nil
}

// SignOut revoga o refresh token e sempre remove a sessão local.
func (a *Auth) SignOut(ctx context.Context) error {
	session, _ := a.store.LoadSession(ctx)

	a.backend.mu.Lock()
	err := a.backend.enter(OpSignOut)
	if err == nil && session != nil {
		delete(a.backend.refresh, auth.HashRefreshToken(session.RefreshToken))
	}
	a.backend.mu.Unlock()

	_ = a.store.DeleteSession(ctx)
	a.hub.Emit(remote.EventSignedOut, nil)
	return err
}

// GetSession devolve a sessão guardada, renovando-a quando expirada.
func (a *Auth) GetSession(ctx context.Context) (*remote.Session, error) {
	a.backend.mu.Lock()
	err := a.backend.enter(OpGetSession)
	a.backend.mu.Unlock()
	if err != nil {
		return nil, err
	}

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
	if err != nil || session == nil {
		return nil, false, err
	}

	a.backend.mu.Lock()
	now := a.backend.now()
	rec, exists := a.backend.users[session.User.ID]
	a.backend.mu.Unlock()
	if !exists {
		_ = a.store.DeleteSession(ctx)
		return nil, false, nil
	}

	if !session.Expired(now, remote.RefreshMargin) {
		return session, false, nil
	}

	a.backend.mu.Lock()
	hashed := auth.HashRefreshToken(session.RefreshToken)
	stored, ok := a.backend.refresh[hashed]
	var renewed *remote.Session
	if ok && now.Before(stored.expires) && stored.userID == rec.user.ID {
		delete(a.backend.refresh, hashed)
		renewed, err = a.backend.issueSessionLocked(rec)
	}
	a.backend.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	if renewed == nil {
		_ = a.store.DeleteSession(ctx)
		return nil, false, nil
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

// Subscribers expõe o número de inscritos (testes).
func (a *Auth) Subscribers() int {
	return a.hub.Len()
}
