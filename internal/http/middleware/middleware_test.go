package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/session"
)

func TestCORSAllowsExactAndWildcardOrigins(t *testing.T) {
	handler := CORS([]string{"http://localhost:5173", "*.empresa.com.br"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := map[string]bool{
		"http://localhost:5173":           true,
		"https://presenca.empresa.com.br": true,
		"https://empresa.com.br":          false,
		"https://presenca.outra.com.br":   false,
		"":                                false,
	}
	for origin, allowed := range cases {
		req := httptest.NewRequest(http.MethodGet, "/calendario", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		got := res.Header().Get("Access-Control-Allow-Origin") == origin && origin != ""
		if got != allowed {
			t.Fatalf("origin %q: expected allowed=%v", origin, allowed)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/registros", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", res.Code)
	}
}

func TestIPRateLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	handler := IPRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:40000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, res.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:40001"
	req.Header.Set("X-Real-IP", "10.9.9.9")
	req.Header.Set("X-Forwarded-For", "10.9.9.8")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", res.Code)
	}
	if res.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:40000"
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected other ip to pass, got %d", res.Code)
	}
}

func TestRequireAuthWithoutBrowser(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/perfil", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

type pendingAuth struct {
	hub remote.Hub
}

func (a *pendingAuth) SignInWithPassword(ctx context.Context, email, password string) (*remote.Session, error) {
	return nil, remote.ErrInvalidCredentials
}

func (a *pendingAuth) SignUp(ctx context.Context, email, password string, data remote.SignUpData) (*remote.User, error) {
	return nil, remote.ErrUserExists
}

func (a *pendingAuth) SignOut(ctx context.Context) error { return nil }

// GetSession só retorna quando ctx termina.
func (a *pendingAuth) GetSession(ctx context.Context) (*remote.Session, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (a *pendingAuth) OnAuthStateChange(handler remote.AuthHandler) remote.Subscription {
	return a.hub.Subscribe(handler)
}

func (a *pendingAuth) AccessToken(ctx context.Context) (string, error) {
	return "", remote.ErrNoSession
}

type profileTables struct {
	remote.Tables
}

func (profileTables) GetProfile(ctx context.Context, id string) (*repo.Profile, error) {
	return &repo.Profile{ID: id, Nome: "Ana"}, nil
}

func decodeErrorCode(t *testing.T, res *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Error.Code, body.Error.Message
}

func TestRequireAuthWhileLoading(t *testing.T) {
	auth := &pendingAuth{}
	manager := session.NewManager(auth, profileTables{}, session.NewMemoryCache(), session.Options{InitTimeout: 300 * time.Millisecond})

	initCtx, cancelInit := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Initialize(initCtx)
		close(done)
	}()
	t.Cleanup(func() {
		cancelInit()
		<-done
		manager.Close()
	})

	browser := &session.Browser{ID: "sid-carregando", Manager: manager}
	var subject string
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = GetSubject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	serve := func(timeout time.Duration) *httptest.ResponseRecorder {
		ctx, cancel := context.WithTimeout(WithBrowser(context.Background(), browser), timeout)
		defer cancel()
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/calendario", nil).WithContext(ctx))
		return res
	}

	res := serve(20 * time.Millisecond)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while loading, got %d", res.Code)
	}
	if code, msg := decodeErrorCode(t, res); code != CodeLoading || msg != "Verificando autenticação" {
		t.Fatalf("expected LOADING, got %s %q", code, msg)
	}

	select {
	case <-manager.Ready():
	case <-time.After(2 * time.Second):
		t.Fatalf("safety timer never released loading")
	}

	res = serve(time.Second)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after safety timer, got %d", res.Code)
	}
	if code, _ := decodeErrorCode(t, res); code != CodeAuth {
		t.Fatalf("expected AUTH, got %s", code)
	}

	auth.hub.Emit(remote.EventSignedIn, &remote.Session{User: remote.User{ID: "u1", Email: "ana@empresa.com.br"}})
	res = serve(time.Second)
	if res.Code != http.StatusOK || subject != "u1" {
		t.Fatalf("expected 200 for u1 after sign in, got %d (%q)", res.Code, subject)
	}
}
