package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/session"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyBrowser contextKey = "browser"
)

// Códigos de erro emitidos pelos middlewares.
const (
	CodeAuth        = "AUTH"
	CodeForbidden   = "FORBIDDEN"
	CodeLoading     = "LOADING"
	CodeRateLimit   = "RATE_LIMIT"
	CodeUnavailable = "UNAVAILABLE"
	CodeInternal    = "INTERNAL"
)

// RequireAuth exige usuário autenticado. Durante o carregamento inicial aguarda
// o Manager até o fim do contexto da requisição.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		browser := GetBrowser(r.Context())
		if browser == nil {
			writeError(w, http.StatusUnauthorized, CodeAuth, "sessão ausente")
			return
		}

		state := browser.Manager.State()
		if state.Loading {
			var err error
			state, err = browser.Manager.WaitReady(r.Context())
			if err != nil {
				log.Debug().Err(err).Str("sid", browser.ID).Msg("requisição encerrada durante carregamento")
			}
		}
		if state.Loading {
			writeError(w, http.StatusServiceUnavailable, CodeLoading, "Verificando autenticação")
			return
		}
		if state.Identity == nil {
			writeError(w, http.StatusUnauthorized, CodeAuth, "não autenticado")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySubject, state.Identity.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin restringe a rota a perfis administradores. Usar após RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		browser := GetBrowser(r.Context())
		if browser == nil {
			writeError(w, http.StatusUnauthorized, CodeAuth, "sessão ausente")
			return
		}
		profile := browser.Manager.State().Profile
		if profile == nil || !profile.IsAdmin {
			writeError(w, http.StatusForbidden, CodeForbidden, "acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSubject recupera o id do usuário autenticado.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetBrowser recupera o Browser da requisição.
func GetBrowser(ctx context.Context) *session.Browser {
	val, _ := ctx.Value(ContextKeyBrowser).(*session.Browser)
	return val
}

// WithBrowser injeta o Browser no contexto.
func WithBrowser(ctx context.Context, browser *session.Browser) context.Context {
	return context.WithValue(ctx, ContextKeyBrowser, browser)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
