package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/session"
	"github.com/gestaozabele/presenca/internal/util"
)

// SessionCookie identifica o navegador.
const SessionCookie = "presenca_sid"

const sessionCookieTTL = 30 * 24 * time.Hour

// ExistingSession associa a requisição ao Browser do cookie, quando houver.
// Requisições sem cookie seguem sem Browser e nada é registrado.
func ExistingSession(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := sessionID(r)
			if sid == "" {
				next.ServeHTTP(w, r)
				return
			}
			attach(w, r, next, registry, sid)
		})
	}
}

// Sessions associa a requisição ao Browser do cookie, emitindo um cookie novo quando ausente.
// Usar apenas nas rotas que iniciam sessão.
func Sessions(registry *session.Registry, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := sessionID(r)
			if sid == "" {
				sid = util.NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sid,
					Path:     "/",
					Expires:  time.Now().Add(sessionCookieTTL),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			attach(w, r, next, registry, sid)
		})
	}
}

func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || !util.IsUUID(cookie.Value) {
		return ""
	}
	return cookie.Value
}

func attach(w http.ResponseWriter, r *http.Request, next http.Handler, registry *session.Registry, sid string) {
	browser, err := registry.Get(sid)
	switch {
	case errors.Is(err, session.ErrRegistryFull):
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "Muitas sessões ativas. Tente novamente em instantes.")
		return
	case err != nil:
		log.Error().Err(err).Msg("erro ao preparar sessão do navegador")
		writeError(w, http.StatusInternalServerError, CodeInternal, "erro interno")
		return
	}

	next.ServeHTTP(w, r.WithContext(WithBrowser(r.Context(), browser)))
}
