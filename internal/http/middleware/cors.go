package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowHeaders = "Content-Type, X-Requested-With"
	corsAllowMethods = "GET,POST,PUT,OPTIONS"
)

// CORS libera as origens de ALLOW_ORIGINS com credenciais, já que a sessão vive em cookie.
// Entradas aceitas: origem exata (https://presenca.empresa.com.br) ou
// wildcard de subdomínio (*.empresa.com.br).
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := newOriginMatcher(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed.match(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type originMatcher struct {
	exact    map[string]struct{}
	suffixes []string
}

func newOriginMatcher(entries []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		e := strings.TrimSpace(entry)
		if e == "" {
			continue
		}
		if strings.HasPrefix(e, "*.") {
			// guarda ".dominio"
			m.suffixes = append(m.suffixes, strings.ToLower(strings.TrimPrefix(e, "*")))
			continue
		}
		m.exact[e] = struct{}{}
	}
	return m
}

func (m originMatcher) match(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suf := range m.suffixes {
		// exige subdomínio: a raiz do sufixo não casa
		if strings.HasSuffix(host, suf) && host != strings.TrimPrefix(suf, ".") {
			return true
		}
	}
	return false
}
