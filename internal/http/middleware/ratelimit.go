package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterMaxAge = 10 * time.Minute

// RateLimiter mantém limiters por chave com expiração simples.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
	store     map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	limiter *rate.Limiter
	updated time.Time
}

// NewRateLimiter cria instância compatível com múltiplas chaves.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit: rate.Limit(reqPerSec),
		burst: burst,
		store: make(map[string]*limiterEntry),
	}
}

// Allow consome um token da chave.
func (r *RateLimiter) Allow(key string) bool {
	return r.get(key).Allow()
}

func (r *RateLimiter) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if entry, ok := r.store[key]; ok {
		entry.updated = now
		return entry.limiter
	}

	lim := rate.NewLimiter(r.limit, r.burst)
	r.store[key] = &limiterEntry{limiter: lim, updated: now}

	if now.Sub(r.lastSweep) > time.Minute {
		r.lastSweep = now
		for k, entry := range r.store {
			if now.Sub(entry.updated) > limiterMaxAge {
				delete(r.store, k)
			}
		}
	}

	return lim
}

// LimitByKey aplica rate limit por chave arbitrária.
func (r *RateLimiter) LimitByKey(next http.Handler, keyFunc func(*http.Request) (string, bool)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key, ok := keyFunc(req)
		if !ok || key == "" {
			next.ServeHTTP(w, req)
			return
		}

		if !r.Allow(key) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, CodeRateLimit, "Muitas tentativas. Aguarde alguns segundos.")
			return
		}

		next.ServeHTTP(w, req)
	})
}

// IPRateLimit utiliza IP remoto como chave. Cabeçalhos de proxy só contam
// quando o roteador aplica chi RealIP (TRUST_PROXY_HEADERS).
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			return clientIP(r), true
		})
	}
}

// BrowserRateLimit utiliza o navegador da requisição como chave. Usar após Sessions.
func BrowserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			browser := GetBrowser(r.Context())
			if browser == nil {
				return "", false
			}
			return "sid:" + browser.ID, true
		})
	}
}

// UserRateLimit utiliza o usuário autenticado como chave. Usar após RequireAuth.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			subject := GetSubject(r.Context())
			if subject == "" {
				return "", false
			}
			return "user:" + subject, true
		})
	}
}

// clientIP usa apenas RemoteAddr, já reescrito por chi RealIP quando há proxy confiável.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
