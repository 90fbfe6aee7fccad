package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/presenca/internal/config"
	"github.com/gestaozabele/presenca/internal/events"
	httpmiddleware "github.com/gestaozabele/presenca/internal/http/middleware"
	"github.com/gestaozabele/presenca/internal/perfil"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/session"
)

// Deps reúne as dependências montadas em cmd/api. Pool e Redis são opcionais.
type Deps struct {
	Config    *config.Config
	Registry  *session.Registry
	Publisher events.Publisher
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Location  *time.Location
}

type Handler struct {
	cfg           *config.Config
	registry      *session.Registry
	publisher     events.Publisher
	pool          *pgxpool.Pool
	redis         *redis.Client
	perfil        *perfil.Service
	loc           *time.Location
	now           func() time.Time
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}

	h := &Handler{
		cfg:           cfg,
		registry:      deps.Registry,
		publisher:     deps.Publisher,
		pool:          deps.Pool,
		redis:         deps.Redis,
		perfil:        perfil.NewService(),
		loc:           loc,
		now:           time.Now,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Get("/status", h.StatusCatalog)
	})

	r.Group(func(browser chi.Router) {
		browser.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
		browser.Use(httpmiddleware.ExistingSession(deps.Registry))

		browser.Route("/auth", func(auth chi.Router) {
			auth.Get("/sessao", h.Sessao)
			auth.Post("/logout", h.Logout)
			auth.Group(func(limited chi.Router) {
				limited.Use(httpmiddleware.IPRateLimit(h.authLimiter))
				limited.Use(httpmiddleware.Sessions(deps.Registry, cfg.CookieSecure))
				limited.Use(httpmiddleware.BrowserRateLimit(h.authLimiter))
				limited.Post("/login", h.Login)
				limited.Post("/cadastro", h.Cadastro)
			})
		})

		browser.Group(func(private chi.Router) {
			private.Use(httpmiddleware.RequireAuth)
			private.Use(httpmiddleware.UserRateLimit(h.publicLimiter))

			private.Get("/calendario", h.Calendario)
			private.Get("/registros", h.GetRegistro)
			private.Put("/registros", h.SaveRegistro)
			private.Get("/perfil", h.GetPerfil)
			private.Put("/perfil", h.UpdatePerfil)

			private.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireAdmin)
				admin.Get("/calendario/exportar", h.ExportCalendario)
			})
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis quando configurados.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var dbErr, redisErr error
	if h.pool != nil {
		dbErr = h.pool.Ping(ctx)
	}
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, CodeUnavailable, "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"ready":    true,
		"sessions": h.registry.Len(),
	})
}

// StatusCatalog devolve as opções de status com rótulo e cor.
func (h *Handler) StatusCatalog(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, repo.Catalogo())
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
