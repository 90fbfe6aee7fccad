package main

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/calendario"
	"github.com/gestaozabele/presenca/internal/config"
	"github.com/gestaozabele/presenca/internal/memory"
	"github.com/gestaozabele/presenca/internal/postgres"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/session"
	"github.com/gestaozabele/presenca/internal/supabase"
)

const (
	memoryAccessTTL = time.Hour
	tokenStoreTTL   = 30 * 24 * time.Hour
)

// newBrowserFactory monta, por navegador, o cliente de autenticação, as tabelas,
// o cache local e o agregador do calendário.
func newBrowserFactory(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) (session.Factory, error) {
	var sharedTables remote.Tables
	if pool != nil {
		sharedTables = postgres.NewTables(pool)
		log.Info().Msg("tabelas servidas pelo Postgres")
	}

	cacheTTL := cfg.SessionIdleTTL
	if cacheTTL < cfg.SessionCacheMaxAge {
		cacheTTL = cfg.SessionCacheMaxAge
	}

	stores := func(sid string) (remote.SessionStore, session.Cache) {
		if redisClient == nil {
			return remote.NewMemorySessionStore(), session.NewMemoryCache()
		}
		return session.NewRedisSessionStore(redisClient, sid, tokenStoreTTL), session.NewRedisCache(redisClient, sid, cacheTTL)
	}

	opts := session.Options{
		MaxAge:      cfg.SessionCacheMaxAge,
		InitTimeout: cfg.AuthInitTimeout,
	}

	build := func(authClient remote.Auth, tables remote.Tables, cache session.Cache) *session.Browser {
		return &session.Browser{
			Manager:  session.NewManager(authClient, tables, cache, opts),
			Calendar: calendario.NewAggregator(tables),
		}
	}

	switch cfg.Backend {
	case config.BackendSupabase:
		client, err := supabase.New(supabase.Config{
			URL:       cfg.SupabaseURL,
			AnonKey:   cfg.SupabaseAnonKey,
			JWTSecret: cfg.SupabaseJWTSecret,
			Timeout:   cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		return func(sid string) (*session.Browser, error) {
			store, cache := stores(sid)
			authClient := client.Auth(store)
			tables := sharedTables
			if tables == nil {
				tables = client.Tables(authClient)
			}
			return build(authClient, tables, cache), nil
		}, nil

	case config.BackendMemory:
		backend := memory.New(auth.NewJWTManager(cfg.JWTSecret, memoryAccessTTL))
		if cfg.MemorySeedFile != "" {
			seed, err := memory.LoadSeed(cfg.MemorySeedFile)
			if err != nil {
				return nil, err
			}
			if err := backend.ApplySeed(seed); err != nil {
				return nil, err
			}
			log.Info().Int("usuarios", len(seed.Usuarios)).Int("feriados", len(seed.Feriados)).Msg("seed aplicado")
		}
		return func(sid string) (*session.Browser, error) {
			store, cache := stores(sid)
			tables := sharedTables
			if tables == nil {
				tables = backend.Tables()
			}
			return build(backend.Auth(store), tables, cache), nil
		}, nil
	}

	return nil, fmt.Errorf("backend %q não suportado", cfg.Backend)
}
