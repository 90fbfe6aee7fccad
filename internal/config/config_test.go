package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadMemoryDefaults(t *testing.T) {
	t.Setenv("BACKEND", "memory")
	t.Setenv("JWT_SECRET", "segredo-de-teste-com-mais-de-32-caracteres")
	t.Setenv("ALLOW_ORIGINS", "http://localhost:5173, https://*.empresa.com.br")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.LogLevel != zerolog.InfoLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionCacheMaxAge != 5*time.Minute || cfg.AuthInitTimeout != 10*time.Second {
		t.Fatalf("unexpected session timings: %v %v", cfg.SessionCacheMaxAge, cfg.AuthInitTimeout)
	}
	if cfg.SessionMaxEntries != 10000 || cfg.TrustProxyHeaders {
		t.Fatalf("unexpected session limit or proxy trust: %d %v", cfg.SessionMaxEntries, cfg.TrustProxyHeaders)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.CookieSecure {
		t.Fatalf("expected two origins and insecure cookie for localhost, got %+v", cfg.AllowOrigins)
	}
	if cfg.KafkaTopicRegistros != "presenca.registros" || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("unexpected kafka config: %v %s", cfg.KafkaBrokers, cfg.KafkaTopicRegistros)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("BACKEND", "memory")
	t.Setenv("JWT_SECRET", "curto")
	if _, err := Load(); err == nil {
		t.Fatalf("expected short JWT_SECRET to be rejected")
	}

	t.Setenv("BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected SUPABASE_URL to be required")
	}

	t.Setenv("SUPABASE_URL", "https://projeto.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SESSION_CACHE_MAX_AGE", "cinco")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid duration to be rejected")
	}

	t.Setenv("SESSION_CACHE_MAX_AGE", "2m")
	t.Setenv("SESSION_MAX_ENTRIES", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected non positive SESSION_MAX_ENTRIES to be rejected")
	}

	t.Setenv("SESSION_MAX_ENTRIES", "500")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionCacheMaxAge != 2*time.Minute || !cfg.CookieSecure || !cfg.TrustProxyHeaders || cfg.SessionMaxEntries != 500 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
