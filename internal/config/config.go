package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Backends suportados para autenticação e tabelas.
const (
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port     int
	LogLevel zerolog.Level
	Backend  string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	DBDSN             string
	RedisURL          string
	MemorySeedFile    string
	JWTSecret         string

	SessionCacheMaxAge time.Duration
	AuthInitTimeout    time.Duration
	RequestTimeout     time.Duration
	SessionIdleTTL     time.Duration
	SessionMaxEntries  int

	AllowOrigins      []string
	CookieSecure      bool
	TrustProxyHeaders bool
	RateLimitPublic   RateLimitConfig
	RateLimitAuth     RateLimitConfig

	KafkaBrokers        []string
	KafkaTopicRegistros string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))))
	if err != nil || level == zerolog.NoLevel {
		return nil, errors.New("LOG_LEVEL inválido")
	}
	cfg.LogLevel = level

	cfg.Backend = strings.ToLower(strings.TrimSpace(getEnv("BACKEND", BackendSupabase)))
	switch cfg.Backend {
	case BackendSupabase:
		cfg.SupabaseURL = strings.TrimSpace(getEnv("SUPABASE_URL", ""))
		if cfg.SupabaseURL == "" {
			return nil, errors.New("SUPABASE_URL obrigatório")
		}
		cfg.SupabaseAnonKey = strings.TrimSpace(getEnv("SUPABASE_ANON_KEY", ""))
		if cfg.SupabaseAnonKey == "" {
			return nil, errors.New("SUPABASE_ANON_KEY obrigatório")
		}
		cfg.SupabaseJWTSecret = strings.TrimSpace(getEnv("SUPABASE_JWT_SECRET", ""))
	case BackendMemory:
		cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
		if len(cfg.JWTSecret) < 32 {
			return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
		}
		cfg.MemorySeedFile = strings.TrimSpace(getEnv("MEMORY_SEED_FILE", ""))
	default:
		return nil, errors.New("BACKEND deve ser supabase ou memory")
	}

	cfg.DBDSN = strings.TrimSpace(getEnv("DB_DSN", ""))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	if cfg.SessionCacheMaxAge, err = parseDurationEnv("SESSION_CACHE_MAX_AGE", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AuthInitTimeout, err = parseDurationEnv("AUTH_INIT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = parseDurationEnv("SESSION_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	maxEntries, err := strconv.Atoi(getEnv("SESSION_MAX_ENTRIES", "10000"))
	if err != nil || maxEntries <= 0 {
		return nil, errors.New("SESSION_MAX_ENTRIES inválido")
	}
	cfg.SessionMaxEntries = maxEntries

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	secureDefault := true
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			secureDefault = false
		}
	}
	cfg.CookieSecure = secureDefault
	if raw := strings.TrimSpace(getEnv("COOKIE_SECURE", "")); raw != "" {
		secure, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("COOKIE_SECURE inválido")
		}
		cfg.CookieSecure = secure
	}

	if raw := strings.TrimSpace(getEnv("TRUST_PROXY_HEADERS", "")); raw != "" {
		trust, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("TRUST_PROXY_HEADERS inválido")
		}
		cfg.TrustProxyHeaders = trust
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}

	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopicRegistros = strings.TrimSpace(getEnv("KAFKA_TOPIC_REGISTROS", "presenca.registros"))

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
