package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/config"
	"github.com/gestaozabele/presenca/internal/db"
	"github.com/gestaozabele/presenca/internal/events"
	internalhttp "github.com/gestaozabele/presenca/internal/http"
	"github.com/gestaozabele/presenca/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var pool *pgxpool.Pool
	if cfg.DBDSN != "" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	}

	var publisher events.Publisher = events.NewLoggingPublisher(log.With().Str("component", "events").Logger())
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicRegistros)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	defer publisher.Close()

	factory, err := newBrowserFactory(cfg, pool, redisClient)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}

	registry := session.NewRegistry(factory, session.RegistryOptions{
		IdleTTL:     cfg.SessionIdleTTL,
		InitTimeout: cfg.AuthInitTimeout,
		MaxEntries:  cfg.SessionMaxEntries,
	})
	registry.Start(ctx)
	defer registry.Stop()

	handler := internalhttp.NewRouter(internalhttp.Deps{
		Config:    cfg,
		Registry:  registry,
		Publisher: publisher,
		Pool:      pool,
		Redis:     redisClient,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("backend", cfg.Backend).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
