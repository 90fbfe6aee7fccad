package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/db"
	"github.com/gestaozabele/presenca/internal/memory"
	"github.com/gestaozabele/presenca/internal/postgres"
	"github.com/gestaozabele/presenca/internal/repo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "list":
		if err := runList(ctx, pool, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar feriados")
		}
	case "import":
		if err := runImport(ctx, pool, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao importar feriados")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "feriados CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  feriados list [--de 2024-01-01] [--ate 2024-12-31]")
	fmt.Fprintln(os.Stderr, "  feriados import feriados.yaml")
}

func runList(ctx context.Context, pool *pgxpool.Pool, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	year := time.Now().Year()
	var (
		de  = fs.String("de", fmt.Sprintf("%d-01-01", year), "data inicial (yyyy-MM-dd)")
		ate = fs.String("ate", fmt.Sprintf("%d-12-31", year), "data final (yyyy-MM-dd)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := repo.NormalizeDate(*de)
	if err != nil {
		return fmt.Errorf("--de: %w", err)
	}
	to, err := repo.NormalizeDate(*ate)
	if err != nil {
		return fmt.Errorf("--ate: %w", err)
	}

	feriados, err := postgres.NewTables(pool).ListFeriados(ctx, from, to)
	if err != nil {
		return err
	}

	if len(feriados) == 0 {
		fmt.Println("nenhum feriado no período")
		return nil
	}

	encoded, _ := json.MarshalIndent(feriados, "", "  ")
	fmt.Println(string(encoded))
	return nil
}

func runImport(ctx context.Context, pool *pgxpool.Pool, args []string) error {
	if len(args) != 1 {
		return errors.New("informe o arquivo YAML")
	}

	seed, err := memory.LoadSeed(args[0])
	if err != nil {
		return err
	}
	if len(seed.Feriados) == 0 {
		return errors.New("arquivo sem feriados")
	}

	feriados := make([]repo.Feriado, 0, len(seed.Feriados))
	for _, f := range seed.Feriados {
		feriados = append(feriados, repo.Feriado{Nome: f.Nome, Data: f.Data, Tipo: f.Tipo})
	}

	var result postgres.ImportResult
	err = db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		result, err = postgres.ImportFeriados(ctx, tx, feriados)
		return err
	})
	if err != nil {
		return err
	}

	log.Info().Int("inseridos", result.Inseridos).Int("atualizados", result.Atualizados).Msg("feriados importados")
	return nil
}
