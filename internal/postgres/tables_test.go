package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/presenca/internal/db"
	"github.com/gestaozabele/presenca/internal/repo"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN não definido")
	}
	pool, err := db.NewPool(context.Background(), dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestImportAndListFeriados(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	feriados := []repo.Feriado{
		{Nome: "Teste A", Data: "2099-01-02", Tipo: "nacional"},
		{Nome: "Teste B", Data: "2099-01-03", Tipo: "municipal"},
	}

	errRollback := errors.New("rollback")
	err := db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		result, err := ImportFeriados(ctx, tx, feriados)
		if err != nil {
			return err
		}
		if result.Inseridos+result.Atualizados != 2 {
			t.Fatalf("expected two rows touched, got %+v", result)
		}
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("expected rollback, got %v", err)
	}

	list, err := NewTables(pool).ListFeriados(ctx, "2099-01-01", "2099-01-31")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected rolled back import to leave no rows, got %d", len(list))
	}
}

func TestImportRejectsInvalidDate(t *testing.T) {
	pool := newTestPool(t)
	err := db.WithTx(context.Background(), pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := ImportFeriados(ctx, tx, []repo.Feriado{{Nome: "Inválido", Data: "2099-13-01"}})
		return err
	})
	if !errors.Is(err, repo.ErrDataInvalida) {
		t.Fatalf("expected ErrDataInvalida, got %v", err)
	}
}

func TestFindRegistroMissing(t *testing.T) {
	pool := newTestPool(t)
	got, err := NewTables(pool).FindRegistro(context.Background(), "00000000-0000-0000-0000-000000000000", "2099-01-01")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing record, got %+v %v", got, err)
	}
}
