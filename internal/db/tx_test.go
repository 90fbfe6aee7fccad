package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type stubTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *stubTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type stubBeginner struct {
	tx   *stubTx
	err  error
	opts pgx.TxOptions
}

func (b *stubBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	b := &stubBeginner{tx: &stubTx{}}
	if err := WithTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error { return nil }); err != nil {
		t.Fatalf("with tx: %v", err)
	}
	if !b.tx.committed || b.tx.rolledBack {
		t.Fatalf("expected commit only, got %+v", b.tx)
	}
	if b.opts.IsoLevel != pgx.ReadCommitted {
		t.Fatalf("expected read committed, got %q", b.opts.IsoLevel)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	b := &stubBeginner{tx: &stubTx{}}
	boom := errors.New("feriado inválido")
	err := WithTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if b.tx.committed || !b.tx.rolledBack {
		t.Fatalf("expected rollback only, got %+v", b.tx)
	}
}

func TestWithTxWrapsBeginAndCommitErrors(t *testing.T) {
	down := errors.New("conexão recusada")
	if err := WithTx(context.Background(), &stubBeginner{err: down}, func(ctx context.Context, tx pgx.Tx) error {
		t.Fatalf("fn must not run")
		return nil
	}); !errors.Is(err, down) {
		t.Fatalf("expected begin error, got %v", err)
	}

	b := &stubBeginner{tx: &stubTx{commitErr: down}}
	if err := WithTx(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error { return nil }); !errors.Is(err, down) {
		t.Fatalf("expected commit error, got %v", err)
	}
}
