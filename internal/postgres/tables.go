// Package postgres implementa as tabelas do serviço de dados direto no banco.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
)

const dbTimeout = 3 * time.Second

// Tables acessa profiles, registros_presenca e feriados via pgx.
type Tables struct {
	pool *pgxpool.Pool
}

var _ remote.Tables = (*Tables)(nil)

// NewTables cria o adaptador sobre o pool.
func NewTables(pool *pgxpool.Pool) *Tables {
	return &Tables{pool: pool}
}

func (t *Tables) GetProfile(ctx context.Context, id string) (*repo.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        SELECT id::text, nome, matricula, email, patrimonio_estacao, is_admin, created_at, updated_at
        FROM profiles
        WHERE id = $1
    `
	var p repo.Profile
	err := t.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Nome, &p.Matricula, &p.Email, &p.PatrimonioEstacao, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *Tables) UpdateProfile(ctx context.Context, id string, in repo.ProfileUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        UPDATE profiles
        SET nome = $2, matricula = $3, email = $4, patrimonio_estacao = $5, updated_at = $6
        WHERE id = $1
    `
	tag, err := t.pool.Exec(ctx, query, id, in.Nome, in.Matricula, in.Email, in.PatrimonioEstacao, in.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (t *Tables) ListRegistros(ctx context.Context, from, to string) ([]repo.RegistroPresenca, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        SELECT r.id::text, r.funcionario_id::text, r.data::text, r.status, r.observacoes, r.created_at, r.updated_at,
               p.nome, p.matricula
        FROM registros_presenca r
        LEFT JOIN profiles p ON p.id = r.funcionario_id
        WHERE r.data >= $1::date AND r.data <= $2::date
        ORDER BY r.data
    `
	rows, err := t.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repo.RegistroPresenca, 0)
	for rows.Next() {
		var (
			r         repo.RegistroPresenca
			nome      *string
			matricula *string
		)
		if err := rows.Scan(&r.ID, &r.FuncionarioID, &r.Data, &r.Status, &r.Observacoes, &r.CreatedAt, &r.UpdatedAt, &nome, &matricula); err != nil {
			return nil, err
		}
		if nome != nil {
			r.Funcionario = &repo.FuncionarioResumo{Nome: *nome}
			if matricula != nil {
				r.Funcionario.Matricula = *matricula
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindRegistro devolve nil quando não há registro para o dia.
func (t *Tables) FindRegistro(ctx context.Context, funcionarioID, data string) (*repo.RegistroPresenca, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        SELECT id::text, funcionario_id::text, data::text, status, observacoes, created_at, updated_at
        FROM registros_presenca
        WHERE funcionario_id = $1 AND data = $2::date
        LIMIT 2
    `
	rows, err := t.pool.Query(ctx, query, funcionarioID, data)
	if err != nil {
		return nil, err
	}
	found, err := pgx.CollectRows(rows, scanRegistro)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s em %s", repo.ErrRegistroDuplicado, funcionarioID, data)
	}
}

func (t *Tables) InsertRegistro(ctx context.Context, in repo.RegistroInput) (*repo.RegistroPresenca, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        INSERT INTO registros_presenca (funcionario_id, data, status, observacoes, updated_at)
        VALUES ($1, $2::date, $3, $4, $5)
        RETURNING id::text, funcionario_id::text, data::text, status, observacoes, created_at, updated_at
    `
	rows, err := t.pool.Query(ctx, query, in.FuncionarioID, in.Data, string(in.Status), in.Observacoes, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r, err := pgx.CollectExactlyOneRow(rows, scanRegistro)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *Tables) UpdateRegistro(ctx context.Context, id string, in repo.RegistroInput) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        UPDATE registros_presenca
        SET status = $2, observacoes = $3, updated_at = $4
        WHERE id = $1
    `
	tag, err := t.pool.Exec(ctx, query, id, string(in.Status), in.Observacoes, in.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (t *Tables) ListFeriados(ctx context.Context, from, to string) ([]repo.Feriado, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        SELECT id::text, nome, data::text, tipo
        FROM feriados
        WHERE data >= $1::date AND data <= $2::date
        ORDER BY data
    `
	rows, err := t.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repo.Feriado, error) {
		var f repo.Feriado
		err := row.Scan(&f.ID, &f.Nome, &f.Data, &f.Tipo)
		return f, err
	})
}

func scanRegistro(row pgx.CollectableRow) (repo.RegistroPresenca, error) {
	var r repo.RegistroPresenca
	err := row.Scan(&r.ID, &r.FuncionarioID, &r.Data, &r.Status, &r.Observacoes, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
