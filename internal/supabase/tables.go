package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
)

const selectRegistros = "*,profiles(nome,matricula)"

// TokenSource fornece o token de acesso do usuário corrente.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Tables implementa remote.Tables via PostgREST em nome do usuário.
type Tables struct {
	client *Client
	tokens TokenSource
}

var _ remote.Tables = (*Tables)(nil)

// Tables cria o acesso às tabelas; tokens nil usa a anon key.
func (c *Client) Tables(tokens TokenSource) *Tables {
	return &Tables{client: c, tokens: tokens}
}

func (t *Tables) from(ctx context.Context, table string) (*Query, error) {
	token := ""
	if t.tokens != nil {
		var err error
		token, err = t.tokens.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
	}
	return t.client.From(table, token), nil
}

func (t *Tables) GetProfile(ctx context.Context, id string) (*repo.Profile, error) {
	q, err := t.from(ctx, "profiles")
	if err != nil {
		return nil, err
	}
	var profile repo.Profile
	if err := q.Select("*").Eq("id", id).Single(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (t *Tables) UpdateProfile(ctx context.Context, id string, in repo.ProfileUpdate) error {
	q, err := t.from(ctx, "profiles")
	if err != nil {
		return err
	}
	var rows []repo.Profile
	if err := q.Update(in).Eq("id", id).Execute(ctx, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (t *Tables) ListRegistros(ctx context.Context, from, to string) ([]repo.RegistroPresenca, error) {
	q, err := t.from(ctx, "registros_presenca")
	if err != nil {
		return nil, err
	}
	var rows []repo.RegistroPresenca
	err = q.Select(selectRegistros).
		Gte("data", from).
		Lte("data", to).
		Order("data.asc").
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *Tables) FindRegistro(ctx context.Context, funcionarioID, data string) (*repo.RegistroPresenca, error) {
	q, err := t.from(ctx, "registros_presenca")
	if err != nil {
		return nil, err
	}
	var row repo.RegistroPresenca
	found, err := q.Select("*").Eq("funcionario_id", funcionarioID).Eq("data", data).MaybeSingle(ctx, &row)
	if errors.Is(err, ErrMultiplasLinhas) {
		return nil, fmt.Errorf("%w: %s em %s", repo.ErrRegistroDuplicado, funcionarioID, data)
	}
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (t *Tables) InsertRegistro(ctx context.Context, in repo.RegistroInput) (*repo.RegistroPresenca, error) {
	q, err := t.from(ctx, "registros_presenca")
	if err != nil {
		return nil, err
	}
	var rows []repo.RegistroPresenca
	if err := q.Insert([]repo.RegistroInput{in}).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repo.ErrNotFound
	}
	return &rows[0], nil
}

func (t *Tables) UpdateRegistro(ctx context.Context, id string, in repo.RegistroInput) error {
	q, err := t.from(ctx, "registros_presenca")
	if err != nil {
		return err
	}
	values := struct {
		Status      repo.Status `json:"status"`
		Observacoes *string     `json:"observacoes"`
		UpdatedAt   time.Time   `json:"updated_at"`
	}{in.Status, in.Observacoes, in.UpdatedAt}

	var rows []repo.RegistroPresenca
	if err := q.Update(values).Eq("id", id).Execute(ctx, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (t *Tables) ListFeriados(ctx context.Context, from, to string) ([]repo.Feriado, error) {
	q, err := t.from(ctx, "feriados")
	if err != nil {
		return nil, err
	}
	var rows []repo.Feriado
	err = q.Select("*").Gte("data", from).Lte("data", to).Order("data.asc").Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
