package memory

import (
	"context"
	"sort"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

// Tables implementa remote.Tables sobre o Backend.
type Tables struct {
	backend *Backend
}

var _ remote.Tables = (*Tables)(nil)

func (t *Tables) GetProfile(ctx context.Context, id string) (*repo.Profile, error) {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetProfile); err != nil {
		return nil, err
	}
	p, ok := b.profiles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (t *Tables) UpdateProfile(ctx context.Context, id string, in repo.ProfileUpdate) error {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpUpdateProfile); err != nil {
		return err
	}
	p, ok := b.profiles[id]
	if !ok {
		return repo.ErrNotFound
	}
	updated := in.UpdatedAt
	p.Nome = in.Nome
	p.Matricula = in.Matricula
	p.Email = in.Email
	p.PatrimonioEstacao = copyString(in.PatrimonioEstacao)
	p.UpdatedAt = &updated
	b.profiles[id] = p

	// Metadados do usuário acompanham o perfil.
	if rec, ok := b.users[id]; ok {
		rec.user.Metadata["nome"] = p.Nome
		rec.user.Metadata["matricula"] = p.Matricula
	}
	return nil
}

// ListRegistros devolve registros com data em [from, to], ordenados por data.
func (t *Tables) ListRegistros(ctx context.Context, from, to string) ([]repo.RegistroPresenca, error) {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpListRegistros); err != nil {
		return nil, err
	}

	out := make([]repo.RegistroPresenca, 0)
	for _, r := range b.registros {
		if r.Data < from || r.Data > to {
			continue
		}
		item := cloneRegistro(r)
		if p, ok := b.profiles[r.FuncionarioID]; ok {
			item.Funcionario = &repo.FuncionarioResumo{Nome: p.Nome, Matricula: p.Matricula}
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Data < out[j].Data
	})
	return out, nil
}

// FindRegistro segue maybeSingle: nil sem linhas, erro com mais de uma.
func (t *Tables) FindRegistro(ctx context.Context, funcionarioID, data string) (*repo.RegistroPresenca, error) {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpFindRegistro); err != nil {
		return nil, err
	}

	var found *repo.RegistroPresenca
	for _, r := range b.registros {
		if r.FuncionarioID != funcionarioID || r.Data != data {
			continue
		}
		if found != nil {
			return nil, repo.ErrRegistroDuplicado
		}
		item := cloneRegistro(r)
		found = &item
	}
	return found, nil
}

func (t *Tables) InsertRegistro(ctx context.Context, in repo.RegistroInput) (*repo.RegistroPresenca, error) {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpInsertRegistro); err != nil {
		return nil, err
	}

	created := b.now()
	updated := in.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	r := repo.RegistroPresenca{
		ID:            util.NewID(),
		FuncionarioID: in.FuncionarioID,
		Data:          in.Data,
		Status:        in.Status,
		Observacoes:   copyString(in.Observacoes),
		CreatedAt:     &created,
		UpdatedAt:     &updated,
	}
	b.registros = append(b.registros, r)
	out := cloneRegistro(r)
	return &out, nil
}

func (t *Tables) UpdateRegistro(ctx context.Context, id string, in repo.RegistroInput) error {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpUpdateRegistro); err != nil {
		return err
	}

	for i := range b.registros {
		if b.registros[i].ID != id {
			continue
		}
		updated := in.UpdatedAt
		b.registros[i].FuncionarioID = in.FuncionarioID
		b.registros[i].Data = in.Data
		b.registros[i].Status = in.Status
		b.registros[i].Observacoes = copyString(in.Observacoes)
		b.registros[i].UpdatedAt = &updated
		return nil
	}
	return repo.ErrNotFound
}

// ListFeriados devolve feriados com data em [from, to].
func (t *Tables) ListFeriados(ctx context.Context, from, to string) ([]repo.Feriado, error) {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpListFeriados); err != nil {
		return nil, err
	}

	out := make([]repo.Feriado, 0)
	for _, f := range b.feriados {
		if f.Data < from || f.Data > to {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Data < out[j].Data
	})
	return out, nil
}

func cloneProfile(p repo.Profile) *repo.Profile {
	p.PatrimonioEstacao = copyString(p.PatrimonioEstacao)
	return &p
}

func cloneRegistro(r repo.RegistroPresenca) repo.RegistroPresenca {
	r.Observacoes = copyString(r.Observacoes)
	r.Funcionario = nil
	return r
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
