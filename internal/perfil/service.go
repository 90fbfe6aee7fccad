// Package perfil edita o perfil do usuário autenticado.
package perfil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/session"
	"github.com/gestaozabele/presenca/internal/util"
)

// MensagemAtualizado é exibida após salvar o perfil.
const MensagemAtualizado = "Perfil atualizado com sucesso!"

// ErrSemPerfil indica que o perfil ainda não foi carregado.
var ErrSemPerfil = errors.New("perfil não carregado")

// Owner é o dono do perfil: o Manager do navegador.
type Owner interface {
	State() session.State
	Tables() remote.Tables
	RefreshProfile(ctx context.Context)
}

// Input traz os campos do formulário.
type Input struct {
	Nome              string `json:"nome"`
	Matricula         string `json:"matricula"`
	Email             string `json:"email"`
	PatrimonioEstacao string `json:"patrimonio_estacao"`
}

// Service aplica a edição e recarrega o perfil.
type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: util.Now}
}

// Update grava os campos aparados e devolve o perfil recarregado.
func (s *Service) Update(ctx context.Context, owner Owner, in Input) (*repo.Profile, error) {
	current := owner.State().Profile
	if current == nil {
		return nil, ErrSemPerfil
	}

	update := repo.ProfileUpdate{
		Nome:              strings.TrimSpace(in.Nome),
		Matricula:         strings.TrimSpace(in.Matricula),
		Email:             strings.TrimSpace(in.Email),
		PatrimonioEstacao: util.OptionalString(in.PatrimonioEstacao),
		UpdatedAt:         s.now(),
	}
	if err := util.RequireString(update.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(update.Matricula, "matrícula"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(update.Email); err != nil {
		return nil, err
	}

	if err := owner.Tables().UpdateProfile(ctx, current.ID, update); err != nil {
		return nil, fmt.Errorf("atualizar perfil: %w", err)
	}

	owner.RefreshProfile(ctx)
	return owner.State().Profile, nil
}
