// Package registro cria ou atualiza o registro de presença de um dia.
package registro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/events"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

var (
	// ErrStatusInvalido indica status fora das sete opções.
	ErrStatusInvalido = util.Invalid("status inválido")
	// ErrDataInvalida indica data fora do formato yyyy-MM-dd.
	ErrDataInvalida = repo.ErrDataInvalida
	// ErrFuncionarioObrigatorio indica registro sem dono.
	ErrFuncionarioObrigatorio = util.Invalid("funcionário obrigatório")
)

// SaveResult descreve o desfecho de Save.
type SaveResult struct {
	Registro *repo.RegistroPresenca `json:"registro"`
	Criado   bool                   `json:"criado"`
}

// Mensagem devolve o texto exibido após salvar.
func (r SaveResult) Mensagem() string {
	if r.Criado {
		return "Registro criado com sucesso!"
	}
	return "Registro atualizado com sucesso!"
}

// Editor lê antes de escrever para manter um registro por funcionário e dia.
type Editor struct {
	tables    remote.Tables
	publisher events.Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewEditor cria o editor; publisher pode ser nil.
func NewEditor(tables remote.Tables, publisher events.Publisher) *Editor {
	return &Editor{
		tables:    tables,
		publisher: publisher,
		now:       util.Now,
		logger:    log.With().Str("component", "registro").Logger(),
	}
}

// FindExisting devolve o registro do funcionário no dia ou nil.
func (e *Editor) FindExisting(ctx context.Context, funcionarioID, data string) (*repo.RegistroPresenca, error) {
	if strings.TrimSpace(funcionarioID) == "" {
		return nil, ErrFuncionarioObrigatorio
	}
	day, err := repo.NormalizeDate(data)
	if err != nil {
		return nil, ErrDataInvalida
	}
	existing, err := e.tables.FindRegistro(ctx, funcionarioID, day)
	if err != nil {
		return nil, fmt.Errorf("verificar registro existente: %w", err)
	}
	return existing, nil
}

// Save atualiza o registro existente do dia ou insere um novo.
// Observações em branco são gravadas como nulas.
func (e *Editor) Save(ctx context.Context, funcionarioID, data, status, observacoes string) (SaveResult, error) {
	parsed, err := repo.ParseStatus(status)
	if err != nil {
		return SaveResult{}, ErrStatusInvalido
	}
	day, err := repo.NormalizeDate(data)
	if err != nil {
		return SaveResult{}, ErrDataInvalida
	}

	existing, err := e.FindExisting(ctx, funcionarioID, day)
	if err != nil {
		return SaveResult{}, err
	}

	now := e.now()
	in := repo.RegistroInput{
		FuncionarioID: funcionarioID,
		Data:          day,
		Status:        parsed,
		Observacoes:   util.OptionalString(observacoes),
		UpdatedAt:     now,
	}

	var result SaveResult
	if existing != nil {
		if err := e.tables.UpdateRegistro(ctx, existing.ID, in); err != nil {
			return SaveResult{}, fmt.Errorf("atualizar registro: %w", err)
		}
		existing.Status = in.Status
		existing.Observacoes = in.Observacoes
		existing.UpdatedAt = &now
		result = SaveResult{Registro: existing}
	} else {
		created, err := e.tables.InsertRegistro(ctx, in)
		if err != nil {
			return SaveResult{}, fmt.Errorf("criar registro: %w", err)
		}
		result = SaveResult{Registro: created, Criado: true}
	}

	e.publish(ctx, result)
	return result, nil
}

func (e *Editor) publish(ctx context.Context, result SaveResult) {
	if e.publisher == nil || result.Registro == nil {
		return
	}
	eventType := events.TypeRegistroAtualizado
	if result.Criado {
		eventType = events.TypeRegistroCriado
	}
	r := result.Registro
	err := e.publisher.Publish(ctx, events.RegistroEvent{
		Type:          eventType,
		RegistroID:    r.ID,
		FuncionarioID: r.FuncionarioID,
		Data:          r.Data,
		Status:        r.Status,
		Observacoes:   r.Observacoes,
		OccurredAt:    e.now(),
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("registro_id", r.ID).Msg("falha ao publicar evento")
	}
}
