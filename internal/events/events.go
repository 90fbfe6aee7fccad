// Package events publica alterações de registros de presença.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/presenca/internal/repo"
)

// Tipos de evento emitidos pelo editor de registros.
const (
	TypeRegistroCriado     = "registro_presenca.criado"
	TypeRegistroAtualizado = "registro_presenca.atualizado"
)

// RegistroEvent é o payload publicado após salvar um registro.
type RegistroEvent struct {
	Type          string      `json:"type"`
	RegistroID    string      `json:"registro_id"`
	FuncionarioID string      `json:"funcionario_id"`
	Data          string      `json:"data"`
	Status        repo.Status `json:"status"`
	Observacoes   *string     `json:"observacoes,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// Publisher entrega eventos a um destino externo.
type Publisher interface {
	Publish(ctx context.Context, event RegistroEvent) error
	Close() error
}

// LoggingPublisher apenas registra o evento no log.
type LoggingPublisher struct {
	logger zerolog.Logger
}

func NewLoggingPublisher(logger zerolog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event RegistroEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.logger.Info().Str("type", event.Type).RawJSON("payload", payload).Msg("evento publicado")
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }
