package events

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/presenca/internal/repo"
)

func sampleEvent() RegistroEvent {
	obs := "plantão extra"
	return RegistroEvent{
		Type:          TypeRegistroCriado,
		RegistroID:    "r1",
		FuncionarioID: "u1",
		Data:          "2024-03-05",
		Status:        repo.StatusPlantao,
		Observacoes:   &obs,
		OccurredAt:    time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoggingPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	p := NewLoggingPublisher(zerolog.New(&buf))

	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"type":"registro_presenca.criado"`) || !strings.Contains(out, `"funcionario_id":"u1"`) {
		t.Fatalf("unexpected log line: %s", out)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestKafkaMessageKeyedByFuncionario(t *testing.T) {
	msg, err := toMessage(sampleEvent())
	if err != nil {
		t.Fatalf("to message: %v", err)
	}
	if string(msg.Key) != "u1" {
		t.Fatalf("expected key u1, got %s", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != TypeRegistroCriado {
		t.Fatalf("expected type header, got %+v", msg.Headers)
	}

	var decoded RegistroEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Status != repo.StatusPlantao || decoded.Observacoes == nil || *decoded.Observacoes != "plantão extra" {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestKafkaPublisherFlushesWithoutWaitingForBatch(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "presenca.registros")
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer p.Close()
	if p.writer.BatchTimeout <= 0 || p.writer.BatchTimeout > 50*time.Millisecond {
		t.Fatalf("expected short batch timeout, got %v", p.writer.BatchTimeout)
	}
	if p.writer.Async {
		t.Fatalf("expected synchronous writes so publish errors reach the caller")
	}
}

func TestNewKafkaPublisherValidation(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "presenca.registros"); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Fatalf("expected error without topic")
	}
}
