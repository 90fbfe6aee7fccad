package registro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/events"
	"github.com/gestaozabele/presenca/internal/memory"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

type recordingPublisher struct {
	events []events.RegistroEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.RegistroEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newEditor(t *testing.T) (*Editor, *memory.Backend, *recordingPublisher) {
	t.Helper()
	b := memory.New(auth.NewJWTManager("segredo-de-teste-com-mais-de-32-caracteres", time.Hour))
	if _, err := b.AddUser("ana@empresa.com.br", "hash", repo.Profile{ID: "u1", Nome: "Ana"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	pub := &recordingPublisher{}
	return NewEditor(b.Tables(), pub), b, pub
}

func countRegistros(t *testing.T, b *memory.Backend) int {
	t.Helper()
	list, err := b.Tables().ListRegistros(context.Background(), "0001-01-01", "9999-12-31")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return len(list)
}

func TestSaveInsertsWhenAbsent(t *testing.T) {
	editor, b, pub := newEditor(t)
	ctx := context.Background()

	result, err := editor.Save(ctx, "u1", "2024-03-10", "presencial", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !result.Criado || result.Mensagem() != "Registro criado com sucesso!" {
		t.Fatalf("expected insert, got %+v", result)
	}
	if b.Calls(memory.OpInsertRegistro) != 1 || b.Calls(memory.OpUpdateRegistro) != 0 {
		t.Fatalf("expected exactly one insert")
	}

	found, err := editor.FindExisting(ctx, "u1", "2024-03-10")
	if err != nil || found == nil {
		t.Fatalf("expected record, got %v %v", found, err)
	}
	if found.Status != repo.StatusPresencial || found.Observacoes != nil {
		t.Fatalf("unexpected record: %+v", found)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TypeRegistroCriado || pub.events[0].FuncionarioID != "u1" {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestSaveUpdatesInPlace(t *testing.T) {
	editor, b, pub := newEditor(t)
	ctx := context.Background()
	if _, err := editor.Save(ctx, "u1", "2024-03-10", "folga", ""); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := editor.Save(ctx, "u1", "2024-03-10", "ferias", "viagem")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Criado || result.Mensagem() != "Registro atualizado com sucesso!" {
		t.Fatalf("expected update, got %+v", result)
	}
	if countRegistros(t, b) != 1 {
		t.Fatalf("expected record count unchanged")
	}

	found, _ := editor.FindExisting(ctx, "u1", "2024-03-10")
	if found.Status != repo.StatusFerias || found.Observacoes == nil || *found.Observacoes != "viagem" {
		t.Fatalf("expected updated record, got %+v", found)
	}
	if last := pub.events[len(pub.events)-1]; last.Type != events.TypeRegistroAtualizado {
		t.Fatalf("expected update event, got %s", last.Type)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	editor, b, _ := newEditor(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := editor.Save(ctx, "u1", "2024-03-12", "home_office", "  reunião remota  "); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if countRegistros(t, b) != 1 {
		t.Fatalf("expected exactly one stored record")
	}
	found, _ := editor.FindExisting(ctx, "u1", "2024-03-12")
	if found.Status != repo.StatusHomeOffice || *found.Observacoes != "reunião remota" {
		t.Fatalf("unexpected record: %+v", found)
	}
}

func TestSaveValidation(t *testing.T) {
	editor, b, _ := newEditor(t)
	ctx := context.Background()

	if _, err := editor.Save(ctx, "u1", "2024-03-10", "remoto", ""); !errors.Is(err, ErrStatusInvalido) || !errors.Is(err, util.ErrValidacao) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := editor.Save(ctx, "u1", "10/03/2024", "folga", ""); !errors.Is(err, ErrDataInvalida) {
		t.Fatalf("expected invalid date, got %v", err)
	}
	if _, err := editor.Save(ctx, " ", "2024-03-10", "folga", ""); !errors.Is(err, ErrFuncionarioObrigatorio) {
		t.Fatalf("expected missing employee, got %v", err)
	}
	if countRegistros(t, b) != 0 {
		t.Fatalf("invalid input must not write")
	}
}

func TestSaveFailures(t *testing.T) {
	editor, b, pub := newEditor(t)
	ctx := context.Background()

	b.FailNext(memory.OpFindRegistro, errors.New("rede"))
	if _, err := editor.Save(ctx, "u1", "2024-03-10", "folga", ""); err == nil {
		t.Fatalf("expected lookup failure to stop the save")
	}
	if b.Calls(memory.OpInsertRegistro) != 0 {
		t.Fatalf("must not insert after a failed lookup")
	}

	pub.err = errors.New("broker indisponível")
	if _, err := editor.Save(ctx, "u1", "2024-03-10", "folga", ""); err != nil {
		t.Fatalf("publish failure must not fail the save: %v", err)
	}
}
