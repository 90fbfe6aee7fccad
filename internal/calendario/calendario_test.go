package calendario

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/memory"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func day(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func newBackend(t *testing.T) *memory.Backend {
	t.Helper()
	b := memory.New(auth.NewJWTManager("segredo-de-teste-com-mais-de-32-caracteres", time.Hour))
	for i, nome := range []string{"Ana Souza", "Bruno Lima", "Carla Dias", "Diego Alves"} {
		id := []string{"u1", "u2", "u3", "u4"}[i]
		if _, err := b.AddUser(id+"@empresa.com.br", "hash", repo.Profile{ID: id, Nome: nome, Matricula: "00" + id[1:]}); err != nil {
			t.Fatalf("add user: %v", err)
		}
	}
	b.AddFeriado(repo.Feriado{Nome: "Sexta-feira Santa", Data: "2024-03-29", Tipo: "nacional"})
	b.AddFeriado(repo.Feriado{Nome: "Tiradentes", Data: "2024-04-21", Tipo: "nacional"})
	return b
}

func insert(t *testing.T, tables remote.Tables, funcionario, data string, status repo.Status) {
	t.Helper()
	if _, err := tables.InsertRegistro(context.Background(), repo.RegistroInput{FuncionarioID: funcionario, Data: data, Status: status}); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestWindowMarch2024(t *testing.T) {
	start, end := Window(day(2024, time.March, 15, saoPaulo))
	if got := repo.FormatDate(start); got != "2024-02-25" {
		t.Fatalf("expected window start 2024-02-25, got %s", got)
	}
	if got := repo.FormatDate(end); got != "2024-04-06" {
		t.Fatalf("expected window end 2024-04-06, got %s", got)
	}
	if start.Weekday() != time.Sunday || end.Weekday() != time.Saturday {
		t.Fatalf("expected Sunday..Saturday, got %s..%s", start.Weekday(), end.Weekday())
	}
}

func TestWindowAlwaysWholeWeeks(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		anchor := day(2025, m, 10, time.UTC)
		start, end := Window(anchor)
		days := int(end.Sub(start).Hours()/24) + 1
		if days%7 != 0 || days < 28 || days > 42 {
			t.Fatalf("%s: unexpected window of %d days", m, days)
		}
		if start.After(MonthStart(anchor)) || end.Before(MonthStart(anchor).AddDate(0, 1, -1)) {
			t.Fatalf("%s: window must cover the whole month", m)
		}
	}
}

func TestLoadRangeMarch2024(t *testing.T) {
	b := newBackend(t)
	tables := b.Tables()
	insert(t, tables, "u1", "2024-03-10", repo.StatusPresencial)
	insert(t, tables, "u2", "2024-03-10", repo.StatusHomeOffice)
	insert(t, tables, "u1", "2024-02-25", repo.StatusFolga)
	insert(t, tables, "u1", "2024-04-07", repo.StatusFerias)

	agg := NewAggregator(tables)
	if agg.Ready() {
		t.Fatalf("aggregator must not be ready before loading")
	}
	if _, err := agg.LoadRange(context.Background(), day(2024, time.March, 1, saoPaulo)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !agg.Ready() {
		t.Fatalf("expected ready after load")
	}

	holiday := agg.HolidayOn(day(2024, time.March, 29, saoPaulo))
	if holiday == nil || holiday.Nome != "Sexta-feira Santa" {
		t.Fatalf("expected Sexta-feira Santa, got %+v", holiday)
	}
	if got := agg.RecordsOn(day(2024, time.March, 10, saoPaulo)); len(got) != 2 {
		t.Fatalf("expected 2 records on 2024-03-10, got %d", len(got))
	}
	if got := agg.RecordsOn(day(2024, time.February, 25, saoPaulo)); len(got) != 1 {
		t.Fatalf("expected leading grid day included, got %d", len(got))
	}
	if got := agg.RecordsOn(day(2024, time.April, 7, saoPaulo)); len(got) != 0 {
		t.Fatalf("expected empty result outside the window, got %d", len(got))
	}
	if agg.HolidayOn(day(2024, time.April, 21, saoPaulo)) != nil {
		t.Fatalf("expected no holiday outside the window")
	}
}

func TestRecordsOnUsesCalendarDayOfTheDate(t *testing.T) {
	b := newBackend(t)
	insert(t, b.Tables(), "u1", "2024-03-10", repo.StatusPresencial)

	agg := NewAggregator(b.Tables())
	if _, err := agg.LoadRange(context.Background(), day(2024, time.March, 1, time.UTC)); err != nil {
		t.Fatalf("load: %v", err)
	}

	zones := []*time.Location{
		time.UTC,
		saoPaulo,
		time.FixedZone("LINT", 14*60*60),
		time.FixedZone("SST", -11*60*60),
	}
	for _, loc := range zones {
		for _, hour := range []int{0, 12, 23} {
			date := time.Date(2024, time.March, 10, hour, 59, 0, 0, loc)
			if got := agg.RecordsOn(date); len(got) != 1 {
				t.Fatalf("%s %02d:59: expected 1 record, got %d", loc, hour, len(got))
			}
		}
		if got := agg.RecordsOn(time.Date(2024, time.March, 11, 0, 0, 0, 0, loc)); len(got) != 0 {
			t.Fatalf("%s: expected no record on the next day", loc)
		}
	}
}

type blockingTables struct {
	remote.Tables

	mu      sync.Mutex
	blockOn string
	release chan struct{}
	started chan struct{}
}

func (b *blockingTables) ListRegistros(ctx context.Context, from, to string) ([]repo.RegistroPresenca, error) {
	b.mu.Lock()
	block := from == b.blockOn
	b.mu.Unlock()
	if block {
		close(b.started)
		<-b.release
	}
	return b.Tables.ListRegistros(ctx, from, to)
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	b := newBackend(t)
	insert(t, b.Tables(), "u1", "2024-03-10", repo.StatusPresencial)

	tables := &blockingTables{
		Tables:  b.Tables(),
		blockOn: "2024-01-28",
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	agg := NewAggregator(tables)

	stale := make(chan *Snapshot)
	go func() {
		s, _ := agg.LoadRange(context.Background(), day(2024, time.February, 1, time.UTC))
		stale <- s
	}()
	<-tables.started

	if _, err := agg.LoadRange(context.Background(), day(2024, time.March, 1, time.UTC)); err != nil {
		t.Fatalf("load march: %v", err)
	}
	close(tables.release)
	februarySnapshot := <-stale

	if got := repo.FormatDate(agg.Current().Anchor); got != "2024-03-01" {
		t.Fatalf("expected March to remain current, got %s", got)
	}
	if !agg.Ready() {
		t.Fatalf("expected ready after the latest load")
	}
	if februarySnapshot == nil || repo.FormatDate(februarySnapshot.Anchor) != "2024-02-01" {
		t.Fatalf("expected the caller to still receive its own snapshot")
	}
}

func TestLoadRangeFailure(t *testing.T) {
	b := newBackend(t)
	b.FailNext(memory.OpListFeriados, errors.New("timeout"))

	agg := NewAggregator(b.Tables())
	if _, err := agg.LoadRange(context.Background(), day(2024, time.March, 1, time.UTC)); err == nil {
		t.Fatalf("expected error when a fetch fails")
	}
	if agg.Ready() {
		t.Fatalf("aggregator must not be ready after a failed load")
	}
	if got := agg.RecordsOn(day(2024, time.March, 10, time.UTC)); len(got) != 0 {
		t.Fatalf("expected empty result without data")
	}
}

func TestBuildMonthView(t *testing.T) {
	b := newBackend(t)
	tables := b.Tables()
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		insert(t, tables, id, "2024-03-11", repo.StatusPresencial)
	}
	insert(t, tables, "u1", "2024-03-10", repo.StatusPlantao)

	agg := NewAggregator(tables)
	snapshot, err := agg.LoadRange(context.Background(), day(2024, time.March, 1, saoPaulo))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	view := BuildMonthView(snapshot, day(2024, time.March, 10, saoPaulo))
	if view.Titulo != "março 2024" || view.Mes != "2024-03" {
		t.Fatalf("unexpected title: %s %s", view.Titulo, view.Mes)
	}
	if len(view.Semanas) != 6 || view.Semanas[0][0].Data != "2024-02-25" {
		t.Fatalf("expected 6 weeks starting 2024-02-25, got %d", len(view.Semanas))
	}
	if view.Semanas[0][0].NoMes || !view.Semanas[0][5].NoMes {
		t.Fatalf("unexpected in-month flags")
	}

	cells := map[string]Dia{}
	for _, week := range view.Semanas {
		for _, cell := range week {
			cells[cell.Data] = cell
		}
	}
	if c := cells["2024-03-29"]; c.Aviso != "Sexta-feira Santa" || c.Feriado == nil {
		t.Fatalf("expected holiday notice, got %+v", c)
	}
	if c := cells["2024-03-02"]; !c.FimDeSemana || c.Aviso != "Final de semana" {
		t.Fatalf("expected weekend notice, got %+v", c)
	}
	if c := cells["2024-03-11"]; len(c.Resumo) != 3 || c.Mais != 1 {
		t.Fatalf("expected 3 names and 1 more, got %+v", c)
	}
	if !cells["2024-03-10"].Selecionado {
		t.Fatalf("expected selected day flagged")
	}

	if view.Selecionado == nil || view.Selecionado.DiaSemana != "domingo" || view.Selecionado.Titulo != "10/03/2024" {
		t.Fatalf("unexpected selected detail: %+v", view.Selecionado)
	}
	if len(view.Selecionado.Registros) != 1 || view.Selecionado.Registros[0].Rotulo != "Plantão" {
		t.Fatalf("unexpected selected records: %+v", view.Selecionado.Registros)
	}
	if len(view.Legenda) != 7 {
		t.Fatalf("expected 7 status in legend")
	}
}

func TestExportXLSX(t *testing.T) {
	b := newBackend(t)
	obs := "cobrindo plantão"
	if _, err := b.Tables().InsertRegistro(context.Background(), repo.RegistroInput{FuncionarioID: "u2", Data: "2024-03-10", Status: repo.StatusPlantao, Observacoes: &obs}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	insert(t, b.Tables(), "u1", "2024-02-26", repo.StatusPresencial)

	snapshot, err := NewAggregator(b.Tables()).LoadRange(context.Background(), day(2024, time.March, 1, time.UTC))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var buf bytes.Buffer
	if err := ExportXLSX(snapshot, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header, record and holiday rows, got %v", rows)
	}
	if rows[1][0] != "10/03/2024" || rows[1][1] != "domingo" || rows[1][3] != "Bruno Lima" || rows[1][5] != "Plantão" || rows[1][6] != obs {
		t.Fatalf("unexpected record row: %v", rows[1])
	}
	if rows[2][0] != "29/03/2024" || rows[2][2] != "Sexta-feira Santa" {
		t.Fatalf("unexpected holiday row: %v", rows[2])
	}
	if ExportFilename(snapshot) != "presenca-2024-03.xlsx" {
		t.Fatalf("unexpected filename %s", ExportFilename(snapshot))
	}
}
