package calendario

import (
	"strings"
	"time"

	"github.com/gestaozabele/presenca/internal/repo"
)

const resumoMax = 3

// RegistroView é o registro pronto para exibição.
type RegistroView struct {
	ID            string      `json:"id"`
	FuncionarioID string      `json:"funcionario_id"`
	Nome          string      `json:"nome"`
	Matricula     string      `json:"matricula"`
	Status        repo.Status `json:"status"`
	Rotulo        string      `json:"rotulo"`
	Cor           string      `json:"cor"`
	Observacoes   *string     `json:"observacoes,omitempty"`
}

// Dia é uma célula da grade.
type Dia struct {
	Data        string         `json:"data"`
	Dia         int            `json:"dia"`
	NoMes       bool           `json:"no_mes"`
	FimDeSemana bool           `json:"fim_de_semana"`
	Selecionado bool           `json:"selecionado"`
	Feriado     *repo.Feriado  `json:"feriado,omitempty"`
	Aviso       string         `json:"aviso,omitempty"`
	Registros   []RegistroView `json:"registros"`
	Resumo      []string       `json:"resumo"`
	Mais        int            `json:"mais"`
}

// DiaDetalhe descreve o dia selecionado.
type DiaDetalhe struct {
	Data      string         `json:"data"`
	Titulo    string         `json:"titulo"`
	DiaSemana string         `json:"dia_semana"`
	Feriado   *repo.Feriado  `json:"feriado,omitempty"`
	Registros []RegistroView `json:"registros"`
}

// MonthView é a grade mensal com legenda e detalhe do dia.
type MonthView struct {
	Mes         string            `json:"mes"`
	Titulo      string            `json:"titulo"`
	Inicio      string            `json:"inicio"`
	Fim         string            `json:"fim"`
	Cabecalho   []string          `json:"cabecalho"`
	Semanas     [][]Dia           `json:"semanas"`
	Selecionado *DiaDetalhe       `json:"selecionado,omitempty"`
	Legenda     []repo.StatusInfo `json:"legenda"`
}

// BuildMonthView monta a grade do Snapshot; selected fora da grade é ignorado.
func BuildMonthView(s *Snapshot, selected time.Time) MonthView {
	view := MonthView{
		Mes:       s.Anchor.Format("2006-01"),
		Titulo:    TituloMes(s.Anchor),
		Inicio:    repo.FormatDate(s.Start),
		Fim:       repo.FormatDate(s.End),
		Cabecalho: Cabecalho,
		Legenda:   repo.Catalogo(),
	}

	selectedISO := ""
	if !selected.IsZero() && s.Contains(selected) {
		selectedISO = repo.FormatDate(selected)
	}

	var week []Dia
	for day := s.Start; !day.After(s.End); day = day.AddDate(0, 0, 1) {
		cell := buildDia(s, day)
		cell.Selecionado = cell.Data == selectedISO
		week = append(week, cell)
		if len(week) == 7 {
			view.Semanas = append(view.Semanas, week)
			week = nil
		}
	}

	if selectedISO != "" {
		view.Selecionado = &DiaDetalhe{
			Data:      selectedISO,
			Titulo:    selected.Format("02/01/2006"),
			DiaSemana: DiaDaSemana(selected),
			Feriado:   s.HolidayOn(selected),
			Registros: registroViews(s.RecordsOn(selected)),
		}
	}
	return view
}

func buildDia(s *Snapshot, day time.Time) Dia {
	cell := Dia{
		Data:        repo.FormatDate(day),
		Dia:         day.Day(),
		NoMes:       day.Month() == s.Anchor.Month() && day.Year() == s.Anchor.Year(),
		FimDeSemana: fimDeSemana(day),
		Feriado:     s.HolidayOn(day),
		Registros:   registroViews(s.RecordsOn(day)),
	}
	switch {
	case cell.Feriado != nil:
		cell.Aviso = cell.Feriado.Nome
	case cell.FimDeSemana:
		cell.Aviso = "Final de semana"
	}

	cell.Resumo = make([]string, 0, resumoMax)
	for i, r := range cell.Registros {
		if i == resumoMax {
			cell.Mais = len(cell.Registros) - resumoMax
			break
		}
		cell.Resumo = append(cell.Resumo, primeiroNome(r.Nome))
	}
	return cell
}

func registroViews(registros []repo.RegistroPresenca) []RegistroView {
	out := make([]RegistroView, 0, len(registros))
	for _, r := range registros {
		info := r.Status.Info()
		v := RegistroView{
			ID:            r.ID,
			FuncionarioID: r.FuncionarioID,
			Status:        r.Status,
			Rotulo:        info.Rotulo,
			Cor:           info.Cor,
			Observacoes:   r.Observacoes,
		}
		if r.Funcionario != nil {
			v.Nome = r.Funcionario.Nome
			v.Matricula = r.Funcionario.Matricula
		}
		out = append(out, v)
	}
	return out
}

func primeiroNome(nome string) string {
	fields := strings.Fields(nome)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
