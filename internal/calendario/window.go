// Package calendario agrega registros de presença e feriados de um mês.
package calendario

import (
	"strings"
	"time"

	"github.com/gestaozabele/presenca/internal/repo"
)

// Cabecalho lista os dias da semana a partir de domingo.
var Cabecalho = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

var diasDaSemana = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

var meses = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// Window devolve o primeiro domingo e o último sábado da grade do mês de anchor.
// As datas ficam à meia-noite no fuso de anchor.
func Window(anchor time.Time) (start, end time.Time) {
	first := MonthStart(anchor)
	last := first.AddDate(0, 1, -1)
	start = first.AddDate(0, 0, -int(first.Weekday()))
	end = last.AddDate(0, 0, 6-int(last.Weekday()))
	return start, end
}

// MonthStart devolve o dia 1 do mês de t, à meia-noite.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ParseMonth interpreta yyyy-MM no fuso informado.
func ParseMonth(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, repo.ErrDataInvalida
	}
	return t, nil
}

// DiaDaSemana devolve o nome do dia em português, minúsculo.
func DiaDaSemana(t time.Time) string {
	return diasDaSemana[t.Weekday()]
}

// TituloMes formata "março 2024".
func TituloMes(t time.Time) string {
	return meses[t.Month()-1] + " " + t.Format("2006")
}

func fimDeSemana(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
