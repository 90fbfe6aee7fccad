package calendario

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Presença"

var exportHeader = []any{"Data", "Dia da semana", "Feriado", "Funcionário", "Matrícula", "Status", "Observações"}

// ExportXLSX escreve uma planilha com os registros do mês do Snapshot.
// Dias sem registro aparecem apenas quando são feriado.
func ExportXLSX(s *Snapshot, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	row := 2
	first := s.Anchor
	last := first.AddDate(0, 1, -1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		feriado := ""
		if h := s.HolidayOn(day); h != nil {
			feriado = h.Nome
		}
		registros := s.RecordsOn(day)
		if len(registros) == 0 && feriado == "" {
			continue
		}

		base := []any{day.Format("02/01/2006"), DiaDaSemana(day), feriado}
		if len(registros) == 0 {
			values := append(base, "", "", "", "")
			if err := setRow(f, row, values); err != nil {
				return err
			}
			row++
			continue
		}
		for _, r := range registros {
			nome, matricula := "", ""
			if r.Funcionario != nil {
				nome, matricula = r.Funcionario.Nome, r.Funcionario.Matricula
			}
			obs := ""
			if r.Observacoes != nil {
				obs = *r.Observacoes
			}
			values := append(append([]any{}, base...), nome, matricula, r.Status.Label(), obs)
			if err := setRow(f, row, values); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "G", 18); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("linha %d: %w", row, err)
	}
	return nil
}

// ExportFilename sugere o nome do arquivo do mês.
func ExportFilename(s *Snapshot) string {
	return "presenca-" + s.Anchor.Format("2006-01") + ".xlsx"
}
