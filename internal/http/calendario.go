package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gestaozabele/presenca/internal/calendario"
	httpmiddleware "github.com/gestaozabele/presenca/internal/http/middleware"
	"github.com/gestaozabele/presenca/internal/repo"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Calendario devolve a grade do mês (?mes=yyyy-MM) com o dia selecionado (?dia=yyyy-MM-dd).
// Sem dia, seleciona hoje quando hoje cai na grade.
func (h *Handler) Calendario(w http.ResponseWriter, r *http.Request) {
	anchor, err := h.parseMes(r.URL.Query().Get("mes"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "mês inválido, use yyyy-MM", nil)
		return
	}

	selected := h.today()
	if raw := r.URL.Query().Get("dia"); raw != "" {
		selected, err = repo.ParseDate(raw, h.loc)
		if err != nil {
			WriteError(w, http.StatusBadRequest, CodeValidation, "dia inválido, use yyyy-MM-dd", nil)
			return
		}
	}

	browser := httpmiddleware.GetBrowser(r.Context())
	snapshot, err := browser.Calendar.LoadRange(r.Context(), anchor)
	if err != nil {
		writeDomainError(w, r, err, "Erro ao carregar calendário")
		return
	}

	WriteJSON(w, http.StatusOK, calendario.BuildMonthView(snapshot, selected))
}

// ExportCalendario gera a planilha do mês para administradores.
func (h *Handler) ExportCalendario(w http.ResponseWriter, r *http.Request) {
	anchor, err := h.parseMes(r.URL.Query().Get("mes"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "mês inválido, use yyyy-MM", nil)
		return
	}

	browser := httpmiddleware.GetBrowser(r.Context())
	snapshot, err := browser.Calendar.LoadRange(r.Context(), anchor)
	if err != nil {
		writeDomainError(w, r, err, "Erro ao carregar calendário")
		return
	}

	var buf bytes.Buffer
	if err := calendario.ExportXLSX(snapshot, &buf); err != nil {
		writeDomainError(w, r, err, "Erro ao gerar planilha")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", calendario.ExportFilename(snapshot)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) parseMes(raw string) (time.Time, error) {
	if raw == "" {
		return calendario.MonthStart(h.today()), nil
	}
	return calendario.ParseMonth(raw, h.loc)
}

func (h *Handler) today() time.Time {
	now := h.now().In(h.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
}
