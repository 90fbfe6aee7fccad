package http

import (
	"encoding/json"
	"net/http"

	httpmiddleware "github.com/gestaozabele/presenca/internal/http/middleware"
	"github.com/gestaozabele/presenca/internal/registro"
	"github.com/gestaozabele/presenca/internal/repo"
)

func (h *Handler) editor(r *http.Request) *registro.Editor {
	browser := httpmiddleware.GetBrowser(r.Context())
	return registro.NewEditor(browser.Manager.Tables(), h.publisher)
}

// GetRegistro devolve o registro do usuário na data (?data=yyyy-MM-dd) ou null.
func (h *Handler) GetRegistro(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "" {
		data = repo.FormatDate(h.today())
	}

	existing, err := h.editor(r).FindExisting(r.Context(), httpmiddleware.GetSubject(r.Context()), data)
	if err != nil {
		writeDomainError(w, r, err, "Erro ao carregar registro")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"registro": existing})
}

// SaveRegistro cria ou atualiza o registro do usuário no dia informado.
func (h *Handler) SaveRegistro(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Data        string `json:"data"`
		Status      string `json:"status"`
		Observacoes string `json:"observacoes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	result, err := h.editor(r).Save(r.Context(), httpmiddleware.GetSubject(r.Context()), payload.Data, payload.Status, payload.Observacoes)
	if err != nil {
		writeDomainError(w, r, err, "Erro ao salvar registro")
		return
	}

	status := http.StatusOK
	if result.Criado {
		status = http.StatusCreated
	}
	WriteMessage(w, status, map[string]any{
		"registro": result.Registro,
		"criado":   result.Criado,
	}, result.Mensagem())
}
