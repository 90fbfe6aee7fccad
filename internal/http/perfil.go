package http

import (
	"encoding/json"
	"net/http"

	httpmiddleware "github.com/gestaozabele/presenca/internal/http/middleware"
	"github.com/gestaozabele/presenca/internal/perfil"
)

// GetPerfil devolve o perfil mantido pelo Manager.
func (h *Handler) GetPerfil(w http.ResponseWriter, r *http.Request) {
	browser := httpmiddleware.GetBrowser(r.Context())
	profile := browser.Manager.State().Profile
	if profile == nil {
		writeDomainError(w, r, perfil.ErrSemPerfil, "Erro ao carregar perfil")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// UpdatePerfil grava o formulário e devolve o perfil recarregado.
func (h *Handler) UpdatePerfil(w http.ResponseWriter, r *http.Request) {
	var in perfil.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	browser := httpmiddleware.GetBrowser(r.Context())
	profile, err := h.perfil.Update(r.Context(), browser.Manager, in)
	if err != nil {
		writeDomainError(w, r, err, "Erro ao atualizar perfil")
		return
	}

	WriteMessage(w, http.StatusOK, map[string]any{"perfil": profile}, perfil.MensagemAtualizado)
}
