package http

import (
	"encoding/json"
	"net/http"
	"strings"

	httpmiddleware "github.com/gestaozabele/presenca/internal/http/middleware"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/session"
	"github.com/gestaozabele/presenca/internal/util"
)

const (
	mensagemLogin    = "Login realizado com sucesso!"
	mensagemCadastro = "Conta criada com sucesso! Verifique seu email para confirmar."
)

var anonymousState = session.State{Phase: session.PhaseSignedOut}

// Sessao devolve o estado do Manager sem aguardar o carregamento.
// Sem cookie de sessão não há Manager: o estado é de visitante.
func (h *Handler) Sessao(w http.ResponseWriter, r *http.Request) {
	browser := httpmiddleware.GetBrowser(r.Context())
	if browser == nil {
		WriteJSON(w, http.StatusOK, anonymousState)
		return
	}
	WriteJSON(w, http.StatusOK, browser.Manager.State())
}

// Login autentica com email e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Senha == "" {
		WriteError(w, http.StatusBadRequest, CodeValidation, "email e senha são obrigatórios", nil)
		return
	}

	browser := httpmiddleware.GetBrowser(r.Context())
	if err := browser.Manager.SignIn(r.Context(), payload.Email, payload.Senha); err != nil {
		writeDomainError(w, r, err, "Erro ao fazer login")
		return
	}

	h.writeSessao(w, http.StatusOK, browser.Manager.State(), mensagemLogin)
}

// Cadastro cria a conta com os metadados do funcionário.
func (h *Handler) Cadastro(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email             string `json:"email"`
		Senha             string `json:"senha"`
		Nome              string `json:"nome"`
		Matricula         string `json:"matricula"`
		PatrimonioEstacao string `json:"patrimonio_estacao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	email := strings.TrimSpace(payload.Email)
	for _, check := range []error{
		util.ValidateEmail(email),
		util.ValidatePassword(payload.Senha),
		util.RequireString(payload.Nome, "nome"),
		util.RequireString(payload.Matricula, "matrícula"),
	} {
		if check != nil {
			writeDomainError(w, r, check, "Erro ao criar conta")
			return
		}
	}

	browser := httpmiddleware.GetBrowser(r.Context())
	user, err := browser.Manager.Auth().SignUp(r.Context(), email, payload.Senha, remote.SignUpData{
		Nome:              strings.TrimSpace(payload.Nome),
		Matricula:         strings.TrimSpace(payload.Matricula),
		PatrimonioEstacao: strings.TrimSpace(payload.PatrimonioEstacao),
	})
	if err != nil {
		writeDomainError(w, r, err, "Erro ao criar conta")
		return
	}

	WriteMessage(w, http.StatusCreated, map[string]any{"usuario": user}, mensagemCadastro)
}

// Logout encerra a sessão; usuário, perfil e cache são limpos mesmo se o serviço falhar.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	browser := httpmiddleware.GetBrowser(r.Context())
	if browser == nil {
		h.writeSessao(w, http.StatusOK, anonymousState, "")
		return
	}
	browser.Manager.SignOut(r.Context())
	h.writeSessao(w, http.StatusOK, browser.Manager.State(), "")
}

func (h *Handler) writeSessao(w http.ResponseWriter, status int, state session.State, mensagem string) {
	WriteMessage(w, status, map[string]any{
		"fase":    state.Phase,
		"loading": state.Loading,
		"usuario": state.Identity,
		"perfil":  state.Profile,
	}, mensagem)
}
