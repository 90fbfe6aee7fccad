package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/presenca/internal/perfil"
	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
	"github.com/gestaozabele/presenca/internal/util"
)

// writeDomainError traduz erros dos pacotes de domínio para o envelope JSON.
// fallback é a mensagem exibida para falhas inesperadas.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, util.ErrValidacao):
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, repo.ErrDataInvalida), errors.Is(err, repo.ErrStatusDesconhecido):
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, remote.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, CodeAuth, "Email ou senha inválidos", nil)
	case errors.Is(err, remote.ErrNoSession):
		WriteError(w, http.StatusUnauthorized, CodeAuth, "sessão expirada", nil)
	case errors.Is(err, remote.ErrUserExists):
		WriteError(w, http.StatusConflict, CodeValidation, "Email já cadastrado", nil)
	case errors.Is(err, perfil.ErrSemPerfil):
		WriteError(w, http.StatusConflict, CodeNotFound, "Perfil ainda não carregado", nil)
	case errors.Is(err, repo.ErrRegistroDuplicado):
		WriteError(w, http.StatusConflict, CodeConflict, "Há mais de um registro para este dia", nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		WriteError(w, http.StatusInternalServerError, CodeInternal, fallback, nil)
	}
}
