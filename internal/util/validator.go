package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrValidacao marca erros de entrada do usuário; use errors.Is.
var ErrValidacao = errors.New("dados inválidos")

type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

func (e validationError) Is(target error) bool { return target == ErrValidacao }

// Invalid cria um erro de validação com a mensagem exibida ao usuário.
func Invalid(msg string) error {
	return validationError{msg: msg}
}

// MinPasswordLength segue o mínimo exigido pelo provedor de autenticação.
const MinPasswordLength = 6

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Invalid("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalid("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Invalid("senha deve ter pelo menos 6 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field + " obrigatório")
	}
	return nil
}

// OptionalString devolve nil para texto em branco e o valor aparado caso contrário.
func OptionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
