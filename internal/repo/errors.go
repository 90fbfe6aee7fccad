package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrRegistroDuplicado indica mais de um registro de presença para o mesmo funcionário e dia.
	ErrRegistroDuplicado = errors.New("mais de um registro para o mesmo dia")
)
