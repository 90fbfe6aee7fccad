package auth

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// ErrHashInvalido indica senha_hash fora do formato Argon2id.
var ErrHashInvalido = errors.New("hash de senha inválido: esperado formato argon2id (use cmd/hashpass)")

var params = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera o hash Argon2id guardado em senha_hash.
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify compara a senha com o hash Argon2id.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}

// ValidateHash confere se encodedHash pode ser usado por Verify.
func ValidateHash(encodedHash string) error {
	if _, _, _, err := argon2id.DecodeHash(encodedHash); err != nil {
		return ErrHashInvalido
	}
	return nil
}
