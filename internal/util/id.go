package util

import "github.com/google/uuid"

// NewID gera um UUID v4 textual.
func NewID() string {
	return uuid.NewString()
}

// IsUUID informa se o valor é um UUID válido.
func IsUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
