package util

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("  "); err == nil {
		t.Fatalf("expected error for empty email")
	}
	if err := ValidateEmail("sem-arroba"); err == nil {
		t.Fatalf("expected error for invalid email")
	}
	if err := ValidateEmail("ana@empresa.com.br"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOptionalString(t *testing.T) {
	if got := OptionalString("   "); got != nil {
		t.Fatalf("expected nil for blank input, got %q", *got)
	}
	got := OptionalString("  PAT-001 ")
	if got == nil || *got != "PAT-001" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}

func TestValidationErrorIs(t *testing.T) {
	err := RequireString(" ", "nome")
	if !errors.Is(err, ErrValidacao) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "nome obrigatório" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if errors.Is(errors.New("outro"), ErrValidacao) {
		t.Fatalf("plain errors must not match")
	}
}
