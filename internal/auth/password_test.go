package auth

import (
	"errors"
	"testing"
)

func TestHashVerifyAndValidate(t *testing.T) {
	hash, err := Hash("senha123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ValidateHash(hash); err != nil {
		t.Fatalf("expected generated hash to validate: %v", err)
	}
	ok, err := Verify("senha123", hash)
	if err != nil || !ok {
		t.Fatalf("expected password to match: %v", err)
	}
	if ok, _ := Verify("errada", hash); ok {
		t.Fatalf("expected wrong password to fail")
	}

	for _, raw := range []string{"", "senha123", "$2a$10$abcdefghijklmnopqrstuu"} {
		if err := ValidateHash(raw); !errors.Is(err, ErrHashInvalido) {
			t.Fatalf("%q: expected ErrHashInvalido, got %v", raw, err)
		}
	}
}
