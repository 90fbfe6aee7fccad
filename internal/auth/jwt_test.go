package auth

import (
	"testing"
	"time"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("segredo-de-teste-com-mais-de-32-caracteres", time.Hour)
	token, expires, err := m.GenerateAccessToken("u1", "ana@empresa.com.br", time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected expiry in the future")
	}

	claims, err := m.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "ana@empresa.com.br" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := NewJWTManager("outro-segredo-de-teste-com-32-caracteres!", time.Hour)
	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatalf("expected signature error with a different secret")
	}

	unverified, err := ParseUnverified(token)
	if err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if unverified.Subject != "u1" {
		t.Fatalf("expected subject u1, got %s", unverified.Subject)
	}
}

func TestJWTManagerExpired(t *testing.T) {
	m := NewJWTManager("segredo-de-teste-com-mais-de-32-caracteres", time.Minute)
	token, _, err := m.GenerateAccessToken("u1", "", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ParseAndValidate(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("senha123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := Verify("senha123", hash)
	if err != nil || !ok {
		t.Fatalf("expected password to match: ok=%v err=%v", ok, err)
	}
	ok, _ = Verify("outra", hash)
	if ok {
		t.Fatalf("expected mismatch")
	}
}
