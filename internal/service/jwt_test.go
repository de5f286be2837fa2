package service

import (
	"strings"
	"testing"
)

func TestJWT_RoundTrip(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := GenerateJWT(42, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, isAdmin, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
	if isAdmin {
		t.Fatalf("expected non-admin token")
	}
}

func TestJWT_AdminClaim(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := GenerateJWT(1, true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, isAdmin, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !isAdmin {
		t.Fatalf("expected admin claim to survive the round trip")
	}
}

func TestJWT_Tampered(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := GenerateJWT(42, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format")
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, _, err := ParseJWT(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	InitJWTWithSecret("secret-one")
	token, err := GenerateJWT(42, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	InitJWTWithSecret("secret-two")
	if _, _, err := ParseJWT(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}
