package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("password not hashed")
	}
	if err := ComparePassword(hash, "secret1"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestPrincipalCanActFor(t *testing.T) {
	user := &Principal{User: &domain.User{Email: "alice@example.com", Role: domain.RoleUser}}
	admin := &Principal{User: &domain.User{Email: "admin@example.com", Role: domain.RoleAdmin}}

	if !user.CanActFor("alice@example.com") {
		t.Fatal("user denied access to own resources")
	}
	if user.CanActFor("bob@example.com") {
		t.Fatal("user allowed to act for another account")
	}
	if user.IsAdmin() {
		t.Fatal("user reported as admin")
	}
	if !admin.CanActFor("alice@example.com") || !admin.CanActFor("bob@example.com") {
		t.Fatal("admin denied access to user resources")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	token, exp, err := tm.GenerateToken("alice@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if exp.IsZero() {
		t.Fatal("zero expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}

	other := NewTokenManager("different-secret", 30)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}
