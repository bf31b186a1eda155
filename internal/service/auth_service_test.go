package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestLogin(t *testing.T) {
	e := newEnv(t)
	e.register(t, "user@example.com", "secret1")

	user, token, exp, err := e.auth.Login(context.Background(), "user@example.com", "secret1", domain.RoleUser)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "user@example.com" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", user)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !exp.After(time.Now()) {
		t.Fatalf("token already expired at %v", exp)
	}

	claims, err := e.auth.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Email != "user@example.com" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginRejections(t *testing.T) {
	e := newEnv(t)
	e.register(t, "user@example.com", "secret1")

	cases := []struct {
		name     string
		email    string
		password string
		role     domain.Role
	}{
		{"wrong password", "user@example.com", "nope", domain.RoleUser},
		{"unknown email", "ghost@example.com", "secret1", domain.RoleUser},
		{"user via admin login", "user@example.com", "secret1", domain.RoleAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := e.auth.Login(context.Background(), tc.email, tc.password, tc.role)
			wantDomainCode(t, err, "UNAUTHORIZED")
		})
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	e := newEnv(t)
	e.register(t, "user@example.com", "secret1")

	_, token, _, err := e.auth.Login(context.Background(), "user@example.com", "secret1", domain.RoleUser)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := e.auth.TokenManager().ParseToken(token + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
	if _, err := e.auth.TokenManager().ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
