package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
	"github.com/Khristo19/clothing-shop-pos/internal/journal/memory"
)

func newTestAuth(t *testing.T) *AuthManager {
	t.Helper()
	store := memory.New()
	hash, err := hashPassword("admin-secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	err = store.CreateUser(context.Background(), domain.UserAccount{
		Username:  "admin",
		Password:  hash,
		Role:      "admin",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, store)
}

func TestLoginAndParseToken(t *testing.T) {
	auth := newTestAuth(t)

	resp, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "admin-secret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != "admin" || resp.AccessToken == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t)

	if _, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "nope"}); err == nil {
		t.Fatalf("expected rejection for wrong password")
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "ghost", Password: "nope"}); err == nil {
		t.Fatalf("expected rejection for unknown user")
	}
}

func TestParseTokenRejectsForgery(t *testing.T) {
	auth := newTestAuth(t)
	other := NewAuthManager("a-completely-different-secret-value", time.Hour, nil)

	forged, err := other.sign("admin", "admin", time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(forged); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
	if _, err := auth.ParseToken("not.a.token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := newTestAuth(t)

	expired, err := auth.sign("admin", "admin", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(expired); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestCreateOperatorValidation(t *testing.T) {
	auth := newTestAuth(t)

	if _, err := auth.CreateOperator(domain.OperatorCreateRequest{Username: "ab", Password: "secret99"}); err == nil {
		t.Fatalf("short username must be rejected")
	}
	if _, err := auth.CreateOperator(domain.OperatorCreateRequest{Username: "giorgi", Password: "123"}); err == nil {
		t.Fatalf("short password must be rejected")
	}
	if _, err := auth.CreateOperator(domain.OperatorCreateRequest{Username: "giorgi", Password: "secret99"}); err != nil {
		t.Fatalf("valid operator rejected: %v", err)
	}
	if _, err := auth.CreateOperator(domain.OperatorCreateRequest{Username: "giorgi", Password: "secret99"}); err == nil {
		t.Fatalf("duplicate username must be rejected")
	}
}

func TestBootstrapUpgradesPlainTextPasswords(t *testing.T) {
	store := memory.New()
	err := store.CreateUser(context.Background(), domain.UserAccount{
		Username:  "legacy",
		Password:  "plain-secret",
		Role:      "cashier",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	auth := NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, store)
	if _, err := auth.Login(domain.LoginRequest{Username: "legacy", Password: "plain-secret"}); err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || !isPasswordHash(users[0].Password) {
		t.Fatalf("stored password must be upgraded to a hash: %+v", users)
	}
}
