package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/store"
)

const testSecret = "test-secret-key-for-sessions"

func newTestAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	auth, err := NewAuthService(st, testSecret)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return auth, st
}

func seedAdmin(t *testing.T, st *store.Store, email, password string) *model.Admin {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := &model.Admin{Email: email, PasswordHash: hash}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return admin
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if _, err := NewAuthService(st, ""); err == nil {
		t.Fatal("expected error for empty signing secret")
	}
}

func TestAuthenticate(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()
	seedAdmin(t, st, "Admin@Example.com", "ChangeMe123!")

	// Lookup is case-insensitive and trimmed.
	admin, err := auth.Authenticate(ctx, "  admin@example.COM ", "ChangeMe123!")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if admin.Email != "admin@example.com" {
		t.Errorf("Email = %q, want normalized %q", admin.Email, "admin@example.com")
	}

	// Wrong password and unknown email fail with the same error.
	if _, err := auth.Authenticate(ctx, "admin@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.Authenticate(ctx, "nobody@example.com", "ChangeMe123!"); err != ErrInvalidCredentials {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)

	token, err := auth.IssueToken(42, "admin@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	p := auth.VerifyToken(token)
	if p == nil {
		t.Fatal("VerifyToken returned nil for a fresh token")
	}
	if p.AdminID != 42 || p.Email != "admin@example.com" {
		t.Errorf("principal = %+v, want {42 admin@example.com}", p)
	}
}

// issueWithTTL mints a token with an arbitrary TTL for expiry tests.
func issueWithTTL(t *testing.T, ttl time.Duration, adminID int64, email string) string {
	t.Helper()
	now := time.Now()
	claims := sessionClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "civicsite",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Both verification paths must accept and reject exactly the same tokens.
func TestVerifierPathsAgree(t *testing.T) {
	auth, _ := newTestAuth(t)

	valid, err := auth.IssueToken(7, "admin@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tampered := valid[:len(valid)-2] + "xx"

	noExp := func() string {
		claims := jwt.MapClaims{"admin_id": 7, "email": "admin@example.com"}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return tok
	}()

	noneAlg := func() string {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"admin_id":7,"email":"a@b.c","exp":9999999999}`))
		return header + "." + payload + "."
	}()

	vectors := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid token", valid, true},
		{"tampered signature", tampered, false},
		{"expired", issueWithTTL(t, -time.Hour, 7, "admin@example.com"), false},
		{"missing exp claim", noExp, false},
		{"alg none", noneAlg, false},
		{"missing identity claims", issueWithTTL(t, time.Hour, 0, ""), false},
		{"garbage", "garbage.token.here", false},
		{"empty", "", false},
		{"two segments", strings.Join(strings.Split(valid, ".")[:2], "."), false},
	}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			full := auth.VerifyToken(v.token) != nil
			lite := VerifyTokenLite([]byte(testSecret), v.token) != nil
			if full != v.want {
				t.Errorf("VerifyToken accepted=%v, want %v", full, v.want)
			}
			if lite != v.want {
				t.Errorf("VerifyTokenLite accepted=%v, want %v", lite, v.want)
			}
			if full != lite {
				t.Errorf("verifier paths disagree: full=%v lite=%v", full, lite)
			}
		})
	}
}

func TestLitePrincipalMatchesFull(t *testing.T) {
	auth, _ := newTestAuth(t)
	token, err := auth.IssueToken(9, "leader@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	full := auth.VerifyToken(token)
	lite := VerifyTokenLite([]byte(testSecret), token)
	if full == nil || lite == nil {
		t.Fatal("both verifiers should accept a fresh token")
	}
	if *full != *lite {
		t.Errorf("principals differ: full=%+v lite=%+v", full, lite)
	}
}

func TestSessionCookie(t *testing.T) {
	c := SessionCookie("tok", true)
	if !c.HttpOnly {
		t.Error("cookie must be HTTP-only")
	}
	if !c.Secure {
		t.Error("cookie must be Secure outside dev")
	}
	if c.Path != "/" {
		t.Errorf("Path = %q, want /", c.Path)
	}
	if c.MaxAge != int((7*24*time.Hour)/time.Second) {
		t.Errorf("MaxAge = %d, want 7 days in seconds", c.MaxAge)
	}

	if dev := SessionCookie("tok", false); dev.Secure {
		t.Error("dev cookie must not be Secure")
	}

	expired := ExpiredSessionCookie(true)
	if expired.MaxAge >= 0 {
		t.Errorf("expired cookie MaxAge = %d, want negative", expired.MaxAge)
	}
	if expired.Value != "" {
		t.Errorf("expired cookie Value = %q, want empty", expired.Value)
	}
}
