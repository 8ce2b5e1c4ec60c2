package security

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, exp, err := p.IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("access token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	id, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if id.UserID != "u1" || id.Username != "alice" {
		t.Errorf("ValidateAccess: got %+v", id)
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, tok := range []string{"", "invalid-token", "a.b.c"} {
		if _, err := p.ValidateAccess(tok); err != ErrInvalidToken {
			t.Errorf("ValidateAccess(%q): want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestTokenProvider_ValidateAccessTampered(t *testing.T) {
	p, _ := NewTestTokenProvider()
	token, _, err := p.IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := p.ValidateAccess(strings.Join(parts, ".")); err != ErrInvalidToken {
		t.Errorf("tampered signature: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p, _ := NewTestTokenProvider()
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := p.IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p.now = time.Now
	if _, err := p.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_WrongIssuerOrAudience(t *testing.T) {
	p, _ := NewTestTokenProvider()
	token, _, err := p.IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	otherIss := NewTokenProvider(p.privateKey, p.publicKey, "other-issuer", p.audience, time.Minute)
	if _, err := otherIss.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
	otherAud := NewTokenProvider(p.privateKey, p.publicKey, p.issuer, "other-audience", time.Minute)
	if _, err := otherAud.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("wrong audience: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	p := NewTokenProvider(key, key.Public(), "iss", "aud", time.Minute)
	token, _, err := p.IssueAccess("u2", "bob")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	id, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if id.UserID != "u2" {
		t.Errorf("UserID = %q, want u2", id.UserID)
	}
}
