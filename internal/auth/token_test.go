package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "unit-test-secret"

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("", time.Hour); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewTokens("   ", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	perms := PermissionSet{PermReportsRead: true, PermCRMRead: false}
	raw, expiresAt, err := tokens.Issue(42, "manager", perms)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected a future expiry, got %v", expiresAt)
	}

	principal, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if principal.UserID != 42 {
		t.Fatalf("unexpected subject: %d", principal.UserID)
	}
	if principal.Role != "manager" {
		t.Fatalf("unexpected role: %s", principal.Role)
	}
	if !principal.HasPermission(PermReportsRead) {
		t.Fatal("expected reports.read in the snapshot")
	}
	if principal.HasPermission(PermCRMRead) {
		t.Fatal("crm.read was not granted")
	}
}

func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Now().UTC()
	issuer, err := NewTokens(testSecret, time.Hour, WithTokenClock(func() time.Time { return issuedAt }))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	raw, _, err := issuer.Issue(7, "viewer", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Same secret, clock moved just past the TTL.
	verifier, err := NewTokens(testSecret, time.Hour, WithTokenClock(func() time.Time {
		return issuedAt.Add(time.Hour + time.Second)
	}))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := verifier.Verify(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	// One second before expiry the token is still good.
	early, err := NewTokens(testSecret, time.Hour, WithTokenClock(func() time.Time {
		return issuedAt.Add(time.Hour - time.Second)
	}))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := early.Verify(raw); err != nil {
		t.Fatalf("token should still verify before expiry: %v", err)
	}
}

func TestTokenTampered(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	raw, _, err := tokens.Issue(42, "manager", PermissionSet{PermReportsRead: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three JWT segments, got %d", len(parts))
	}

	flip := func(s string) string {
		b := []byte(s)
		i := len(b) / 2
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		return string(b)
	}

	tamperedPayload := parts[0] + "." + flip(parts[1]) + "." + parts[2]
	if _, err := tokens.Verify(tamperedPayload); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("payload tamper: expected ErrInvalidToken, got %v", err)
	}

	tamperedSig := parts[0] + "." + parts[1] + "." + flip(parts[2])
	if _, err := tokens.Verify(tamperedSig); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("signature tamper: expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenDifferentSecret(t *testing.T) {
	issuer, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	raw, _, err := issuer.Issue(1, "viewer", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier, err := NewTokens("rotated-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := verifier.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after key rotation, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}
