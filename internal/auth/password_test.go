package auth

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("correct-pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if digest == "correct-pw" {
		t.Fatal("digest must not equal the plaintext")
	}
	if err := VerifyPassword(digest, "correct-pw"); err != nil {
		t.Fatalf("expected verification to pass: %v", err)
	}
	if err := VerifyPassword(digest, "wrong-pw"); err == nil {
		t.Fatal("expected verification to fail for a different password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same input must differ (salting)")
	}
}

func TestVerifyDummyAlwaysFails(t *testing.T) {
	start := time.Now()
	err := VerifyDummy("painel-no-such-credential")
	elapsed := time.Since(start)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// The dummy path must burn a real adaptive-hash comparison, not bail out
	// on a parse error.
	if elapsed < time.Millisecond {
		t.Fatalf("dummy verification returned too fast (%s), no hash work done", elapsed)
	}
}

func TestVerifyLegacy(t *testing.T) {
	// md5("secret")
	const digest = "5ebe2294ecd0e0f08eab7690d2a6ee69"
	if err := VerifyLegacy(digest, "secret"); err != nil {
		t.Fatalf("expected legacy verification to pass: %v", err)
	}
	if err := VerifyLegacy(digest, "not-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := VerifyLegacy("short", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for malformed digest, got %v", err)
	}
}
