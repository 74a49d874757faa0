package auth

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// dummyDigest is a well-formed bcrypt digest precomputed at startup. When a
// login names an unknown user the service still runs one full bcrypt
// comparison against it, so the latency of "unknown user" and "wrong
// password" stays indistinguishable. The comparison result is always
// discarded.
var dummyDigest = func() []byte {
	digest, err := bcrypt.GenerateFromPassword([]byte("painel-no-such-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return digest
}()

// HashPassword hashes a plaintext password with bcrypt. All newly created
// credentials go through here; the legacy digest is verification-only.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored bcrypt digest.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// VerifyDummy burns one bcrypt comparison and always fails.
func VerifyDummy(password string) error {
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(password))
	return ErrInvalidCredentials
}

// VerifyLegacy checks a plaintext password against an unsalted MD5 hex
// digest. It exists only to authenticate rows migrated from the old CRM
// store; HashPassword must be used for anything written today.
func VerifyLegacy(digest, password string) error {
	sum := md5.Sum([]byte(password))
	actual := hex.EncodeToString(sum[:])
	if len(digest) != len(actual) {
		return ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(digest), []byte(actual)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
