package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")

	// ErrInvalidCredentials is the single failure returned by the login path
	// regardless of whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is reported distinctly so callers can surface a
	// dedicated message for expired bearer tokens.
	ErrTokenExpired = errors.New("token expired")
)
