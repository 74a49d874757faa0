package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service composes the credential store, password hasher and token issuer
// into the login and verification flows.
type Service struct {
	store  Store
	tokens *Tokens
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the auth service. Both collaborators are required.
func NewService(store Store, tokens *Tokens, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	svc := &Service{
		store:  store,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// LoginResult is what a successful login hands back to the caller: the
// bearer token plus minimal identity metadata, never the credential digest.
type LoginResult struct {
	Token       string
	ExpiresAt   time.Time
	User        Summary
	Permissions PermissionSet
}

// Login verifies credentials and mints a token carrying the user's current
// permission snapshot. Unknown user, wrong password and inactive account all
// collapse into ErrInvalidCredentials; the unknown-user path still pays for
// one full hash comparison so the two failures are timing-indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, VerifyDummy(password)
		}
		return LoginResult{}, fmt.Errorf("credential lookup: %w", err)
	}

	if user.Legacy {
		err = VerifyLegacy(user.PasswordHash, password)
	} else {
		err = VerifyPassword(user.PasswordHash, password)
	}
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.Status != StatusActive {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role, user.Permissions)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: Summary{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
		Permissions: user.Permissions,
	}, nil
}

// Authenticate validates a presented token and returns the embedded
// principal. The permission snapshot is not re-fetched from the store; it is
// allowed to drift until the token expires.
func (s *Service) Authenticate(token string) (Principal, error) {
	return s.tokens.Verify(token)
}

// Register creates a new user. Credentials are always hashed with the
// adaptive salted hasher; the legacy digest path is never used for writes.
func (s *Service) Register(ctx context.Context, u User, password string) (*User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Status != StatusActive && u.Status != StatusInactive {
		return nil, ErrInvalidInput
	}
	if u.Permissions == nil {
		u.Permissions = PermissionSet{}
	}
	digest, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, &u, digest)
	if err != nil {
		return nil, err
	}
	u.ID = id
	u.CreatedAt = s.now().UTC()
	u.UpdatedAt = u.CreatedAt
	return &u, nil
}

// Users lists users without credential material.
func (s *Service) Users(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// User loads one user without credential material.
func (s *Service) User(ctx context.Context, id int64) (*User, error) {
	return s.store.Find(ctx, id)
}

// UpdateAccess replaces a user's status and permission set. The change only
// affects tokens issued afterwards; outstanding tokens keep their snapshot.
func (s *Service) UpdateAccess(ctx context.Context, id int64, status string, perms PermissionSet) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if status != StatusActive && status != StatusInactive {
		return ErrInvalidInput
	}
	if perms == nil {
		perms = PermissionSet{}
	}
	return s.store.UpdateAccess(ctx, id, status, perms)
}
