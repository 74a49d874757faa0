package auth

import "context"

// Store describes the credential store contract. The login path only ever
// reads; credential creation and access updates are administrative writes.
type Store interface {
	// FindByUsername returns the user with the credential digest attached.
	// This is the only call that exposes the digest.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Find returns a user without credential material.
	Find(ctx context.Context, id int64) (*User, error)

	// List returns all users without credential material.
	List(ctx context.Context) ([]*User, error)

	// Create persists a new user with an already-hashed credential and
	// returns the assigned id.
	Create(ctx context.Context, u *User, digest string) (int64, error)

	// UpdateAccess replaces a user's status and permission set.
	UpdateAccess(ctx context.Context, id int64, status string, perms PermissionSet) error
}
