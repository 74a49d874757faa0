package auth

import "time"

// User statuses. Only active users may authenticate.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is a principal stored in the credential store. PasswordHash is only
// populated on the login lookup path and is never serialized.
type User struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	DisplayName  string        `json:"display_name"`
	Role         string        `json:"role"`
	Status       string        `json:"status"`
	Permissions  PermissionSet `json:"permissions"`
	PasswordHash string        `json:"-"`
	Legacy       bool          `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Summary is the minimal identity metadata returned on login.
type Summary struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Principal is the identity recovered from a verified token. Its permission
// set is the snapshot taken at issuance and may lag the credential store
// until the token expires.
type Principal struct {
	UserID      int64
	Role        string
	Permissions PermissionSet
}

// HasPermission reports whether the principal carries the permission flag.
func (p Principal) HasPermission(key string) bool {
	return p.Permissions.Has(key)
}
