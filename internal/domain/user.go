// internal/domain/user.go
package domain

import "slices"

// RoleCardOwner is the role an account needs to touch any cash card.
const RoleCardOwner = "CARD-OWNER"

// User is an entry in the credential store.
type User struct {
	Username     string   `db:"username" json:"username"` // Primary key
	PasswordHash []byte   `db:"password_hash" json:"-"`   // bcrypt hash
	Roles        []string `db:"roles" json:"roles"`       // TEXT[] in DB
}

// NewUser creates a new User instance.
func NewUser(username string, passwordHash []byte, roles ...string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
	}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Username string
	Roles    []string
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}
