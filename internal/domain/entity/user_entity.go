package entity

import (
	"time"
)

// User is the aggregate root for accounts.
// PasswordHash holds a bcrypt hash, never the plain password.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames flattens the user's roles for principals and token responses.
func (u *User) RoleNames() []RoleName {
	out := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// Principal builds the per-request identity from a freshly loaded user.
func (u *User) Principal() *Principal {
	return &Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.RoleNames(),
	}
}
