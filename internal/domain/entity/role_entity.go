package entity

import "time"

type RoleName string

const (
	RoleUser  RoleName = "USER"
	RoleAdmin RoleName = "ADMIN"
)

// DefaultRoles are seeded when the roles table is empty.
var DefaultRoles = []RoleName{RoleUser, RoleAdmin}

// Role represents an authorization role
// Many-to-many with User via user_roles
type Role struct {
	ID        string
	Name      RoleName
	CreatedAt time.Time
	UpdatedAt time.Time
}
