package entity

import "time"

const (
	ProjectNameMax        = 100
	ProjectDescriptionMax = 500
)

// Project is a diagram source document owned by exactly one user.
type Project struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectPatch carries a partial update. Nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Content     *string
}
