package repository

import (
	"context"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
)

type RoleRepository interface {
	GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error)
	// EnsureDefaults inserts the default roles when the table is empty.
	EnsureDefaults(ctx context.Context) error
}
