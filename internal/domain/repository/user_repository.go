package repository

import (
	"context"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups return errs.ErrNotFound when nothing matches.
type UserRepository interface {
	// Create inserts the user and links every role in u.Roles atomically.
	// A unique violation is reported as *errs.ConflictError.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AddRole(ctx context.Context, userID string, role entity.Role) error
}
